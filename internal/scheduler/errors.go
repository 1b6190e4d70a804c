package scheduler

import "errors"

// ErrChildSpawnFailed means the supervised command could not be started
// at all (binary not found, exec permission denied, ...). This aborts
// the run before any monitoring begins.
var ErrChildSpawnFailed = errors.New("scheduler: failed to spawn supervised command")

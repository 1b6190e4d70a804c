package runresult

import "errors"

// ErrFormatVersionMismatch means a persisted run-result envelope's
// format_version is not one this package knows how to load. Each format
// version needs its own loader kept alongside CurrentFormatVersion; there
// is only one version so far.
var ErrFormatVersionMismatch = errors.New("runresult: unsupported format_version")

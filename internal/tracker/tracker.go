// Package tracker maintains the live, mutable view of the process tree
// the supervisor is watching: which PIDs are currently monitored, when
// each was first observed and, once gone, when it was last seen alive.
//
// It is driven by a single cooperative loop (the scheduler), so it keeps
// no locks: Discover, Drop and FinalizeAll are called from the same
// goroutine, once per tick, never concurrently with each other.
package tracker

import "github.com/jacquev6/chrones/internal/metrics"

// Bracket is a pair of wall-clock readings bounding a moment the tracker
// cannot observe directly: a process is discovered, or found gone, only
// on some tick, so its true birth or death lies somewhere between the
// previous tick's reading and this one's.
type Bracket struct {
	Prev float64
	This float64
}

// Process is one monitored process, in progress: its identity, the
// brackets around its discovery and (once known) its termination, its
// still-growing metric buffer, and its children in discovery order.
type Process struct {
	PID        int
	Argv       []string
	Discovered Bracket
	Terminated *Bracket

	Samples  []metrics.Sample
	Children []*Process
}

// Tracker owns the flat pid -> *Process map and the children pointer
// chain rooted at the main process. The flat map is used to find a
// process by pid in O(1); the tree reachable from Root is the
// authoritative, exported view.
type Tracker struct {
	Root     *Process
	monitored map[int]*Process
}

// New creates a Tracker whose Root is the supervised command's own
// process, discovered at bracket disc with no parent.
func New(pid int, argv []string, disc Bracket) *Tracker {
	root := &Process{PID: pid, Argv: argv, Discovered: disc}
	return &Tracker{
		Root:      root,
		monitored: map[int]*Process{pid: root},
	}
}

// Discover records a newly observed child of parentPID. If parentPID is
// not currently monitored, the new process is dropped silently: it is a
// descendant of a process we've already lost track of, and the tree
// rooted at Root would have nowhere to attach it.
func (t *Tracker) Discover(pid, parentPID int, argv []string, disc Bracket) *Process {
	parent, ok := t.monitored[parentPID]
	if !ok {
		return nil
	}
	p := &Process{PID: pid, Argv: argv, Discovered: disc}
	parent.Children = append(parent.Children, p)
	t.monitored[pid] = p
	return p
}

// Drop records that pid is no longer reported by the OS. The process
// stays reachable through its parent's Children slice; it is only
// removed from the flat lookup map.
func (t *Tracker) Drop(pid int, term Bracket) {
	p, ok := t.monitored[pid]
	if !ok {
		return
	}
	b := term
	p.Terminated = &b
	delete(t.monitored, pid)
}

// FinalizeAll gives every still-monitored process the same termination
// bracket, for use when the main process itself has just exited and
// every descendant's death is therefore bounded by the same tick.
func (t *Tracker) FinalizeAll(term Bracket) {
	for pid, p := range t.monitored {
		if p.Terminated == nil {
			b := term
			p.Terminated = &b
		}
		delete(t.monitored, pid)
	}
}

// Lookup returns the monitored process for pid, if any.
func (t *Tracker) Lookup(pid int) (*Process, bool) {
	p, ok := t.monitored[pid]
	return p, ok
}

// MonitoredPIDs returns every currently monitored pid, in no particular
// order; callers that need a stable order should sort it themselves.
func (t *Tracker) MonitoredPIDs() []int {
	pids := make([]int, 0, len(t.monitored))
	for pid := range t.monitored {
		pids = append(pids, pid)
	}
	return pids
}

//go:build linux

package metrics

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultProcRoot is where a real Linux system mounts procfs.
const DefaultProcRoot = "/proc"

func clockTicks() float64 {
	// sysconf(_SC_CLK_TCK) requires cgo; 100 is the near-universal value on
	// Linux and is overridable for tests via CHRONES_CLK_TCK.
	if v, err := strconv.Atoi(os.Getenv("CHRONES_CLK_TCK")); err == nil && v > 0 {
		return float64(v)
	}
	return 100
}

func pageSize() int64 {
	if v, err := strconv.Atoi(os.Getenv("CHRONES_PAGE_SIZE")); err == nil && v > 0 {
		return int64(v)
	}
	return int64(os.Getpagesize())
}

// readStatTimes parses <root>/<pid>/stat and returns utime/stime in
// jiffies. comm (the 2nd field) is parenthesized and may itself contain
// spaces or parens, so the split point is the last ") " rather than a
// fixed field index.
func readStatTimes(root string, pid int) (utime, stime uint64, err error) {
	f, err := os.Open(filepath.Join(root, strconv.Itoa(pid), "stat"))
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return 0, 0, fmt.Errorf("%w: empty stat for pid %d", ErrMalformedProcStat, pid)
	}
	line := sc.Text()
	i := strings.LastIndex(line, ") ")
	if i < 0 {
		return 0, 0, fmt.Errorf("%w: no comm delimiter for pid %d", ErrMalformedProcStat, pid)
	}
	fields := strings.Fields(line[i+2:])
	// fields[0] is state (stat field 3); utime is stat field 14 => fields[11],
	// stime is stat field 15 => fields[12].
	if len(fields) < 13 {
		return 0, 0, fmt.Errorf("%w: short stat for pid %d", ErrMalformedProcStat, pid)
	}
	utime, err = strconv.ParseUint(fields[11], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad utime for pid %d: %v", ErrMalformedProcStat, pid, err)
	}
	stime, err = strconv.ParseUint(fields[12], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad stime for pid %d: %v", ErrMalformedProcStat, pid, err)
	}
	return utime, stime, nil
}

// readStatus parses <root>/<pid>/status for thread count and
// context-switch counters.
func readStatus(root string, pid int) (threads int, voluntary, involuntary int64, err error) {
	f, err := os.Open(filepath.Join(root, strconv.Itoa(pid), "status"))
	if err != nil {
		return 0, 0, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "Threads:"):
			threads, _ = strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Threads:")))
		case strings.HasPrefix(line, "voluntary_ctxt_switches:"):
			voluntary, _ = strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "voluntary_ctxt_switches:")), 10, 64)
		case strings.HasPrefix(line, "nonvoluntary_ctxt_switches:"):
			involuntary, _ = strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "nonvoluntary_ctxt_switches:")), 10, 64)
		}
	}
	return threads, voluntary, involuntary, sc.Err()
}

// readIOChars parses <root>/<pid>/io for rchar/wchar: bytes read and
// written including page cache traffic, as opposed to
// read_bytes/write_bytes which count only actual block I/O. The data
// model wants the former.
func readIOChars(root string, pid int) (rchar, wchar int64, err error) {
	f, err := os.Open(filepath.Join(root, strconv.Itoa(pid), "io"))
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "rchar:"):
			rchar, _ = strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "rchar:")), 10, 64)
		case strings.HasPrefix(line, "wchar:"):
			wchar, _ = strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "wchar:")), 10, 64)
		}
	}
	return rchar, wchar, sc.Err()
}

// readRSS prefers smaps_rollup (aggregated RSS, kernel 4.14+) and falls
// back to statm's resident page count times the page size.
func readRSS(root string, pid int) (int64, error) {
	pidDir := filepath.Join(root, strconv.Itoa(pid))

	if f, err := os.Open(filepath.Join(pidDir, "smaps_rollup")); err == nil {
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			if strings.HasPrefix(sc.Text(), "Rss:") {
				fields := strings.Fields(sc.Text())
				if len(fields) >= 2 {
					kb, err := strconv.ParseInt(fields[1], 10, 64)
					if err == nil {
						return kb * 1024, nil
					}
				}
			}
		}
	}

	b, err := os.ReadFile(filepath.Join(pidDir, "statm"))
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(b))
	if len(fields) < 2 {
		return 0, fmt.Errorf("%w: short statm for pid %d", ErrMalformedProcStat, pid)
	}
	pages, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad statm for pid %d: %v", ErrMalformedProcStat, pid, err)
	}
	return pages * pageSize(), nil
}

func readOpenFilesCount(root string, pid int) (int, error) {
	entries, err := os.ReadDir(filepath.Join(root, strconv.Itoa(pid), "fd"))
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// ReadChildren returns the direct child PIDs of pid, deduplicated across
// its threads' own children files, in first-seen order. Kernel 3.5+
// exposes this interface.
func ReadChildren(root string, pid int) ([]int, error) {
	paths, err := filepath.Glob(filepath.Join(root, strconv.Itoa(pid), "task", "*", "children"))
	if err != nil {
		return nil, err
	}
	seen := map[int]struct{}{}
	var order []int
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		for _, s := range strings.Fields(string(b)) {
			id, err := strconv.Atoi(s)
			if err != nil {
				continue
			}
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				order = append(order, id)
			}
		}
	}
	return order, nil
}

// ReadCmdline returns a process's argv, split on the NUL separators
// /proc/<pid>/cmdline uses, for the tracker to record as Process.Argv
// when a new child is discovered.
func ReadCmdline(root string, pid int) ([]string, error) {
	b, err := os.ReadFile(filepath.Join(root, strconv.Itoa(pid), "cmdline"))
	if err != nil {
		return nil, err
	}
	b = bytes.TrimRight(b, "\x00")
	if len(b) == 0 {
		return nil, nil
	}
	return strings.Split(string(b), "\x00"), nil
}

// wrapAccessError classifies an error from any /proc read above: permission
// problems become the degraded, skip-and-warn ErrProcessAccessDenied;
// anything else (e.g. the process exiting between the tracker's last PID
// scan and this read) is passed through for the caller to decide, since a
// vanished process is the tracker's concern, not this package's.
func wrapAccessError(pid int, err error) error {
	if err == nil {
		return nil
	}
	if os.IsPermission(err) {
		return fmt.Errorf("%w: pid %d: %v", ErrProcessAccessDenied, pid, err)
	}
	return err
}

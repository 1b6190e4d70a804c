package gpuprobe

import "bytes"

// maxProbeOutputBytes caps how much of a probe's stdout this driver will
// buffer. A single tick's pmon/dmon output is a few hundred bytes; this
// is generous headroom against a misbehaving or malicious nvidia-smi
// rather than a limit expected to bind in practice.
const maxProbeOutputBytes = 4 * 1024 * 1024

// limitedWriter caps how many bytes it will copy into W, discarding the
// rest while still reporting a full write to satisfy exec.Cmd.
type limitedWriter struct {
	W         *bytes.Buffer
	N         int64
	written   int64
	Truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if lw.written >= lw.N {
		lw.Truncated = true
		return len(p), nil
	}
	remaining := lw.N - lw.written
	if int64(len(p)) > remaining {
		n, err := lw.W.Write(p[:remaining])
		lw.written += int64(n)
		lw.Truncated = true
		return len(p), err
	}
	n, err := lw.W.Write(p)
	lw.written += int64(n)
	return n, err
}

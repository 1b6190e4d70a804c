package gpuprobe

import "errors"

var (
	// ErrSchemaMismatch means a probe's header line didn't have the column
	// names this driver expects, in the position it expects them. The
	// probe's output format is assumed stable across nvidia-smi versions;
	// a mismatch means that assumption broke and the run must abort rather
	// than silently misattribute fields.
	ErrSchemaMismatch = errors.New("gpuprobe: probe output schema mismatch")

	// ErrMultiGPUUnsupported means the system-transfer probe reported more
	// than one GPU device. Only single-GPU systems are supported.
	ErrMultiGPUUnsupported = errors.New("gpuprobe: more than one GPU device reported")
)

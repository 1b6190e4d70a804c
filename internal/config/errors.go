package config

import "errors"

var (
	// ErrInvalidMonitoringInterval means monitoring_interval was not
	// strictly positive.
	ErrInvalidMonitoringInterval = errors.New("config: monitoring_interval must be > 0")

	// ErrInvalidAllowedMissingSamples means allowed_missing_samples was
	// negative.
	ErrInvalidAllowedMissingSamples = errors.New("config: allowed_missing_samples must be >= 0")

	// ErrGPUMonitoringUnavailable means monitor_gpu was requested but
	// nvidia-smi cannot be found on PATH. This is a fatal configuration
	// error caught before the child is ever spawned, not a degraded
	// runtime condition.
	ErrGPUMonitoringUnavailable = errors.New("config: monitor_gpu requested but nvidia-smi is not available")
)

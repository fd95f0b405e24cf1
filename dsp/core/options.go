package core

import "time"

// ProcessorConfig defines the sample clock shared by capture, analysis and
// synthesis.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
	// TickRate is the polling cadence of the detection and analysis loops.
	TickRate time.Duration
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig mirrors a browser analyser: 48 kHz, 4096-sample
// blocks, polled at roughly 60 Hz.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  4096,
		TickRate:   time.Second / 60,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the block size, rounded up to the next power of two.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = NextPowerOfTwo(blockSize)
		}
	}
}

// WithTickRate sets the loop polling interval.
func WithTickRate(d time.Duration) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if d > 0 {
			cfg.TickRate = d
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// BlockDuration returns the wall-clock length of one block.
func (c ProcessorConfig) BlockDuration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(c.BlockSize) / c.SampleRate * float64(time.Second))
}

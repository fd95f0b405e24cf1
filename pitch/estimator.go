package pitch

import (
	"math"

	"github.com/cwbudde/algo-tuner/audio"
	"github.com/cwbudde/algo-tuner/dsp/conv"
	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/dsp/filter/biquad"
)

// NoPitch is the frequency reported alongside Valid == false.
const NoPitch = -1.0

const (
	defaultSilenceThreshold = 0.01
	defaultTrimThreshold    = 0.2
	defaultMaxFrequency     = 1000.0
	defaultMinFrequency     = 60.0
)

// Detected is the outcome of one estimation.
type Detected struct {
	Frequency float64
	Valid     bool
}

func invalid() Detected {
	return Detected{Frequency: NoPitch}
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithSilenceThreshold sets the RMS below which a block counts as silence.
func WithSilenceThreshold(rms float64) Option {
	return func(e *Estimator) {
		if rms >= 0 {
			e.silence = rms
		}
	}
}

// WithTrimThreshold sets the magnitude below which edge samples are trimmed.
func WithTrimThreshold(level float64) Option {
	return func(e *Estimator) {
		if level >= 0 {
			e.trim = level
		}
	}
}

// WithMaxFrequency bounds the shortest lag searched.
func WithMaxFrequency(hz float64) Option {
	return func(e *Estimator) {
		if hz > 0 {
			e.maxFreq = hz
		}
	}
}

// WithMinFrequency bounds the longest lag searched.
func WithMinFrequency(hz float64) Option {
	return func(e *Estimator) {
		if hz > 0 {
			e.minFreq = hz
		}
	}
}

// WithHighPass filters each block with a second-order high-pass at hz before
// analysis, removing hum and DC offset. Zero disables the filter.
func WithHighPass(hz float64) Option {
	return func(e *Estimator) {
		if hz >= 0 {
			e.highPass = hz
		}
	}
}

// Estimator is an autocorrelation pitch detector. It keeps a scratch buffer
// for the correlation curve, so one Estimator must not be shared between
// goroutines.
type Estimator struct {
	silence  float64
	trim     float64
	maxFreq  float64
	minFreq  float64
	highPass float64

	ac       *conv.Autocorrelator
	corr     []float64
	filtered []float64
}

// NewEstimator creates an estimator with the given options applied over
// the defaults (silence 0.01, trim 0.2, 60-1000 Hz, no high-pass).
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		silence: defaultSilenceThreshold,
		trim:    defaultTrimThreshold,
		maxFreq: defaultMaxFrequency,
		minFreq: defaultMinFrequency,
		ac:      conv.NewAutocorrelator(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.minFreq >= e.maxFreq {
		e.minFreq = e.maxFreq / 2
	}
	return e
}

// Estimate returns the fundamental frequency of block, or an invalid result
// when the block is silent, too short, or has no usable correlation peak.
func (e *Estimator) Estimate(block audio.Block) Detected {
	sr := block.SampleRate
	if sr <= 0 || len(block.Samples) == 0 {
		return invalid()
	}

	samples := e.prefilter(block.Samples, sr)
	rms := RMS(samples)
	if !core.IsFinite(rms) || rms < e.silence {
		return invalid()
	}

	voiced := Trim(samples, e.trim)

	minLag := int(math.Floor(sr / e.maxFreq))
	if minLag < 1 {
		minLag = 1
	}
	maxLag := min(len(voiced)/2, int(math.Ceil(sr/e.minFreq)))
	if maxLag-minLag < 2 {
		return invalid()
	}

	e.corr = core.EnsureLen(e.corr, maxLag+2)
	corr := e.corr
	if err := e.ac.Compute(corr, voiced); err != nil {
		return invalid()
	}

	// Walk past the descent from the zero-lag spike before looking for the
	// peak. The walk begins at zero lag so a period sitting right at minLag
	// is not consumed as part of the descent.
	start := 0
	for start < maxLag && corr[start+1] <= corr[start] {
		start++
	}
	if start >= maxLag {
		return invalid()
	}
	start = max(start, minLag)

	best := start
	for lag := start + 1; lag <= maxLag; lag++ {
		if corr[lag] > corr[best] {
			best = lag
		}
	}
	if corr[best] <= 0 {
		return invalid()
	}

	refined := float64(best) + ParabolicShift(corr[best-1], corr[best], corr[best+1])
	if refined <= 0 {
		return invalid()
	}

	freq := sr / refined
	if !core.IsFinite(freq) {
		return invalid()
	}
	return Detected{Frequency: freq, Valid: true}
}

// prefilter returns x, or a high-passed copy of it when enabled. Every block
// starts from a cleared filter state since blocks overlap in time.
func (e *Estimator) prefilter(x []float64, sr float64) []float64 {
	if e.highPass <= 0 {
		return x
	}
	c := biquad.HighPass(e.highPass, biquad.ButterworthQ, sr)
	if c == (biquad.Coefficients{}) {
		return x
	}
	e.filtered = core.EnsureLen(e.filtered, len(x))
	biquad.NewSection(c).ProcessBlockTo(e.filtered, x)
	return e.filtered
}

package analysis

import (
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

// Defaults for NewFeed.
const (
	DefaultFFTSize = 1024
	DefaultMinDB   = -100.0
	DefaultMaxDB   = -30.0
)

// Reader exposes the newest samples of a signal. audio.Ring satisfies it.
type Reader interface {
	Latest(dst []float64) int
	SampleRate() float64
}

// Snapshot is one transient visualizer frame. Frequency snapshots hold
// FFTSize/2 values in [0, 1]; time-domain snapshots hold FFTSize samples.
type Snapshot struct {
	Mode       Mode
	Values     []float64
	SampleRate float64
}

// BinFrequency returns the centre frequency of value i of a frequency
// snapshot.
func (s Snapshot) BinFrequency(i int) float64 {
	if s.Mode != Frequency || len(s.Values) == 0 {
		return 0
	}
	return float64(i) * s.SampleRate / float64(2*len(s.Values))
}

// Option configures a Feed.
type Option func(*config)

type config struct {
	size   int
	minDB  float64
	maxDB  float64
	window window.Type
}

// WithFFTSize sets the analysis length. It must be a power of two >= 32.
func WithFFTSize(n int) Option {
	return func(c *config) {
		c.size = n
	}
}

// WithRange sets the dB span mapped onto [0, 1].
func WithRange(minDB, maxDB float64) Option {
	return func(c *config) {
		c.minDB, c.maxDB = minDB, maxDB
	}
}

// WithWindow replaces the Hann analysis window.
func WithWindow(t window.Type) Option {
	return func(c *config) {
		c.window = t
	}
}

// Feed computes snapshots. It is safe for concurrent use.
type Feed struct {
	cfg  config
	plan *algofft.Plan[complex128]
	win  []float64
	norm float64

	mu    sync.Mutex
	frame []float64
	in    []complex128
	out   []complex128
	re    []float64
	im    []float64
	mag   []float64
}

// NewFeed creates a feed.
func NewFeed(opts ...Option) (*Feed, error) {
	cfg := config{
		size:   DefaultFFTSize,
		minDB:  DefaultMinDB,
		maxDB:  DefaultMaxDB,
		window: window.TypeHann,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.size < 32 || !core.IsPowerOfTwo(cfg.size) {
		return nil, fmt.Errorf("analysis: fft size must be a power of two >= 32: %d", cfg.size)
	}
	if cfg.maxDB <= cfg.minDB {
		return nil, fmt.Errorf("analysis: invalid dB range [%g, %g]", cfg.minDB, cfg.maxDB)
	}

	win := window.Generate(cfg.window, cfg.size, window.WithPeriodic())
	gain, err := window.CoherentGain(win)
	if err != nil {
		return nil, fmt.Errorf("analysis: window: %w", err)
	}

	plan, err := algofft.NewPlan64(cfg.size)
	if err != nil {
		return nil, fmt.Errorf("analysis: fft plan: %w", err)
	}

	half := cfg.size / 2
	return &Feed{
		cfg:   cfg,
		plan:  plan,
		win:   win,
		norm:  float64(cfg.size) * gain,
		frame: make([]float64, cfg.size),
		in:    make([]complex128, cfg.size),
		out:   make([]complex128, cfg.size),
		re:    make([]float64, half),
		im:    make([]float64, half),
		mag:   make([]float64, half),
	}, nil
}

// Size returns the analysis length in samples.
func (f *Feed) Size() int {
	return f.cfg.size
}

// Snapshot reads the newest samples of src and returns a frame in mode.
func (f *Feed) Snapshot(src Reader, mode Mode) Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	src.Latest(f.frame)
	snap := Snapshot{Mode: mode, SampleRate: src.SampleRate()}

	if mode == TimeDomain {
		snap.Values = append([]float64(nil), f.frame...)
		return snap
	}

	snap.Values = make([]float64, f.cfg.size/2)
	f.spectrum(snap.Values)
	return snap
}

// spectrum writes normalized magnitudes of f.frame into dst.
func (f *Feed) spectrum(dst []float64) {
	if err := window.ApplyCoefficients(f.frame, f.frame, f.win); err != nil {
		clear(dst)
		return
	}
	for i, s := range f.frame {
		f.in[i] = complex(s, 0)
	}

	if err := f.plan.Forward(f.out, f.in); err != nil {
		clear(dst)
		return
	}

	for k := range f.re {
		f.re[k] = real(f.out[k])
		f.im[k] = imag(f.out[k])
	}
	vecmath.Magnitude(f.mag, f.re, f.im)

	span := f.cfg.maxDB - f.cfg.minDB
	for k, m := range f.mag {
		amp := m / f.norm
		if k > 0 {
			amp *= 2
		}
		db := core.LinearToDB(amp)
		if math.IsInf(db, -1) || math.IsNaN(db) {
			dst[k] = 0
			continue
		}
		dst[k] = core.Clamp((db-f.cfg.minDB)/span, 0, 1)
	}
}

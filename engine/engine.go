package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/cwbudde/algo-tuner/analysis"
	"github.com/cwbudde/algo-tuner/audio"
	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/pitch"
	"github.com/cwbudde/algo-tuner/synth"
	"github.com/cwbudde/algo-tuner/transport"
	"github.com/cwbudde/algo-tuner/tuning"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("engine: closed")
	// ErrNoCapture is returned by StartTuner when no capture device is set.
	ErrNoCapture = errors.New("engine: no capture device")
)

const readingBuffer = 16

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the session logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithCapture sets how the tuner acquires its input.
func WithCapture(o audio.Opener) Option {
	return func(e *Engine) {
		e.opener = o
	}
}

// WithProcessorOptions sets sample rate, analysis block size and tick rate.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(e *Engine) {
		e.cfg = core.ApplyProcessorOptions(opts...)
	}
}

// WithBackend replaces the built-in mixer. tap, if not nil, is read for
// player snapshots.
func WithBackend(b synth.Backend, tap analysis.Reader) Option {
	return func(e *Engine) {
		e.backend = b
		e.playerTap = tap
	}
}

// WithTracks replaces the default practice playlist.
func WithTracks(tracks []synth.Track) Option {
	return func(e *Engine) {
		e.tracks = tracks
	}
}

// WithEventSink forwards player note onsets to sink.
func WithEventSink(sink synth.EventSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithEstimatorOptions configures the pitch estimator of every session.
func WithEstimatorOptions(opts ...pitch.Option) Option {
	return func(e *Engine) {
		e.estOpts = opts
	}
}

// WithFeedOptions configures the analysis feed.
func WithFeedOptions(opts ...analysis.Option) Option {
	return func(e *Engine) {
		e.feedOpts = opts
	}
}

// WithSettings sets the initial configuration.
func WithSettings(s Settings) Option {
	return func(e *Engine) {
		e.settings = s
	}
}

// Engine coordinates the tuner and player sessions.
type Engine struct {
	log       *log.Logger
	cfg       core.ProcessorConfig
	opener    audio.Opener
	estOpts   []pitch.Option
	feedOpts  []analysis.Option
	feed      *analysis.Feed
	backend   synth.Backend
	mixer     *synth.Mixer
	playerTap analysis.Reader
	tracks    []synth.Track
	sink      synth.EventSink
	synth     *synth.Synthesizer
	sched     *transport.Scheduler

	readings chan Reading

	// startMu serialises StartTuner while the device opens outside mu.
	startMu   sync.Mutex
	mu        sync.Mutex
	settings  Settings
	tuning    tuning.Tuning
	tuner     *tunerSession
	reference *synth.Handle
	closed    bool

	readMu  sync.Mutex
	last    Reading
	hasLast bool
}

// New creates an engine. Without WithBackend a Mixer is created at the
// configured sample rate; render it with an output device to hear it.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		log:      log.New(io.Discard, "", 0),
		cfg:      core.DefaultProcessorConfig(),
		settings: DefaultSettings(),
		tracks:   synth.DefaultTracks(),
		readings: make(chan Reading, readingBuffer),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	settings, err := e.settings.Normalize()
	if err != nil {
		return nil, fmt.Errorf("engine: settings: %w", err)
	}
	e.settings = settings
	e.tuning, _ = tuning.ByID(settings.Tuning)

	feed, err := analysis.NewFeed(e.feedOpts...)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.feed = feed

	if e.backend == nil {
		tap := audio.NewRing(feed.Size(), e.cfg.SampleRate)
		mixer, err := synth.NewMixer(e.cfg.SampleRate, synth.WithTap(tap))
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.mixer = mixer
		e.backend = mixer
		e.playerTap = tap
	}

	e.synth = synth.New(e.backend, synth.WithEventSink(e.sink))
	sched, err := transport.New(transport.FromSynth(e.synth), e.tracks,
		transport.WithMasterGain(settings.Gain()),
		transport.WithErrorHandler(func(err error) {
			e.log.Printf("Auto-advance failed: %v", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.sched = sched
	e.backend.SetMasterGain(settings.Gain())
	e.backend.SetMuted(settings.Muted)
	return e, nil
}

// Mixer returns the built-in mixer, or nil when a custom backend is used.
func (e *Engine) Mixer() *synth.Mixer {
	return e.mixer
}

// Config returns the processing configuration.
func (e *Engine) Config() core.ProcessorConfig {
	return e.cfg
}

// Run drives the player transport until ctx is done, then closes the engine.
func (e *Engine) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.sched.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		e.Close()
		return nil
	})

	e.log.Printf("Engine running (%.0f Hz, block %d, %v)", e.cfg.SampleRate, e.cfg.BlockSize, e.cfg.BlockDuration())
	err := g.Wait()
	e.log.Println("Engine stopped")
	return err
}

// Close stops every session. It is safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.stopTunerLocked()
	e.stopReferenceLocked()
	e.mu.Unlock()

	e.sched.Stop()
}

// Settings returns the current configuration.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Apply replaces the configuration. Changing tuning or mode clears
// classification state and restarts a running detection loop.
func (e *Engine) Apply(s Settings) error {
	s, err := s.Normalize()
	if err != nil {
		return fmt.Errorf("engine: apply settings: %w", err)
	}

	e.mu.Lock()
	prev := e.settings
	e.settings = s
	if s.Tuning != prev.Tuning || s.Mode != prev.Mode {
		e.tuning, _ = tuning.ByID(s.Tuning)
		e.restartLocked()
	}
	e.mu.Unlock()

	e.sched.SetMasterGain(s.Gain())
	e.sched.SetMuted(s.Muted)
	return nil
}

// SetVisualizer selects the snapshot style.
func (e *Engine) SetVisualizer(v analysis.VisualizerMode) {
	e.mu.Lock()
	e.settings.Visualizer = v
	e.mu.Unlock()
}

// SetTheme records the visualizer theme.
func (e *Engine) SetTheme(theme string) {
	e.mu.Lock()
	e.settings.Theme = theme
	e.mu.Unlock()
}

// Snapshot returns a visualizer frame from the live input while the tuner is
// listening, otherwise from the player output while it is playing.
func (e *Engine) Snapshot() (analysis.Snapshot, bool) {
	e.mu.Lock()
	mode := analysis.ModeFor(e.settings.Visualizer)
	var src analysis.Reader
	if s := e.liveTunerLocked(); s != nil {
		src = s.ring
	}
	e.mu.Unlock()

	if src == nil && e.playerTap != nil && e.sched.State() == transport.Playing {
		src = e.playerTap
	}
	if src == nil {
		return analysis.Snapshot{}, false
	}
	return e.feed.Snapshot(src, mode), true
}

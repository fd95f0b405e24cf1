package synth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/algo-tuner/audio"
)

// Reference tone parameters.
const (
	ReferenceGain     = 0.3
	ReferenceDuration = time.Second
)

// NoteEvent describes one onset for external sinks.
type NoteEvent struct {
	Frequency float64
	Gain      float64
	Duration  time.Duration
	// Start is the onset offset from the beginning of playback.
	Start time.Duration
}

// EventSink receives note onsets alongside the audio path. NoteOff is called
// with the event of an earlier NoteOn when the handle that started it
// releases the note.
type EventSink interface {
	NoteOn(ev NoteEvent)
	NoteOff(ev NoteEvent)
}

// Ticker delivers step onsets to a playing Handle.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type stdTicker struct {
	t *time.Ticker
}

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

// NewTicker wraps time.NewTicker.
func NewTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithEventSink forwards every onset to sink.
func WithEventSink(sink EventSink) Option {
	return func(s *Synthesizer) {
		s.sink = sink
	}
}

// WithTicker replaces the wall-clock step ticker.
func WithTicker(f TickerFunc) Option {
	return func(s *Synthesizer) {
		if f != nil {
			s.newTicker = f
		}
	}
}

// Synthesizer schedules patterns onto a Backend.
type Synthesizer struct {
	backend   Backend
	sink      EventSink
	newTicker TickerFunc
}

// New creates a synthesizer driving backend.
func New(backend Backend, opts ...Option) *Synthesizer {
	s := &Synthesizer{backend: backend, newTicker: NewTicker}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Backend returns the backend the synthesizer plays on.
func (s *Synthesizer) Backend() Backend {
	return s.backend
}

// Play starts track at masterGain. The first step sounds before Play returns;
// later steps are driven by a goroutine owned by the returned Handle. Any
// failure to obtain or start a tone is reported as audio.ErrAudioUnavailable.
func (s *Synthesizer) Play(track Track, masterGain float64) (*Handle, error) {
	p, err := NewPattern(track.Pattern, track.BaseFrequency)
	if err != nil {
		return nil, fmt.Errorf("synth: play %q: %w", track.ID, err)
	}
	if s.backend == nil {
		return nil, fmt.Errorf("synth: play %q: no backend: %w", track.ID, audio.ErrAudioUnavailable)
	}

	s.backend.SetMasterGain(masterGain)

	h := newHandle(s, track)
	if err := h.trigger(p, 0); err != nil {
		h.release()
		close(h.done)
		return nil, fmt.Errorf("synth: play %q: %w", track.ID, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	var tick Ticker
	if p.Interval > 0 {
		tick = s.newTicker(p.Interval)
	}
	go h.loop(ctx, p, tick)
	return h, nil
}

// PlayReference sounds a one-second sine at freq with an exponential decay.
// The handle finishes on its own once the tone has decayed.
func (s *Synthesizer) PlayReference(freq float64) (*Handle, error) {
	if s.backend == nil {
		return nil, fmt.Errorf("synth: reference: no backend: %w", audio.ErrAudioUnavailable)
	}

	track := Track{ID: "reference", Title: "Reference", Duration: ReferenceDuration, BaseFrequency: freq}
	h := newHandle(s, track)
	env := ReferenceEnvelope()
	if err := h.start(Note{Frequency: freq, Gain: env.Peak, Duration: env.Duration, Wave: Sine}, env, 0); err != nil {
		h.release()
		close(h.done)
		return nil, fmt.Errorf("synth: reference %.2f Hz: %w", freq, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go h.expire(ctx, s.newTicker(ReferenceDuration))
	return h, nil
}

// Handle is a playing session. Stop is safe to call any number of times.
type Handle struct {
	synth *Synthesizer
	track Track

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu    sync.Mutex
	tones []ToneGenerator
	notes []NoteEvent
	err   error
}

func newHandle(s *Synthesizer, track Track) *Handle {
	return &Handle{synth: s, track: track, done: make(chan struct{}), cancel: func() {}}
}

// Track returns the track being played.
func (h *Handle) Track() Track {
	return h.track
}

// Done is closed once the scheduling goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the first error raised while triggering later steps.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Stop cancels scheduling, waits for the goroutine and silences every tone
// the handle started.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.cancel()
		<-h.done
		h.release()
	})
}

func (h *Handle) loop(ctx context.Context, p Pattern, tick Ticker) {
	defer close(h.done)
	if tick == nil {
		<-ctx.Done()
		return
	}
	defer tick.Stop()

	for step := 1; ; step++ {
		select {
		case <-ctx.Done():
			return
		case <-tick.C():
			if err := h.trigger(p, step); err != nil {
				h.mu.Lock()
				if h.err == nil {
					h.err = err
				}
				h.mu.Unlock()
			}
		}
	}
}

func (h *Handle) expire(ctx context.Context, tick Ticker) {
	defer close(h.done)
	defer tick.Stop()
	select {
	case <-ctx.Done():
	case <-tick.C():
		h.release()
	}
}

// trigger retires the previous step's tones and starts the notes of step.
func (h *Handle) trigger(p Pattern, step int) error {
	notes := p.Step(step)
	if len(notes) == 0 {
		return nil
	}

	h.release()
	for _, n := range notes {
		if err := h.start(n, n.Envelope(), p.Onset(step)); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handle) start(n Note, env Envelope, at time.Duration) error {
	tone, err := h.synth.backend.NewTone()
	if err != nil {
		return unavailable(err)
	}
	tone.ScheduleEnvelope(env)
	if err := tone.Start(n.Frequency, n.Wave); err != nil {
		return unavailable(err)
	}

	ev := NoteEvent{Frequency: n.Frequency, Gain: n.Gain, Duration: n.Duration, Start: at}
	h.mu.Lock()
	h.tones = append(h.tones, tone)
	if h.synth.sink != nil {
		h.notes = append(h.notes, ev)
	}
	h.mu.Unlock()

	if h.synth.sink != nil {
		h.synth.sink.NoteOn(ev)
	}
	return nil
}

// release stops the handle's tones and ends only the sink notes it started,
// so other handles sharing the sink keep sounding.
func (h *Handle) release() {
	h.mu.Lock()
	tones, notes := h.tones, h.notes
	h.tones, h.notes = nil, nil
	h.mu.Unlock()

	for _, t := range tones {
		t.Stop()
	}
	for _, ev := range notes {
		h.synth.sink.NoteOff(ev)
	}
}

func unavailable(err error) error {
	if errors.Is(err, audio.ErrAudioUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", audio.ErrAudioUnavailable, err)
}

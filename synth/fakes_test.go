package synth

import (
	"errors"
	"sync"
	"time"
)

type fakeTone struct {
	b       *fakeBackend
	freq    float64
	wave    Waveform
	env     Envelope
	running bool
	stops   int
}

func (t *fakeTone) Start(freq float64, wave Waveform) error {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	if t.b.startErr != nil {
		return t.b.startErr
	}
	t.freq, t.wave, t.running = freq, wave, true
	return nil
}

func (t *fakeTone) Stop() {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	t.running = false
	t.stops++
}

func (t *fakeTone) SetGain(float64) {}

func (t *fakeTone) ScheduleEnvelope(env Envelope) {
	t.b.mu.Lock()
	t.env = env
	t.b.mu.Unlock()
}

type fakeBackend struct {
	mu       sync.Mutex
	tones    []*fakeTone
	master   float64
	muted    bool
	newErr   error
	startErr error
}

func (b *fakeBackend) NewTone() (ToneGenerator, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.newErr != nil {
		return nil, b.newErr
	}
	t := &fakeTone{b: b}
	b.tones = append(b.tones, t)
	return t, nil
}

func (b *fakeBackend) SetMasterGain(g float64) {
	b.mu.Lock()
	b.master = g
	b.mu.Unlock()
}

func (b *fakeBackend) SetMuted(m bool) {
	b.mu.Lock()
	b.muted = m
	b.mu.Unlock()
}

func (b *fakeBackend) StopAll() {}

func (b *fakeBackend) running() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, t := range b.tones {
		if t.running {
			n++
		}
	}
	return n
}

var errDevice = errors.New("device busy")

// manualTicker fires only when the test sends on it.
type manualTicker struct {
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newManualTicker() *manualTicker {
	return &manualTicker{c: make(chan time.Time), stopped: make(chan struct{})}
}

func (m *manualTicker) C() <-chan time.Time { return m.c }
func (m *manualTicker) Stop()               { m.once.Do(func() { close(m.stopped) }) }

type recordingSink struct {
	events chan NoteEvent
	mu     sync.Mutex
	offs   []NoteEvent
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(chan NoteEvent, 64)}
}

func (r *recordingSink) NoteOn(ev NoteEvent) { r.events <- ev }

func (r *recordingSink) NoteOff(ev NoteEvent) {
	r.mu.Lock()
	r.offs = append(r.offs, ev)
	r.mu.Unlock()
}

func (r *recordingSink) released() []NoteEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]NoteEvent(nil), r.offs...)
}

package synth

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-tuner/audio"
)

func newTestSynth(b Backend, tick *manualTicker, sink EventSink) *Synthesizer {
	return New(b,
		WithEventSink(sink),
		WithTicker(func(time.Duration) Ticker { return tick }),
	)
}

func receive(t *testing.T, sink *recordingSink) NoteEvent {
	t.Helper()
	select {
	case ev := <-sink.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for note event")
		return NoteEvent{}
	}
}

func TestPlayArpeggioOnsets(t *testing.T) {
	b := &fakeBackend{}
	tick := newManualTicker()
	sink := newRecordingSink()
	s := newTestSynth(b, tick, sink)

	h, err := s.Play(Track{ID: "arp", Duration: 30 * time.Second, BaseFrequency: 196, Pattern: Arpeggio}, 0.8)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	defer h.Stop()

	want := []float64{196, 245, 294, 392, 196, 245}
	for i, f := range want {
		if i > 0 {
			tick.c <- time.Time{}
		}
		ev := receive(t, sink)
		if math.Abs(ev.Frequency-f) > 1e-9 {
			t.Fatalf("onset %d: frequency %v, want %v", i, ev.Frequency, f)
		}
		if ev.Start != time.Duration(i)*500*time.Millisecond {
			t.Fatalf("onset %d: start %v", i, ev.Start)
		}
		if ev.Gain != VoiceGain {
			t.Fatalf("onset %d: gain %v", i, ev.Gain)
		}
	}

	b.mu.Lock()
	master := b.master
	b.mu.Unlock()
	if master != 0.8 {
		t.Fatalf("master gain = %v, want 0.8", master)
	}
}

func TestPlayChordRetriggers(t *testing.T) {
	b := &fakeBackend{}
	tick := newManualTicker()
	sink := newRecordingSink()
	s := newTestSynth(b, tick, sink)

	h, err := s.Play(Track{ID: "chord", BaseFrequency: 100, Pattern: Chord}, 1)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	defer h.Stop()

	for range 3 {
		receive(t, sink)
	}
	if got := b.running(); got != 3 {
		t.Fatalf("running tones = %d, want 3", got)
	}

	tick.c <- time.Time{}
	for range 3 {
		if ev := receive(t, sink); ev.Start != 2500*time.Millisecond {
			t.Fatalf("retrigger start = %v", ev.Start)
		}
	}
	if got := b.running(); got != 3 {
		t.Fatalf("running tones after retrigger = %d, want 3", got)
	}
}

func TestPlayRhythmUsesSquareAndGate(t *testing.T) {
	b := &fakeBackend{}
	tick := newManualTicker()
	sink := newRecordingSink()
	s := newTestSynth(b, tick, sink)

	h, err := s.Play(Track{ID: "rhythm", BaseFrequency: 220, Pattern: Rhythm}, 1)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	receive(t, sink)
	// Steps 1 and 3 are gated off, step 2 and 4 sound.
	tick.c <- time.Time{}
	tick.c <- time.Time{}
	if ev := receive(t, sink); ev.Start != 500*time.Millisecond {
		t.Fatalf("second onset at %v, want 500ms", ev.Start)
	}
	h.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, tone := range b.tones {
		if tone.wave != Square {
			t.Fatalf("rhythm tone waveform = %v", tone.wave)
		}
	}
}

func TestHandleStopIsIdempotent(t *testing.T) {
	b := &fakeBackend{}
	tick := newManualTicker()
	s := newTestSynth(b, tick, nil)

	h, err := s.Play(Track{ID: "drone", BaseFrequency: 110, Pattern: Arpeggio}, 1)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	h.Stop()
	h.Stop()

	select {
	case <-h.Done():
	default:
		t.Fatal("Done() not closed after Stop")
	}
	select {
	case <-tick.stopped:
	default:
		t.Fatal("ticker not stopped")
	}
	if got := b.running(); got != 0 {
		t.Fatalf("running tones = %d, want 0", got)
	}
	if got := b.tones[0].stops; got != 1 {
		t.Fatalf("tone stopped %d times, want 1", got)
	}
}

func TestPlaySteadySustainsUntilStop(t *testing.T) {
	b := &fakeBackend{}
	s := New(b)

	h, err := s.Play(Track{ID: "drone", BaseFrequency: 110, Pattern: Steady}, 1)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if got := b.running(); got != 1 {
		t.Fatalf("running tones = %d, want 1", got)
	}
	if d := b.tones[0].env.Duration; d != 0 {
		t.Fatalf("steady envelope duration = %v, want sustain", d)
	}

	h.Stop()
	if got := b.running(); got != 0 {
		t.Fatalf("running tones after Stop = %d", got)
	}
}

func TestPlayBackendFailure(t *testing.T) {
	tests := []struct {
		name string
		b    *fakeBackend
	}{
		{name: "new tone", b: &fakeBackend{newErr: errDevice}},
		{name: "start", b: &fakeBackend{startErr: errDevice}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(tt.b).Play(Track{ID: "x", BaseFrequency: 196, Pattern: Chord}, 1)
			if h != nil {
				t.Fatal("Play() returned a handle on failure")
			}
			if !errors.Is(err, audio.ErrAudioUnavailable) {
				t.Fatalf("Play() error = %v, want ErrAudioUnavailable", err)
			}
			if !errors.Is(err, errDevice) {
				t.Fatalf("Play() error = %v, want wrapped cause", err)
			}
			if got := tt.b.running(); got != 0 {
				t.Fatalf("running tones = %d after failure", got)
			}
		})
	}
}

func TestPlayNilBackend(t *testing.T) {
	_, err := New(nil).Play(Track{ID: "x", BaseFrequency: 196}, 1)
	if !errors.Is(err, audio.ErrAudioUnavailable) {
		t.Fatalf("Play() error = %v", err)
	}
}

func TestPlayInvalidTrack(t *testing.T) {
	s := New(&fakeBackend{})
	if _, err := s.Play(Track{ID: "x", BaseFrequency: 0}, 1); err == nil {
		t.Fatal("Play() accepted zero base frequency")
	}
	if _, err := s.Play(Track{ID: "x", BaseFrequency: 100, Pattern: PatternKind(42)}, 1); !errors.Is(err, ErrUnknownPattern) {
		t.Fatalf("Play() error = %v, want ErrUnknownPattern", err)
	}
}

func TestPlayReferenceExpires(t *testing.T) {
	b := &fakeBackend{}
	tick := newManualTicker()
	s := newTestSynth(b, tick, nil)

	h, err := s.PlayReference(440)
	if err != nil {
		t.Fatalf("PlayReference() error = %v", err)
	}
	if got := b.running(); got != 1 {
		t.Fatalf("running tones = %d", got)
	}
	env := b.tones[0].env
	if env.Shape != Exponential || env.Peak != ReferenceGain || env.Duration != ReferenceDuration {
		t.Fatalf("reference envelope = %+v", env)
	}

	tick.c <- time.Time{}
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("reference handle did not finish")
	}
	if got := b.running(); got != 0 {
		t.Fatalf("running tones after expiry = %d", got)
	}
	h.Stop()
}

func TestReferenceReleaseKeepsPlayerNotes(t *testing.T) {
	b := &fakeBackend{}
	tick := newManualTicker()
	sink := newRecordingSink()
	s := newTestSynth(b, tick, sink)

	player, err := s.Play(Track{ID: "drone", BaseFrequency: 110, Pattern: Steady}, 1)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	defer player.Stop()
	receive(t, sink)

	ref, err := s.PlayReference(440)
	if err != nil {
		t.Fatalf("PlayReference() error = %v", err)
	}
	receive(t, sink)
	ref.Stop()

	offs := sink.released()
	if len(offs) != 1 || offs[0].Frequency != 440 {
		t.Fatalf("released notes = %+v, want only the 440 Hz reference", offs)
	}

	player.Stop()
	offs = sink.released()
	if len(offs) != 2 || offs[1].Frequency != 110 {
		t.Fatalf("released notes after player stop = %+v", offs)
	}
}

package synth

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-tuner/audio"
)

func peak32(buf []float32) float64 {
	m := 0.0
	for _, v := range buf {
		m = math.Max(m, math.Abs(float64(v)))
	}
	return m
}

func TestMixerRendersVoice(t *testing.T) {
	m, err := NewMixer(48000)
	if err != nil {
		t.Fatalf("NewMixer() error = %v", err)
	}
	tone, _ := m.NewTone()
	tone.SetGain(0.5)
	if err := tone.Start(1000, Sine); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	buf := make([]float32, 480)
	m.Render(buf)
	if got := peak32(buf); math.Abs(got-0.5) > 0.01 {
		t.Fatalf("peak = %v, want ~0.5", got)
	}
}

func TestMixerMasterGainAndMute(t *testing.T) {
	m, _ := NewMixer(48000)
	tone, _ := m.NewTone()
	tone.SetGain(1)
	_ = tone.Start(1000, Sine)

	m.SetMasterGain(0.25)
	buf := make([]float32, 480)
	m.Render(buf)
	if got := peak32(buf); math.Abs(got-0.25) > 0.01 {
		t.Fatalf("peak at 0.25 master = %v", got)
	}

	m.SetMuted(true)
	m.Render(buf)
	if got := peak32(buf); got != 0 {
		t.Fatalf("muted peak = %v", got)
	}
	if m.ActiveVoices() != 1 {
		t.Fatal("mute stopped the voice")
	}

	m.SetMuted(false)
	m.Render(buf)
	if got := peak32(buf); math.Abs(got-0.25) > 0.01 {
		t.Fatalf("peak after unmute = %v", got)
	}

	m.SetMasterGain(3)
	if m.MasterGain() != 1 {
		t.Fatalf("master gain not clamped: %v", m.MasterGain())
	}
}

func TestMixerEnvelopeRetiresVoice(t *testing.T) {
	m, _ := NewMixer(1000)
	tone, _ := m.NewTone()
	tone.ScheduleEnvelope(NoteEnvelope(0.3, 100*time.Millisecond))
	_ = tone.Start(50, Sine)

	buf := make([]float32, 150)
	m.Render(buf)
	if m.ActiveVoices() != 0 {
		t.Fatalf("voice still active after envelope end")
	}
	for i := 100; i < len(buf); i++ {
		if buf[i] != 0 {
			t.Fatalf("sample %d = %v after envelope end", i, buf[i])
		}
	}
	if buf[0] != 0 {
		t.Fatalf("first sample = %v, want silent attack start", buf[0])
	}
}

func TestMixerStopAndRestart(t *testing.T) {
	m, _ := NewMixer(48000)
	tone, _ := m.NewTone()
	_ = tone.Start(440, Sine)
	tone.Stop()
	tone.Stop()
	if m.ActiveVoices() != 0 {
		t.Fatal("Stop() left voice active")
	}

	_ = tone.Start(440, Sine)
	_ = tone.Start(660, Sine)
	if m.ActiveVoices() != 1 {
		t.Fatalf("retune duplicated voice: %d", m.ActiveVoices())
	}

	m.StopAll()
	if m.ActiveVoices() != 0 {
		t.Fatal("StopAll() left voices")
	}
}

func TestMixerVoiceLimit(t *testing.T) {
	m, _ := NewMixer(48000, WithMaxVoices(2))
	for range 2 {
		tone, _ := m.NewTone()
		if err := tone.Start(220, Sine); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	}
	tone, _ := m.NewTone()
	if err := tone.Start(220, Sine); !errors.Is(err, audio.ErrAudioUnavailable) {
		t.Fatalf("Start() error = %v, want ErrAudioUnavailable", err)
	}
}

func TestMixerRejectsInvalid(t *testing.T) {
	if _, err := NewMixer(0); err == nil {
		t.Fatal("NewMixer(0) succeeded")
	}
	m, _ := NewMixer(8000)
	tone, _ := m.NewTone()
	if err := tone.Start(5000, Sine); err == nil {
		t.Fatal("Start() above Nyquist succeeded")
	}
	if m.ActiveVoices() != 0 {
		t.Fatal("invalid start added a voice")
	}
}

func TestMixerWritesTap(t *testing.T) {
	ring := audio.NewRing(256, 48000)
	m, _ := NewMixer(48000, WithTap(ring))
	tone, _ := m.NewTone()
	tone.SetGain(0.5)
	_ = tone.Start(1000, Sine)
	m.SetMasterGain(0.5)

	buf := make([]float32, 256)
	m.Render(buf)

	got := make([]float64, 256)
	if n := ring.Latest(got); n != 256 {
		t.Fatalf("tap holds %d samples", n)
	}
	for i := range buf {
		if math.Abs(got[i]-float64(buf[i])) > 1e-6 {
			t.Fatalf("tap[%d] = %v, output %v", i, got[i], buf[i])
		}
	}
}

func TestSynthesizerOnMixer(t *testing.T) {
	m, _ := NewMixer(48000)
	s := New(m)
	h, err := s.Play(Track{ID: "chord", BaseFrequency: 146.83, Pattern: Chord}, 0.5)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if m.ActiveVoices() != 3 {
		t.Fatalf("ActiveVoices() = %d, want 3", m.ActiveVoices())
	}
	h.Stop()
	if m.ActiveVoices() != 0 {
		t.Fatalf("ActiveVoices() after Stop = %d", m.ActiveVoices())
	}
}

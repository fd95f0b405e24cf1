package device

import (
	"testing"

	"github.com/cwbudde/algo-tuner/synth"
)

func TestStreamerDuplicatesMixerOutput(t *testing.T) {
	m, err := synth.NewMixer(48000)
	if err != nil {
		t.Fatalf("NewMixer() error = %v", err)
	}
	tone, _ := m.NewTone()
	tone.SetGain(0.5)
	if err := tone.Start(440, synth.Sine); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	s := NewStreamer(m)
	samples := make([][2]float64, 256)
	n, ok := s.Stream(samples)
	if n != len(samples) || !ok {
		t.Fatalf("Stream() = %d, %v", n, ok)
	}
	if s.Err() != nil {
		t.Fatalf("Err() = %v", s.Err())
	}

	nonZero := false
	for i, frame := range samples {
		if frame[0] != frame[1] {
			t.Fatalf("frame %d channels differ: %v", i, frame)
		}
		if frame[0] != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatal("streamer produced silence")
	}
}

func TestStreamerSilentMixer(t *testing.T) {
	m, _ := synth.NewMixer(44100)
	samples := make([][2]float64, 64)
	samples[3] = [2]float64{1, 1}
	if n, ok := NewStreamer(m).Stream(samples); n != 64 || !ok {
		t.Fatalf("Stream() = %d, %v", n, ok)
	}
	for i, frame := range samples {
		if frame != [2]float64{} {
			t.Fatalf("frame %d = %v, want silence", i, frame)
		}
	}
}

func TestNewCaptureOptions(t *testing.T) {
	c := NewCapture(WithCaptureRate(48000), WithFramesPerBuffer(256), WithHistory(4096), WithHistory(-1))
	if c.sampleRate != 48000 || c.frames != 256 || c.history != 4096 {
		t.Fatalf("capture = %+v", c)
	}
}

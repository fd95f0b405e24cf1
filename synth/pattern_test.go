package synth

import (
	"errors"
	"math"
	"testing"
	"time"
)

func frequencies(notes []Note) []float64 {
	out := make([]float64, len(notes))
	for i, n := range notes {
		out[i] = n.Frequency
	}
	return out
}

func TestPatternArpeggio(t *testing.T) {
	p, err := NewPattern(Arpeggio, 196)
	if err != nil {
		t.Fatalf("NewPattern() error = %v", err)
	}

	want := []float64{196, 245, 294, 392}
	for i := range 12 {
		notes := p.Step(i)
		if len(notes) != 1 {
			t.Fatalf("step %d: %d notes", i, len(notes))
		}
		if math.Abs(notes[0].Frequency-want[i%4]) > 1e-9 {
			t.Fatalf("step %d: %v Hz, want %v", i, notes[0].Frequency, want[i%4])
		}
		if p.Onset(i) != time.Duration(i)*500*time.Millisecond {
			t.Fatalf("step %d: onset %v", i, p.Onset(i))
		}
	}
}

func TestPatternScalePingPong(t *testing.T) {
	p, err := NewPattern(Scale, 100)
	if err != nil {
		t.Fatalf("NewPattern() error = %v", err)
	}

	ratios := []float64{1, 9.0 / 8, 5.0 / 4, 4.0 / 3, 3.0 / 2, 5.0 / 3, 15.0 / 8, 2}
	order := []int{0, 1, 2, 3, 4, 5, 6, 7, 6, 5, 4, 3, 2, 1, 0, 1, 2}
	for i, idx := range order {
		got := p.Step(i)[0].Frequency
		if math.Abs(got-100*ratios[idx]) > 1e-9 {
			t.Fatalf("step %d: %v Hz, want ratio index %d", i, got, idx)
		}
	}
	if p.Interval != 400*time.Millisecond {
		t.Fatalf("scale interval = %v", p.Interval)
	}
}

func TestPatternChord(t *testing.T) {
	p, _ := NewPattern(Chord, 200)
	notes := p.Step(5)
	got := frequencies(notes)
	want := []float64{200, 250, 300}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("chord = %v, want %v", got, want)
		}
	}
	for _, n := range notes {
		if n.Gain != ChordGain || n.Duration != 2*time.Second {
			t.Fatalf("chord note = %+v", n)
		}
	}
	if p.Interval != 2500*time.Millisecond {
		t.Fatalf("chord interval = %v", p.Interval)
	}
}

func TestPatternRhythmGate(t *testing.T) {
	p, _ := NewPattern(Rhythm, 220)
	mask := []bool{true, false, true, false, true, true, false, true}
	for i := range 16 {
		notes := p.Step(i)
		if got := len(notes) == 1; got != mask[i%8] {
			t.Fatalf("step %d sounding = %v, want %v", i, got, mask[i%8])
		}
		if len(notes) == 1 && notes[0].Wave != Square {
			t.Fatalf("step %d waveform = %v", i, notes[0].Wave)
		}
	}
}

func TestPatternSteady(t *testing.T) {
	p, _ := NewPattern(Steady, 110)
	notes := p.Step(0)
	if len(notes) != 1 || notes[0].Duration != 0 || notes[0].Wave != Sine {
		t.Fatalf("steady step 0 = %+v", notes)
	}
	if p.Step(1) != nil {
		t.Fatal("steady pattern retriggered")
	}
}

func TestPatternStepIsPure(t *testing.T) {
	p, _ := NewPattern(Scale, 150)
	a := frequencies(p.Step(9))
	p.Step(3)
	b := frequencies(p.Step(9))
	if a[0] != b[0] {
		t.Fatalf("Step(9) changed: %v then %v", a, b)
	}
	if p.Step(-1) != nil {
		t.Fatal("negative step produced notes")
	}
}

func TestParsePatternKind(t *testing.T) {
	for k := Steady; k <= Rhythm; k++ {
		got, err := ParsePatternKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParsePatternKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParsePatternKind("polka"); !errors.Is(err, ErrUnknownPattern) {
		t.Fatalf("ParsePatternKind(polka) error = %v", err)
	}
}

func TestDefaultTracksCoverPatterns(t *testing.T) {
	seen := map[PatternKind]bool{}
	for _, tr := range DefaultTracks() {
		if tr.Duration <= 0 || tr.BaseFrequency <= 0 || tr.ID == "" {
			t.Fatalf("invalid default track %+v", tr)
		}
		seen[tr.Pattern] = true
	}
	for k := Steady; k <= Rhythm; k++ {
		if !seen[k] {
			t.Fatalf("no default track for %v", k)
		}
	}
}

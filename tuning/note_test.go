package tuning

import (
	"math"
	"testing"
)

func TestNearestNote(t *testing.T) {
	tests := []struct {
		freq  float64
		name  string
		cents float64
	}{
		{freq: 440, name: "A4", cents: 0},
		{freq: 261.6256, name: "C4", cents: 0},
		{freq: 82.41, name: "E2", cents: 0},
		{freq: 27.5, name: "A0", cents: 0},
		{freq: 466.1638, name: "A#4", cents: 0},
		{freq: 445, name: "A4", cents: 19.56},
		{freq: 16.3516, name: "C0", cents: 0},
	}

	for _, tt := range tests {
		n, ok := NearestNote(tt.freq)
		if !ok {
			t.Fatalf("NearestNote(%v) not ok", tt.freq)
		}
		if n.String() != tt.name {
			t.Fatalf("NearestNote(%v) = %s, want %s", tt.freq, n, tt.name)
		}
		if math.Abs(n.Cents-tt.cents) > 0.05 {
			t.Fatalf("NearestNote(%v).Cents = %v, want %v", tt.freq, n.Cents, tt.cents)
		}
	}
}

func TestNoteNameInvalid(t *testing.T) {
	for _, f := range []float64{0, -440, math.NaN(), math.Inf(1)} {
		if got := NoteName(f); got != "" {
			t.Fatalf("NoteName(%v) = %q, want empty", f, got)
		}
	}
	if got := NoteName(329.63); got != "E4" {
		t.Fatalf("NoteName(329.63) = %q", got)
	}
}

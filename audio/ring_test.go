package audio

import (
	"testing"

	"github.com/cwbudde/algo-tuner/internal/testutil"
)

func TestRingLatestBeforeFull(t *testing.T) {
	r := NewRing(8, 48000)
	r.Write([]float64{1, 2, 3})

	dst := make([]float64, 5)
	if n := r.Latest(dst); n != 3 {
		t.Fatalf("Latest() = %d, want 3", n)
	}
	testutil.RequireSliceNearlyEqual(t, dst, []float64{0, 0, 1, 2, 3}, 0)
}

func TestRingWrapsChronologically(t *testing.T) {
	r := NewRing(4, 48000)
	r.Write([]float64{1, 2, 3})
	r.Write32([]float32{4, 5, 6})

	dst := make([]float64, 4)
	if n := r.Latest(dst); n != 4 {
		t.Fatalf("Latest() = %d, want 4", n)
	}
	testutil.RequireSliceNearlyEqual(t, dst, []float64{3, 4, 5, 6}, 0)
}

func TestRingLatestLargerThanSize(t *testing.T) {
	r := NewRing(3, 48000)
	r.Write([]float64{1, 2, 3, 4})

	dst := make([]float64, 5)
	if n := r.Latest(dst); n != 3 {
		t.Fatalf("Latest() = %d, want 3", n)
	}
	testutil.RequireSliceNearlyEqual(t, dst, []float64{0, 0, 2, 3, 4}, 0)
}

func TestRingReset(t *testing.T) {
	r := NewRing(4, 48000)
	r.Write([]float64{1, 2})
	r.Reset()

	dst := []float64{9, 9}
	if n := r.Latest(dst); n != 0 {
		t.Fatalf("Latest() = %d after reset, want 0", n)
	}
	testutil.RequireSliceNearlyEqual(t, dst, []float64{0, 0}, 0)
}

package window

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-tuner/internal/testutil"
)

func TestGenerateAllTypesFinite(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackman, TypeBlackmanHarris4Term} {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 64)
			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}
			testutil.RequireFinite(t, w)
		})
	}
}

func TestHannSymmetricEndpoints(t *testing.T) {
	w := Generate(TypeHann, 9)
	if math.Abs(w[0]) > 1e-12 || math.Abs(w[8]) > 1e-12 {
		t.Fatalf("endpoints = %v, %v, want 0", w[0], w[8])
	}
	if math.Abs(w[4]-1) > 1e-12 {
		t.Fatalf("centre = %v, want 1", w[4])
	}
}

func TestHannPeriodic(t *testing.T) {
	w := Generate(TypeHann, 8, WithPeriodic())
	if math.Abs(w[0]) > 1e-12 {
		t.Fatalf("w[0] = %v, want 0", w[0])
	}
	if math.Abs(w[4]-1) > 1e-12 {
		t.Fatalf("w[4] = %v, want 1", w[4])
	}
	gain, err := CoherentGain(w)
	if err != nil {
		t.Fatalf("CoherentGain() error = %v", err)
	}
	if math.Abs(gain-0.5) > 1e-12 {
		t.Fatalf("coherent gain = %v, want 0.5", gain)
	}
}

func TestGenerateInvalidSize(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("Generate(0) = %v, want nil", w)
	}
}

func TestApplyCoefficientsInPlace(t *testing.T) {
	coeffs := Generate(TypeHann, 16, WithPeriodic())
	buf := testutil.Ones(16)
	if err := ApplyCoefficients(buf, buf, coeffs); err != nil {
		t.Fatalf("ApplyCoefficients() error = %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, buf, coeffs, 1e-12)
}

func TestApplyCoefficientsMismatch(t *testing.T) {
	if err := ApplyCoefficients(make([]float64, 3), make([]float64, 3), make([]float64, 2)); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestParse(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackman, TypeBlackmanHarris4Term} {
		got, err := Parse(" " + typ.String() + " ")
		if err != nil || got != typ {
			t.Fatalf("Parse(%q) = %v, %v", typ.String(), got, err)
		}
	}
	if _, err := Parse("kaiser"); err == nil {
		t.Fatal("expected error for unsupported window")
	}
}

func TestCoherentGainErrors(t *testing.T) {
	if _, err := CoherentGain(nil); err == nil {
		t.Fatal("expected error for empty coefficients")
	}
	if _, err := CoherentGain([]float64{1, -1}); err == nil {
		t.Fatal("expected error for zero gain")
	}
}

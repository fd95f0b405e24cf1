package conv

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-tuner/dsp/core"
)

// ErrEmptyInput is returned when an input block has no samples.
var ErrEmptyInput = errors.New("conv: empty input")

const minPlanSize = 16

// Autocorrelator computes linear autocorrelation via FFT:
// r = IFFT(|FFT(x)|^2) with enough zero padding to avoid wrap-around.
// It caches the plan and scratch buffers between calls and is not safe
// for concurrent use.
type Autocorrelator struct {
	size int
	plan *algofft.Plan[complex128]
	buf  []complex128
}

// NewAutocorrelator returns an autocorrelator. Plans are created lazily.
func NewAutocorrelator() *Autocorrelator {
	return &Autocorrelator{}
}

// Compute writes r[k] = sum x[i]*x[i+k] into dst for k in [0, len(dst)).
// Lags at or beyond len(x) are zero.
func (a *Autocorrelator) Compute(dst, x []float64) error {
	if len(x) == 0 {
		return ErrEmptyInput
	}
	if len(dst) == 0 {
		return nil
	}

	maxLag := min(len(dst), len(x))
	if err := a.prepare(max(minPlanSize, core.NextPowerOfTwo(len(x)+maxLag))); err != nil {
		return err
	}

	buf := a.buf
	for i, v := range x {
		buf[i] = complex(v, 0)
	}
	for i := len(x); i < len(buf); i++ {
		buf[i] = 0
	}

	if err := a.plan.Forward(buf, buf); err != nil {
		return fmt.Errorf("conv: forward FFT failed: %w", err)
	}
	for i, c := range buf {
		re, im := real(c), imag(c)
		buf[i] = complex(re*re+im*im, 0)
	}
	if err := a.plan.Inverse(buf, buf); err != nil {
		return fmt.Errorf("conv: inverse FFT failed: %w", err)
	}

	for k := range dst {
		if k < maxLag {
			dst[k] = real(buf[k])
		} else {
			dst[k] = 0
		}
	}
	return nil
}

func (a *Autocorrelator) prepare(size int) error {
	if a.plan != nil && a.size == size {
		return nil
	}
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}
	a.plan = plan
	a.size = size
	a.buf = make([]complex128, size)
	return nil
}

// AutoCorrelateDirect computes the same result as Autocorrelator.Compute by
// direct summation.
func AutoCorrelateDirect(dst, x []float64) error {
	if len(x) == 0 {
		return ErrEmptyInput
	}
	for k := range dst {
		sum := 0.0
		for i := 0; i+k < len(x); i++ {
			sum += x[i] * x[i+k]
		}
		dst[k] = sum
	}
	return nil
}

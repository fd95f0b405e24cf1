package audio

import (
	"context"
	"time"
)

// Block is one analysis window of mono samples.
type Block struct {
	Samples    []float64
	SampleRate float64
}

// Len returns the number of samples.
func (b Block) Len() int {
	return len(b.Samples)
}

// Duration returns the time span covered by the block.
func (b Block) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / b.SampleRate * float64(time.Second))
}

// Source supplies the most recent samples of a signal.
type Source interface {
	SampleRate() float64
	// Read fills dst with the latest len(dst) samples, oldest first, and
	// returns how many were valid. Missing history is zero-filled.
	Read(dst []float64) (int, error)
	Close() error
}

// Opener acquires a Source. Acquisition may be denied, in which case the
// error wraps ErrPermissionDenied.
type Opener interface {
	Open(ctx context.Context) (Source, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) (Source, error)

// Open calls f(ctx).
func (f OpenerFunc) Open(ctx context.Context) (Source, error) {
	return f(ctx)
}

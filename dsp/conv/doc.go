// Package conv provides correlation primitives for real-valued blocks.
//
// [Autocorrelator] computes linear autocorrelation through a cached FFT plan
// and is the fast path used by pitch detection. [AutoCorrelateDirect] is the
// O(N*L) reference implementation.
package conv

// Package biquad provides second-order IIR filter sections.
//
// A [Section] implements Direct Form II Transposed processing for
// [Coefficients]; [HighPass] designs the RBJ cookbook high-pass used to
// strip hum and DC offset ahead of pitch detection.
package biquad

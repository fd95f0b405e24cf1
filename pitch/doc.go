// Package pitch estimates the fundamental frequency of a monophonic block
// using time-domain autocorrelation.
//
// The estimator gates silence by RMS, trims the unvoiced edges of the block,
// searches the correlation curve past its initial descent and refines the
// winning lag with parabolic interpolation.
package pitch

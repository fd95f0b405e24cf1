// Package audio defines the sample blocks, sources and sentinel errors shared
// by the tuner and player paths.
//
// A [Source] delivers the most recent block of mono samples at a fixed rate.
// Live capture backends live in package device; [SyntheticSource] drives the
// same interfaces from an oscillator for demos and tests.
package audio

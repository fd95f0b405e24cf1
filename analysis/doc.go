// Package analysis derives visualizer snapshots from a live sample history.
//
// A Feed reads the newest FFTSize samples from a Reader (typically an
// audio.Ring written by the capture callback or the synthesizer's mixer) and
// returns either normalized spectrum magnitudes or the raw waveform. Reading
// never alters the source.
package analysis

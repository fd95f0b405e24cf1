// Package synth renders reference tones and practice patterns.
//
// Notes are produced by ToneGenerators obtained from a Backend. The Mixer is
// the software Backend: it sums every active voice, applies master gain and
// mute as one final stage and hands the result to an output device. A
// Synthesizer turns a Track into timed note onsets and returns a Handle whose
// Stop tears the whole session down.
package synth

package signal

import "fmt"

// Tone renders samples of wave at freqHz starting at phase zero, scaled by
// amplitude.
func Tone(wave Waveform, freqHz, amplitude, sampleRate float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("%s samples must be > 0: %d", wave, samples)
	}
	osc, err := NewOscillator(wave, freqHz, sampleRate)
	if err != nil {
		return nil, err
	}
	out := make([]float64, samples)
	osc.Fill(out)
	if amplitude != 1 {
		for i := range out {
			out[i] *= amplitude
		}
	}
	return out, nil
}

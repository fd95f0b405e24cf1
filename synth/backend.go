package synth

// ToneGenerator is one sounding voice.
type ToneGenerator interface {
	// Start begins oscillating at freq Hz. Starting a running tone retunes it.
	Start(freq float64, wave Waveform) error
	// Stop silences the tone. Stopping twice is a no-op.
	Stop()
	// SetGain sets a constant gain, replacing any envelope.
	SetGain(g float64)
	// ScheduleEnvelope restarts the gain contour from the current instant.
	ScheduleEnvelope(env Envelope)
}

// Backend produces tones and owns the master gain stage.
type Backend interface {
	NewTone() (ToneGenerator, error)
	SetMasterGain(g float64)
	SetMuted(muted bool)
	StopAll()
}

// Package device connects the engine to sound hardware: portaudio for
// capture and the beep speaker for output.
package device

package engine

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/synth"
	"github.com/cwbudde/algo-tuner/transport"
	"github.com/cwbudde/algo-tuner/tuning"
)

// Tracks returns the practice playlist.
func (e *Engine) Tracks() []synth.Track {
	return e.sched.Tracks()
}

// Position returns the player position.
func (e *Engine) Position() transport.Position {
	return e.sched.Position()
}

// Play starts the current track. On failure the player stays stopped.
func (e *Engine) Play() error {
	if err := e.sched.Play(); err != nil {
		e.log.Printf("Playback failed: %v", err)
		return err
	}
	e.log.Printf("Now playing: %s", e.sched.Current().Title)
	return nil
}

// Pause stops playback and keeps the position.
func (e *Engine) Pause() {
	e.sched.Pause()
}

// StopPlayback stops playback and rewinds the current track.
func (e *Engine) StopPlayback() {
	e.sched.Stop()
}

// Next moves to the following track.
func (e *Engine) Next() error {
	return e.sched.Next()
}

// Previous moves to the preceding track.
func (e *Engine) Previous() error {
	return e.sched.Previous()
}

// SelectTrack jumps to a playlist index, clamped to the list.
func (e *Engine) SelectTrack(index int) error {
	return e.sched.Select(index)
}

// Seek moves within the current track, clamped to its duration.
func (e *Engine) Seek(t time.Duration) {
	e.sched.Seek(t)
}

// SetVolume sets master volume on a 0..100 scale.
func (e *Engine) SetVolume(volume int) {
	volume = core.ClampInt(volume, 0, 100)
	e.mu.Lock()
	e.settings.Volume = volume
	e.mu.Unlock()
	e.sched.SetMasterGain(core.VolumeToGain(volume))
}

// SetMuted toggles output mute without interrupting playback.
func (e *Engine) SetMuted(muted bool) {
	e.mu.Lock()
	e.settings.Muted = muted
	e.mu.Unlock()
	e.sched.SetMuted(muted)
}

// PlayReference sounds the target note of string index of the active tuning,
// replacing any reference tone still ringing.
func (e *Engine) PlayReference(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if index < 0 || index >= tuning.StringCount {
		return fmt.Errorf("engine: string %d out of range", index)
	}

	e.stopReferenceLocked()
	s := e.tuning.Strings[index]
	h, err := e.synth.PlayReference(s.Frequency)
	if err != nil {
		e.log.Printf("Reference tone failed: %v", err)
		return err
	}
	e.reference = h
	return nil
}

func (e *Engine) stopReferenceLocked() {
	if e.reference != nil {
		e.reference.Stop()
		e.reference = nil
	}
}

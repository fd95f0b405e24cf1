package synth

import "time"

// Track is one entry of the practice playlist.
type Track struct {
	ID            string
	Title         string
	Duration      time.Duration
	BaseFrequency float64
	Pattern       PatternKind
}

// DefaultTracks returns the built-in practice playlist, one track per pattern.
func DefaultTracks() []Track {
	return []Track{
		{ID: "drone-a", Title: "A Drone", Duration: 30 * time.Second, BaseFrequency: 110, Pattern: Steady},
		{ID: "g-arpeggio", Title: "G Major Arpeggio", Duration: 30 * time.Second, BaseFrequency: 196, Pattern: Arpeggio},
		{ID: "d-chord", Title: "D Major Chord", Duration: 30 * time.Second, BaseFrequency: 146.83, Pattern: Chord},
		{ID: "e-scale", Title: "E Major Scale", Duration: 45 * time.Second, BaseFrequency: 164.81, Pattern: Scale},
		{ID: "a-rhythm", Title: "A Rhythm Groove", Duration: 30 * time.Second, BaseFrequency: 220, Pattern: Rhythm},
	}
}

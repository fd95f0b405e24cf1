package engine

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-tuner/analysis"
	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/tuning"
)

// DefaultTheme is the visualizer theme used when none is set.
const DefaultTheme = "classic"

// Settings is the consumer-facing configuration surface.
type Settings struct {
	Tuning     string
	Mode       tuning.Mode
	Visualizer analysis.VisualizerMode
	Theme      string
	Volume     int
	Muted      bool
}

// DefaultSettings returns standard tuning, single-string mode, bars, 70% volume.
func DefaultSettings() Settings {
	return Settings{
		Tuning:     tuning.Standard.ID,
		Mode:       tuning.Single,
		Visualizer: analysis.Bars,
		Theme:      DefaultTheme,
		Volume:     70,
	}
}

// Normalize validates the tuning and clamps volume into 0..100.
func (s Settings) Normalize() (Settings, error) {
	t, err := tuning.ByID(s.Tuning)
	if err != nil {
		return s, err
	}
	s.Tuning = t.ID

	if s.Mode != tuning.Multi {
		s.Mode = tuning.Single
	}
	if s.Visualizer < analysis.Bars || s.Visualizer > analysis.Circular {
		return s, fmt.Errorf("%w: %d", analysis.ErrUnknownVisualizer, int(s.Visualizer))
	}

	s.Theme = strings.TrimSpace(s.Theme)
	if s.Theme == "" {
		s.Theme = DefaultTheme
	}
	s.Volume = core.ClampInt(s.Volume, 0, 100)
	return s, nil
}

// Gain returns the master gain implied by Volume.
func (s Settings) Gain() float64 {
	return core.VolumeToGain(s.Volume)
}

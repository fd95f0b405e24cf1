package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVisualizer is returned for unrecognised visualizer names.
var ErrUnknownVisualizer = errors.New("analysis: unknown visualizer mode")

// Mode selects the snapshot domain.
type Mode int

const (
	Frequency Mode = iota
	TimeDomain
)

func (m Mode) String() string {
	if m == TimeDomain {
		return "time"
	}
	return "frequency"
}

// VisualizerMode is the consumer-facing display style.
type VisualizerMode int

const (
	Bars VisualizerMode = iota
	Oscilloscope
	Circular
)

var visualizerNames = [...]string{"bars", "oscilloscope", "circular"}

func (v VisualizerMode) String() string {
	if v < 0 || int(v) >= len(visualizerNames) {
		return fmt.Sprintf("VisualizerMode(%d)", int(v))
	}
	return visualizerNames[v]
}

// ParseVisualizerMode resolves a name such as "oscilloscope".
func ParseVisualizerMode(name string) (VisualizerMode, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range visualizerNames {
		if n == key {
			return VisualizerMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVisualizer, name)
}

// ModeFor returns the snapshot domain a visualizer needs.
func ModeFor(v VisualizerMode) Mode {
	if v == Oscilloscope {
		return TimeDomain
	}
	return Frequency
}

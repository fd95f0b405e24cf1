// Package config loads the tuner CLI configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-tuner/analysis"
	"github.com/cwbudde/algo-tuner/dsp/window"
	"github.com/cwbudde/algo-tuner/engine"
	"github.com/cwbudde/algo-tuner/tuning"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Tuner
	Tuning     string
	Mode       string // single or multi
	Visualizer string // bars, oscilloscope, circular
	Theme      string
	Window     string // analysis window: hann, hamming, blackman, ...

	// Output
	Volume  int // 0..100
	Muted   bool
	Latency time.Duration

	// Sample clock
	SampleRate      float64
	BlockSize       int
	TickRate        time.Duration
	FramesPerBuffer int

	// HighPass is the pitch prefilter cutoff in Hz, 0 to disable.
	HighPass float64

	// MIDI mirror, disabled when MIDIPort is empty
	MIDIPort    string
	MIDIChannel int
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	def := engine.DefaultSettings()
	return Config{
		Tuning:     envStr("TUNER_TUNING", def.Tuning),
		Mode:       envStr("TUNER_MODE", def.Mode.String()),
		Visualizer: envStr("TUNER_VISUALIZER", def.Visualizer.String()),
		Theme:      envStr("TUNER_THEME", def.Theme),
		Window:     envStr("TUNER_WINDOW", window.TypeHann.String()),

		Volume:  envInt("TUNER_VOLUME", def.Volume),
		Muted:   envBool("TUNER_MUTED", false),
		Latency: time.Duration(envInt("TUNER_LATENCY_MS", 100)) * time.Millisecond,

		SampleRate:      envFloat("TUNER_SAMPLE_RATE", 44100),
		BlockSize:       envInt("TUNER_BLOCK_SIZE", 4096),
		TickRate:        time.Duration(envInt("TUNER_TICK_MS", 16)) * time.Millisecond,
		FramesPerBuffer: envInt("TUNER_FRAMES_PER_BUFFER", 512),

		HighPass: envFloat("TUNER_HIGHPASS_HZ", 40),

		MIDIPort:    envStr("TUNER_MIDI_PORT", ""),
		MIDIChannel: envInt("TUNER_MIDI_CHANNEL", 0),
	}
}

// Settings converts the loaded values into engine settings. Unrecognised
// mode and visualizer names fall back to the defaults; the tuning ID is
// validated by the engine.
func (c Config) Settings() engine.Settings {
	s := engine.DefaultSettings()
	s.Tuning = c.Tuning
	if strings.EqualFold(strings.TrimSpace(c.Mode), tuning.Multi.String()) {
		s.Mode = tuning.Multi
	}
	if v, err := analysis.ParseVisualizerMode(c.Visualizer); err == nil {
		s.Visualizer = v
	}
	s.Theme = c.Theme
	s.Volume = c.Volume
	s.Muted = c.Muted
	return s
}

// AnalysisWindow resolves the configured visualizer window.
func (c Config) AnalysisWindow() (window.Type, error) {
	t, err := window.Parse(c.Window)
	if err != nil {
		return 0, fmt.Errorf("config: TUNER_WINDOW: %w", err)
	}
	return t, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// Package transport moves a playlist of practice tracks through Stopped and
// Playing states, restarting synthesis whenever the current track changes.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/synth"
)

// DefaultTick is the granularity at which elapsed time advances in Run.
const DefaultTick = time.Second

// ErrNoTracks is returned when a scheduler is built over an empty playlist.
var ErrNoTracks = errors.New("transport: no tracks")

// State is the transport state.
type State int

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// Session is one running synthesis of a track.
type Session interface {
	Stop()
}

// Player starts synthesis sessions and owns the output gain stage.
type Player interface {
	Start(track synth.Track, masterGain float64) (Session, error)
	SetMasterGain(g float64)
	SetMuted(muted bool)
}

type synthPlayer struct {
	s *synth.Synthesizer
}

// FromSynth adapts a Synthesizer to the Player interface.
func FromSynth(s *synth.Synthesizer) Player {
	return synthPlayer{s: s}
}

func (p synthPlayer) Start(track synth.Track, gain float64) (Session, error) {
	h, err := p.s.Play(track, gain)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (p synthPlayer) SetMasterGain(g float64) {
	if b := p.s.Backend(); b != nil {
		b.SetMasterGain(g)
	}
}

func (p synthPlayer) SetMuted(muted bool) {
	if b := p.s.Backend(); b != nil {
		b.SetMuted(muted)
	}
}

// Position is a snapshot of the transport.
type Position struct {
	TrackID  string
	Index    int
	Elapsed  time.Duration
	Duration time.Duration
	Playing  bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMasterGain sets the initial output gain.
func WithMasterGain(g float64) Option {
	return func(s *Scheduler) {
		s.gain = core.Clamp(g, 0, 1)
	}
}

// WithTick sets how often Run advances elapsed time.
func WithTick(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithErrorHandler receives auto-advance failures raised inside Run.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) {
		s.onError = fn
	}
}

// Scheduler is the practice-player transport.
type Scheduler struct {
	player  Player
	tracks  []synth.Track
	tick    time.Duration
	onError func(error)

	mu      sync.Mutex
	index   int
	elapsed time.Duration
	state   State
	gain    float64
	session Session
}

// New creates a stopped scheduler positioned at the first track.
func New(player Player, tracks []synth.Track, opts ...Option) (*Scheduler, error) {
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}
	if player == nil {
		return nil, errors.New("transport: nil player")
	}

	s := &Scheduler{
		player: player,
		tracks: append([]synth.Track(nil), tracks...),
		tick:   DefaultTick,
		gain:   1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Tracks returns the playlist.
func (s *Scheduler) Tracks() []synth.Track {
	return append([]synth.Track(nil), s.tracks...)
}

// Current returns the selected track.
func (s *Scheduler) Current() synth.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks[s.index]
}

// State returns the transport state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Position returns a snapshot of the playback position.
func (s *Scheduler) Position() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tracks[s.index]
	return Position{
		TrackID:  t.ID,
		Index:    s.index,
		Elapsed:  s.elapsed,
		Duration: t.Duration,
		Playing:  s.state == Playing,
	}
}

// Play starts the current track. On failure the transport stays Stopped.
func (s *Scheduler) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Playing {
		return nil
	}
	return s.startLocked()
}

// Pause stops synthesis and keeps the elapsed time.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	s.haltLocked()
	s.mu.Unlock()
}

// Stop stops synthesis and rewinds the current track. Calling it again has
// no further effect.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.haltLocked()
	s.elapsed = 0
	s.mu.Unlock()
}

// Next selects the following track, wrapping after the last.
func (s *Scheduler) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked((s.index + 1) % len(s.tracks))
}

// Previous selects the preceding track, wrapping before the first.
func (s *Scheduler) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked((s.index - 1 + len(s.tracks)) % len(s.tracks))
}

// Select jumps to index, clamped to the playlist.
func (s *Scheduler) Select(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(core.ClampInt(index, 0, len(s.tracks)-1))
}

// Seek moves the elapsed time, clamped to [0, duration].
func (s *Scheduler) Seek(t time.Duration) {
	s.mu.Lock()
	d := s.tracks[s.index].Duration
	s.elapsed = min(max(t, 0), d)
	s.mu.Unlock()
}

// SetMasterGain updates the output gain without interrupting playback.
func (s *Scheduler) SetMasterGain(g float64) {
	s.mu.Lock()
	s.gain = core.Clamp(g, 0, 1)
	g = s.gain
	s.mu.Unlock()
	s.player.SetMasterGain(g)
}

// SetMuted toggles mute without interrupting playback.
func (s *Scheduler) SetMuted(muted bool) {
	s.player.SetMuted(muted)
}

// Tick advances elapsed time by d while Playing. When the track's duration
// is reached the next track starts and the transport keeps playing.
func (s *Scheduler) Tick(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing {
		return nil
	}

	s.elapsed += d
	if s.elapsed < s.tracks[s.index].Duration {
		return nil
	}
	return s.selectLocked((s.index + 1) % len(s.tracks))
}

// Run advances the transport once per tick until ctx is done, then stops
// playback. Auto-advance failures leave the transport Stopped and do not end
// the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	defer s.Pause()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Tick(s.tick); err != nil && s.onError != nil {
				s.onError(err)
			}
		}
	}
}

func (s *Scheduler) selectLocked(index int) error {
	s.index = index
	s.elapsed = 0
	if s.state != Playing {
		return nil
	}
	s.haltLocked()
	return s.startLocked()
}

func (s *Scheduler) startLocked() error {
	t := s.tracks[s.index]
	session, err := s.player.Start(t, s.gain)
	if err != nil {
		s.state = Stopped
		return fmt.Errorf("transport: play %q: %w", t.ID, err)
	}
	s.session = session
	s.state = Playing
	return nil
}

func (s *Scheduler) haltLocked() {
	if s.session != nil {
		s.session.Stop()
		s.session = nil
	}
	s.state = Stopped
}

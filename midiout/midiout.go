// Package midiout mirrors synthesizer note onsets to a MIDI output port.
package midiout

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/synth"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// SendFunc delivers one MIDI message.
type SendFunc func(msg midi.Message) error

// Option configures a Sink.
type Option func(*Sink)

// WithChannel sets the MIDI channel (0-15).
func WithChannel(ch uint8) Option {
	return func(s *Sink) {
		s.channel = ch & 0x0f
	}
}

// WithAfterFunc replaces time.AfterFunc for scheduling note-offs.
func WithAfterFunc(fn func(d time.Duration, f func()) Stopper) Option {
	return func(s *Sink) {
		if fn != nil {
			s.after = fn
		}
	}
}

// Stopper cancels a scheduled note-off.
type Stopper interface {
	Stop() bool
}

// Sink is a synth.EventSink sending note on/off messages.
type Sink struct {
	send    SendFunc
	channel uint8
	after   func(d time.Duration, f func()) Stopper

	mu   sync.Mutex
	held map[uint8]*heldNote
	err  error
}

type heldNote struct {
	stop Stopper
}

func (n *heldNote) cancel() {
	if n.stop != nil {
		n.stop.Stop()
	}
}

var _ synth.EventSink = (*Sink)(nil)

// New creates a sink that writes through send.
func New(send SendFunc, opts ...Option) *Sink {
	s := &Sink{
		send: send,
		held: make(map[uint8]*heldNote),
		after: func(d time.Duration, f func()) Stopper {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open connects to the output port whose name contains portName. A MIDI
// driver must be registered by the caller, e.g. by importing rtmididrv.
func Open(portName string, opts ...Option) (*Sink, func() error, error) {
	out, err := midi.FindOutPort(portName)
	if err != nil {
		return nil, nil, fmt.Errorf("midiout: find port %q: %w", portName, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, nil, fmt.Errorf("midiout: open %q: %w", out.String(), err)
	}

	s := New(send, opts...)
	closeFn := func() error {
		s.AllNotesOff()
		return closePort(out)
	}
	return s, closeFn, nil
}

func closePort(out drivers.Out) error {
	if err := out.Close(); err != nil {
		return fmt.Errorf("midiout: close: %w", err)
	}
	return nil
}

// Key maps a frequency onto the nearest MIDI key (A4 = 440 Hz = 69).
func Key(freq float64) (uint8, bool) {
	if freq <= 0 || !core.IsFinite(freq) {
		return 0, false
	}
	k := int(math.Round(69 + 12*math.Log2(freq/440)))
	if k < 0 || k > 127 {
		return 0, false
	}
	return uint8(k), true
}

// Velocity maps a note gain onto 1..127, with a single voice at 100.
func Velocity(gain float64) uint8 {
	return uint8(core.ClampInt(int(math.Round(gain/synth.VoiceGain*100)), 1, 127))
}

// NoteOn sends a note-on and, for notes with a duration, schedules the
// matching note-off. Retriggering a held key ends it first.
func (s *Sink) NoteOn(ev synth.NoteEvent) {
	key, ok := Key(ev.Frequency)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, held := s.held[key]; held {
		prev.cancel()
		s.sendLocked(midi.NoteOff(s.channel, key))
	}

	s.sendLocked(midi.NoteOn(s.channel, key, Velocity(ev.Gain)))

	n := &heldNote{}
	if ev.Duration > 0 {
		n.stop = s.after(ev.Duration, func() { s.release(key, n) })
	}
	s.held[key] = n
}

// NoteOff ends the key of ev if it is still held.
func (s *Sink) NoteOff(ev synth.NoteEvent) {
	key, ok := Key(ev.Frequency)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, held := s.held[key]
	if !held {
		return
	}
	n.cancel()
	delete(s.held, key)
	s.sendLocked(midi.NoteOff(s.channel, key))
}

// AllNotesOff ends every held note.
func (s *Sink) AllNotesOff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, n := range s.held {
		n.cancel()
		s.sendLocked(midi.NoteOff(s.channel, key))
		delete(s.held, key)
	}
}

// Held returns the number of sounding keys.
func (s *Sink) Held() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held)
}

// Err returns the first send failure.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Sink) release(key uint8, n *heldNote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.held[key]; !ok || cur != n {
		return
	}
	delete(s.held, key)
	s.sendLocked(midi.NoteOff(s.channel, key))
}

func (s *Sink) sendLocked(msg midi.Message) {
	if s.send == nil {
		return
	}
	if err := s.send(msg); err != nil && s.err == nil {
		s.err = err
	}
}

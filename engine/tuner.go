package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-tuner/audio"
	"github.com/cwbudde/algo-tuner/pitch"
	"github.com/cwbudde/algo-tuner/tuning"
)

// Reading is the tuner output of one detection tick.
type Reading struct {
	// Note is the matched string's note, or the nearest chromatic note when
	// no string is within tolerance. Empty without a valid pitch.
	Note      string
	String    int
	Frequency float64
	Cents     float64
	State     tuning.State
	Valid     bool
	// InTolerance reports whether the pitch was attributed to String.
	InTolerance bool
	Strings     [tuning.StringCount]tuning.State
	Level       float64
}

type tunerSession struct {
	src  audio.Source
	ring *audio.Ring

	cancel context.CancelFunc
	done   chan struct{}
	// failed is set by the detection loop when the source stops delivering.
	failed atomic.Bool
}

// Readings delivers one Reading per detection tick. Readings are dropped
// when the consumer falls behind.
func (e *Engine) Readings() <-chan Reading {
	return e.readings
}

// Latest returns the most recent Reading of the current session.
func (e *Engine) Latest() (Reading, bool) {
	e.readMu.Lock()
	defer e.readMu.Unlock()
	return e.last, e.hasLast
}

// Listening reports whether a capture session is active.
func (e *Engine) Listening() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.liveTunerLocked() != nil
}

// Tuning returns the active tuning.
func (e *Engine) Tuning() tuning.Tuning {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tuning
}

// StartTuner acquires the capture device and starts the detection loop. If
// acquisition fails no loop starts and the previous readings stay in place.
// The device is opened without holding the engine lock, so other calls are
// served while a permission prompt is pending.
func (e *Engine) StartTuner(ctx context.Context) error {
	e.startMu.Lock()
	defer e.startMu.Unlock()

	e.mu.Lock()
	switch {
	case e.closed:
		e.mu.Unlock()
		return ErrClosed
	case e.liveTunerLocked() != nil:
		e.mu.Unlock()
		return nil
	case e.opener == nil:
		e.mu.Unlock()
		return ErrNoCapture
	}
	// A session whose source failed is replaced.
	e.stopTunerLocked()
	opener := e.opener
	e.mu.Unlock()

	src, err := opener.Open(ctx)
	if err != nil {
		e.log.Printf("Capture unavailable: %v", err)
		return fmt.Errorf("engine: start tuner: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		if err := src.Close(); err != nil {
			e.log.Printf("Capture close failed: %v", err)
		}
		return ErrClosed
	}

	e.tuner = &tunerSession{src: src, ring: audio.NewRing(e.cfg.BlockSize, src.SampleRate())}
	e.resetReadings()
	e.startLoopLocked()
	e.log.Printf("Tuner started: %s (%s mode)", e.tuning.Name, e.settings.Mode)
	return nil
}

// StopTuner stops the detection loop and releases the capture device before
// returning. Stopping an idle tuner is a no-op.
func (e *Engine) StopTuner() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTunerLocked()
}

// SetTuning switches the active tuning by ID.
func (e *Engine) SetTuning(id string) error {
	t, err := tuning.ByID(id)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.tuning = t
	e.settings.Tuning = t.ID
	e.restartLocked()
	e.log.Printf("Tuning set: %s", t.Name)
	return nil
}

// SetMode switches between single- and multi-string display.
func (e *Engine) SetMode(m tuning.Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.Mode = m
	e.restartLocked()
	e.log.Printf("Mode set: %s", m)
}

// liveTunerLocked returns the current session unless its source failed.
func (e *Engine) liveTunerLocked() *tunerSession {
	if e.tuner == nil || e.tuner.failed.Load() {
		return nil
	}
	return e.tuner
}

// retire tears down s after its detection loop exited on a read error. It
// runs on its own goroutine because stopping waits for the loop to finish.
func (e *Engine) retire(s *tunerSession) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tuner == s {
		e.stopTunerLocked()
	}
}

func (e *Engine) stopTunerLocked() {
	s := e.tuner
	if s == nil {
		return
	}
	e.stopLoopLocked()
	if err := s.src.Close(); err != nil {
		e.log.Printf("Capture close failed: %v", err)
	}
	e.tuner = nil
	e.log.Println("Tuner stopped")
}

// restartLocked clears classification state and, while listening, replaces
// the detection loop so no reading from the old configuration survives.
func (e *Engine) restartLocked() {
	if e.liveTunerLocked() == nil {
		e.stopTunerLocked()
		e.resetReadings()
		return
	}
	e.stopLoopLocked()
	e.resetReadings()
	e.startLoopLocked()
}

func (e *Engine) startLoopLocked() {
	s := e.tuner
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	est := pitch.NewEstimator(e.estOpts...)
	cls := tuning.NewClassifier(e.tuning, tuning.WithMode(e.settings.Mode))
	go e.detect(ctx, s, est, cls)
}

func (e *Engine) stopLoopLocked() {
	s := e.tuner
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
}

func (e *Engine) detect(ctx context.Context, s *tunerSession, est *pitch.Estimator, cls *tuning.Classifier) {
	defer close(s.done)

	ticker := time.NewTicker(e.cfg.TickRate)
	defer ticker.Stop()

	buf := make([]float64, e.cfg.BlockSize)
	rate := s.src.SampleRate()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if _, err := s.src.Read(buf); err != nil {
			e.log.Printf("Capture read failed: %v", err)
			s.failed.Store(true)
			go e.retire(s)
			return
		}
		s.ring.Write(buf)

		r := evaluate(est, cls, audio.Block{Samples: buf, SampleRate: rate})
		select {
		case <-ctx.Done():
			return
		default:
			e.publish(r)
		}
	}
}

func evaluate(est *pitch.Estimator, cls *tuning.Classifier, b audio.Block) Reading {
	r := Reading{
		String:    -1,
		Frequency: pitch.NoPitch,
		Level:     pitch.RMS(b.Samples),
	}

	det := est.Estimate(b)
	if det.Valid {
		r.Valid = true
		r.Frequency = det.Frequency
		m, ok := cls.Observe(det.Frequency)
		r.Cents = m.Cents
		r.State = m.State
		r.InTolerance = ok
		if ok {
			r.String = m.Index
			r.Note = m.String.Note
		} else {
			n, _ := tuning.NearestNote(det.Frequency)
			r.Note = n.String()
			r.Cents = n.Cents
			r.State = tuning.StateFor(n.Cents)
		}
	}
	r.Strings = cls.States()
	return r
}

func (e *Engine) publish(r Reading) {
	e.readMu.Lock()
	e.last = r
	e.hasLast = true
	e.readMu.Unlock()

	select {
	case e.readings <- r:
	default:
	}
}

func (e *Engine) resetReadings() {
	e.readMu.Lock()
	e.last = Reading{}
	e.hasLast = false
	e.readMu.Unlock()

	for {
		select {
		case <-e.readings:
		default:
			return
		}
	}
}

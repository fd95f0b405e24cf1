package tuning

// Mode selects how many strings display a state at once.
type Mode int

const (
	// Single shows only the most recently matched string.
	Single Mode = iota
	// Multi keeps an independent state for every string.
	Multi
)

func (m Mode) String() string {
	if m == Multi {
		return "multi"
	}
	return "single"
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithTolerance sets the relative acceptance band around each target.
func WithTolerance(rel float64) ClassifierOption {
	return func(c *Classifier) {
		if rel > 0 {
			c.tolerance = rel
		}
	}
}

// WithMode sets the initial display mode.
func WithMode(m Mode) ClassifierOption {
	return func(c *Classifier) {
		c.mode = m
	}
}

// Classifier holds per-string states for the active tuning. It belongs to a
// single detection loop and is not safe for concurrent use.
type Classifier struct {
	tuning    Tuning
	mode      Mode
	tolerance float64

	states  [StringCount]State
	last    Match
	hasLast bool
}

// NewClassifier creates a classifier for t.
func NewClassifier(t Tuning, opts ...ClassifierOption) *Classifier {
	c := &Classifier{tuning: t, tolerance: DefaultTolerance}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Tuning returns the active tuning.
func (c *Classifier) Tuning() Tuning {
	return c.tuning
}

// Mode returns the display mode.
func (c *Classifier) Mode() Mode {
	return c.mode
}

// Observe classifies freq and records the state of the matched string when
// the match is within tolerance. The boolean reports whether it was recorded.
func (c *Classifier) Observe(freq float64) (Match, bool) {
	m := ClassifyWithin(freq, c.tuning, c.tolerance)
	if !m.InTolerance {
		return m, false
	}

	if c.mode == Single {
		c.states = [StringCount]State{}
	}
	c.states[m.Index] = m.State
	c.last = m
	c.hasLast = true
	return m, true
}

// States returns the recorded state of each string.
func (c *Classifier) States() [StringCount]State {
	return c.states
}

// Last returns the most recently recorded match.
func (c *Classifier) Last() (Match, bool) {
	return c.last, c.hasLast
}

// SetTuning switches tunings and clears every recorded state.
func (c *Classifier) SetTuning(t Tuning) {
	c.tuning = t
	c.Reset()
}

// SetMode switches display mode and clears every recorded state.
func (c *Classifier) SetMode(m Mode) {
	c.mode = m
	c.Reset()
}

// Reset clears all recorded states.
func (c *Classifier) Reset() {
	c.states = [StringCount]State{}
	c.last = Match{}
	c.hasLast = false
}

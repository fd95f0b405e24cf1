package audio

import "sync"

// Ring is a fixed-size history of the most recent samples. Writers are
// typically audio callbacks; readers take consistent snapshots.
type Ring struct {
	mu         sync.RWMutex
	buf        []float64
	pos        int
	filled     int
	sampleRate float64
}

// NewRing returns a ring holding size samples.
func NewRing(size int, sampleRate float64) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{buf: make([]float64, size), sampleRate: sampleRate}
}

// SampleRate returns the rate of the samples written to the ring.
func (r *Ring) SampleRate() float64 {
	return r.sampleRate
}

// Size returns the capacity in samples.
func (r *Ring) Size() int {
	return len(r.buf)
}

// Write appends samples, overwriting the oldest history.
func (r *Ring) Write(samples []float64) {
	r.mu.Lock()
	for _, s := range samples {
		r.put(s)
	}
	r.mu.Unlock()
}

// Write32 appends float32 samples as delivered by device callbacks.
func (r *Ring) Write32(samples []float32) {
	r.mu.Lock()
	for _, s := range samples {
		r.put(float64(s))
	}
	r.mu.Unlock()
}

func (r *Ring) put(s float64) {
	r.buf[r.pos] = s
	r.pos++
	if r.pos == len(r.buf) {
		r.pos = 0
	}
	if r.filled < len(r.buf) {
		r.filled++
	}
}

// Latest copies the newest len(dst) samples into dst in chronological order.
// When fewer samples have been written the head of dst is zero-filled.
// Returns the number of valid samples copied.
func (r *Ring) Latest(dst []float64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := min(len(dst), len(r.buf))
	valid := min(n, r.filled)
	pad := len(dst) - valid
	for i := range pad {
		dst[i] = 0
	}

	size := len(r.buf)
	start := (r.pos - valid + size) % size
	for i := range valid {
		dst[pad+i] = r.buf[(start+i)%size]
	}
	return valid
}

// Reset discards all history.
func (r *Ring) Reset() {
	r.mu.Lock()
	clear(r.buf)
	r.pos = 0
	r.filled = 0
	r.mu.Unlock()
}

package dashboard

import (
	"sync"
	"time"
)

// ProfitSample is one observation of the session's cumulative profit.
type ProfitSample struct {
	Value float64
	At    time.Time
}

// ProfitHistory keeps a bounded window of session profit observations for
// trend rendering. Oldest samples fall off once capacity is reached.
type ProfitHistory struct {
	mu       sync.Mutex
	samples  []ProfitSample
	capacity int
}

// NewProfitHistory creates a history holding up to capacity samples.
func NewProfitHistory(capacity int) *ProfitHistory {
	if capacity <= 0 {
		capacity = 120
	}
	return &ProfitHistory{
		samples:  make([]ProfitSample, 0, capacity),
		capacity: capacity,
	}
}

// Record appends an observation, dropping the oldest when full.
func (h *ProfitHistory) Record(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = append(h.samples, ProfitSample{Value: value, At: time.Now()})
	if len(h.samples) > h.capacity {
		h.samples = h.samples[len(h.samples)-h.capacity:]
	}
}

// Series returns the sample values, oldest first.
func (h *ProfitHistory) Series() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	series := make([]float64, len(h.samples))
	for i, s := range h.samples {
		series[i] = s.Value
	}
	return series
}

// Last returns the most recent sample, if any.
func (h *ProfitHistory) Last() (ProfitSample, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) == 0 {
		return ProfitSample{}, false
	}
	return h.samples[len(h.samples)-1], true
}

// Len returns the number of retained samples.
func (h *ProfitHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.samples)
}

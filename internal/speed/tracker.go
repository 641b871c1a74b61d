// Package speed estimates throughput over a trailing time window.
package speed

import "time"

type sample struct {
	at    time.Time
	count uint64
}

// Tracker is a sliding-window rate estimator. It is not safe for concurrent
// use; the search coordinator owns it.
type Tracker struct {
	window  time.Duration
	samples []sample
	sum     uint64
}

func NewTracker(window time.Duration) *Tracker {
	return &Tracker{window: window}
}

// Record appends a sample and drops every sample older than at-window.
func (t *Tracker) Record(at time.Time, count uint64) {
	t.samples = append(t.samples, sample{at: at, count: count})
	t.sum += count

	cutoff := at.Add(-t.window)
	drop := 0
	for drop < len(t.samples) && t.samples[drop].at.Before(cutoff) {
		t.sum -= t.samples[drop].count
		drop++
	}
	if drop > 0 {
		// shift in place so the backing array is reused
		n := copy(t.samples, t.samples[drop:])
		t.samples = t.samples[:n]
	}
}

// Rate returns counts per second across the retained samples, or 0 when fewer
// than two samples remain or they share a timestamp.
func (t *Tracker) Rate() float64 {
	if len(t.samples) < 2 {
		return 0
	}
	span := t.samples[len(t.samples)-1].at.Sub(t.samples[0].at)
	if span <= 0 {
		return 0
	}
	return float64(t.sum) / span.Seconds()
}

// Total is the sum of counts inside the window.
func (t *Tracker) Total() uint64 { return t.sum }

func (t *Tracker) Len() int { return len(t.samples) }

func (t *Tracker) Window() time.Duration { return t.window }

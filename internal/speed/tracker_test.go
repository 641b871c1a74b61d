package speed

import (
	"math"
	"testing"
	"time"
)

func at(sec float64) time.Time {
	return time.Unix(1_700_000_000, 0).Add(time.Duration(sec * float64(time.Second)))
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRateOverWindow(t *testing.T) {
	tr := NewTracker(5 * time.Second)
	tr.Record(at(0), 100)
	tr.Record(at(1), 100)
	tr.Record(at(2), 100)

	if got := tr.Rate(); !approx(got, 150) {
		t.Fatalf("rate = %v, want 150", got)
	}
	if tr.Total() != 300 {
		t.Fatalf("total = %d", tr.Total())
	}
}

func TestStaleSamplesEvicted(t *testing.T) {
	tr := NewTracker(5 * time.Second)
	tr.Record(at(0), 100)
	tr.Record(at(1), 100)
	tr.Record(at(2), 100)
	tr.Record(at(10), 100)

	if tr.Len() != 1 || tr.Total() != 100 {
		t.Fatalf("len=%d total=%d, want only the newest sample", tr.Len(), tr.Total())
	}
	if got := tr.Rate(); got != 0 {
		t.Fatalf("rate with one sample = %v, want 0", got)
	}

	tr.Record(at(12), 300)
	if got := tr.Rate(); !approx(got, 200) {
		t.Fatalf("rate = %v, want 200", got)
	}
}

func TestSampleAtCutoffIsKept(t *testing.T) {
	tr := NewTracker(5 * time.Second)
	tr.Record(at(0), 10)
	tr.Record(at(5), 10)
	if tr.Len() != 2 {
		t.Fatalf("sample exactly at the cutoff was evicted")
	}
	if got := tr.Rate(); !approx(got, 4) {
		t.Fatalf("rate = %v, want 4", got)
	}
}

func TestZeroSpanAndEmpty(t *testing.T) {
	tr := NewTracker(time.Second)
	if tr.Rate() != 0 {
		t.Fatalf("empty tracker rate must be 0")
	}
	tr.Record(at(3), 50)
	tr.Record(at(3), 50)
	if tr.Rate() != 0 {
		t.Fatalf("zero span rate must be 0")
	}
}

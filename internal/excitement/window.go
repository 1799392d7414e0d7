package excitement

import (
	"math"
	"time"
)

// intervalWindow is a bounded, time-ordered buffer of recent samples
// spanning a fixed duration. It always holds only samples within
// [now-span, now]; the oldest entries are evicted on insert.
type intervalWindow struct {
	span    time.Duration
	samples []RateSample
}

func newIntervalWindow(span time.Duration) *intervalWindow {
	return &intervalWindow{span: span}
}

func (w *intervalWindow) add(s RateSample) {
	w.samples = append(w.samples, s)
	cutoff := s.Time.Add(-w.span)
	i := 0
	for i < len(w.samples) && w.samples[i].Time.Before(cutoff) {
		i++
	}
	if i > 0 {
		w.samples = append(w.samples[:0], w.samples[i:]...)
	}
}

func (w *intervalWindow) len() int { return len(w.samples) }

// meanRate returns the average rate over the window, or ok=false with
// fewer than two samples.
func (w *intervalWindow) meanRate() (float64, bool) {
	if len(w.samples) < 2 {
		return 0, false
	}
	var sum float64
	for _, s := range w.samples {
		sum += s.Rate
	}
	return sum / float64(len(w.samples)), true
}

// rmssd computes the root-mean-square of successive differences of
// the inter-beat intervals in the window, in milliseconds. With
// fewer than two samples there are no differences and it returns 0.
func (w *intervalWindow) rmssd() float64 {
	if len(w.samples) < 2 {
		return 0
	}
	// Inter-beat interval in ms from an instantaneous bpm reading.
	ibi := func(s RateSample) float64 { return 60_000.0 / s.Rate }

	var sumSq float64
	n := 0
	for i := 1; i < len(w.samples); i++ {
		d := ibi(w.samples[i]) - ibi(w.samples[i-1])
		sumSq += d * d
		n++
	}
	return math.Sqrt(sumSq / float64(n))
}

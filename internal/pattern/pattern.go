// Package pattern defines the composable stimulation patterns: units
// that lazily produce waveform buffers, and sequences that chain
// patterns into a continuous stream.
package pattern

import (
	"errors"
	"fmt"

	"github.com/spanezz/stimpattern/internal/wave"
)

// ErrInvalidParameter is returned by constructors for malformed
// arguments. Patterns never fail during generation: bad parameters
// are rejected up front.
var ErrInvalidParameter = errors.New("invalid parameter")

// Pattern produces a lazy sequence of waveform buffers. Next returns
// the next buffer, or ok=false once the pattern is exhausted. A
// pattern is not restartable: construct a fresh instance to replay.
type Pattern interface {
	// Describe returns a short human-readable description, used for
	// logging and the status API.
	Describe() string

	Next(g *wave.Generator) (buf []float64, ok bool)
}

// Silence emits a single all-zero buffer of Duration seconds.
type Silence struct {
	Duration float64

	done bool
}

func (s *Silence) Describe() string { return fmt.Sprintf("%.2fs of silence", s.Duration) }

func (s *Silence) Next(g *wave.Generator) ([]float64, bool) {
	if s.done {
		return nil, false
	}
	s.done = true
	return g.Silence(s.Duration), true
}

// Wave emits a single tone buffer. Freq and Volume are shapes, so a
// constant tone, a chirp and an enveloped wave are all the same
// pattern with different shapes.
type Wave struct {
	Duration float64
	Freq     wave.Shape
	Volume   wave.Shape

	done bool
}

func (w *Wave) Describe() string {
	return fmt.Sprintf("wave %.2fs freq=%v volume=%v", w.Duration, w.Freq, w.Volume)
}

func (w *Wave) Next(g *wave.Generator) ([]float64, bool) {
	if w.done {
		return nil, false
	}
	w.done = true
	return g.Wave(w.Duration, w.Freq, w.Volume), true
}

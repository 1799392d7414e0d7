// Package wave produces fixed-length sample buffers for tones,
// silences and envelope shapes. All buffers are float64 samples in
// [-1.0, 1.0] at the generator's sample rate.
package wave

import "math"

// Generator synthesizes sample buffers. It carries a running phase
// across consecutive Wave calls so that adjacent buffers join without
// a discontinuity (no click at buffer boundaries).
//
// A Generator is not safe for concurrent use; each channel owns one.
type Generator struct {
	sampleRate int
	phase      float64 // radians, accumulated across buffers
}

// NewGenerator creates a generator at the given sample rate in Hz.
func NewGenerator(sampleRate int) *Generator {
	return &Generator{sampleRate: sampleRate}
}

// SampleRate returns the generator's sample rate in Hz.
func (g *Generator) SampleRate() int { return g.sampleRate }

// Samples returns the buffer length for a duration in seconds.
func (g *Generator) Samples(duration float64) int {
	if duration <= 0 {
		return 0
	}
	return int(math.Round(duration * float64(g.sampleRate)))
}

// Silence returns an all-zero buffer of the given duration and resets
// the running phase: the next wave starts from a zero crossing.
func (g *Generator) Silence(duration float64) []float64 {
	g.phase = 0
	return make([]float64, g.Samples(duration))
}

// Wave returns duration seconds of volume(t) * sin(phase(t)), where
// the phase advances by the instantaneous frequency freq(t) each
// sample. Both freq and volume are Shapes, so constants, ramps, LFOs
// and chirps all go through the same path. A duration <= 0 yields an
// empty buffer.
func (g *Generator) Wave(duration float64, freq, volume Shape) []float64 {
	n := g.Samples(duration)
	out := make([]float64, n)
	step := 2 * math.Pi / float64(g.sampleRate)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(g.sampleRate)
		g.phase += step * freq.At(t, duration)
		out[i] = clip(volume.At(t, duration) * math.Sin(g.phase))
	}
	// Keep the accumulator bounded on long runs.
	g.phase = math.Mod(g.phase, 2*math.Pi)
	return out
}

func clip(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	if s < -1.0 {
		return -1.0
	}
	return s
}

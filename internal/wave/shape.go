package wave

import "math"

// Shape is a parameter that varies over the course of one buffer.
// At returns the value at elapsed time t (seconds) within a buffer
// of the given total duration.
type Shape interface {
	At(t, duration float64) float64
}

// Constant is a Shape with a fixed value.
type Constant float64

func (c Constant) At(t, duration float64) float64 { return float64(c) }

// Ramp interpolates linearly from From to To over the buffer.
type Ramp struct {
	From float64
	To   float64
}

func (r Ramp) At(t, duration float64) float64 {
	if duration <= 0 {
		return r.From
	}
	return r.From + (r.To-r.From)*t/duration
}

// LFO oscillates sinusoidally between Min and Max at Freq Hz.
type LFO struct {
	Min  float64
	Max  float64
	Freq float64
}

func (l LFO) At(t, duration float64) float64 {
	mid := (l.Min + l.Max) / 2
	span := (l.Max - l.Min) / 2
	return mid + span*math.Sin(2*math.Pi*l.Freq*t)
}

// Sweep interpolates linearly from From to To, like Ramp. Used as a
// frequency shape it produces a chirp: the generator integrates the
// instantaneous frequency, so the phase stays continuous.
type Sweep struct {
	From float64
	To   float64
}

func (s Sweep) At(t, duration float64) float64 {
	if duration <= 0 {
		return s.From
	}
	return s.From + (s.To-s.From)*t/duration
}

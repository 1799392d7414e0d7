package wave

import (
	"math"
	"testing"
)

func TestSamplesLength(t *testing.T) {
	g := NewGenerator(8000)

	cases := []struct {
		duration float64
		want     int
	}{
		{1.0, 8000},
		{0.1, 800},
		{0.05, 400},
		{0.0001, 1},
		{0, 0},
		{-1, 0},
	}
	for _, c := range cases {
		buf := g.Wave(c.duration, Constant(440), Constant(1.0))
		if len(buf) != c.want {
			t.Errorf("duration %v: expected %d samples, got %d", c.duration, c.want, len(buf))
		}
	}
}

func TestZeroDurationSilence(t *testing.T) {
	g := NewGenerator(44100)
	if buf := g.Silence(0); len(buf) != 0 {
		t.Errorf("expected empty buffer, got %d samples", len(buf))
	}
	if buf := g.Silence(-0.5); len(buf) != 0 {
		t.Errorf("expected empty buffer for negative duration, got %d samples", len(buf))
	}
}

func TestSilenceIsZero(t *testing.T) {
	g := NewGenerator(8000)
	buf := g.Silence(0.25)
	if len(buf) != 2000 {
		t.Fatalf("expected 2000 samples, got %d", len(buf))
	}
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d: expected 0, got %v", i, s)
		}
	}
}

func TestSamplesInRange(t *testing.T) {
	g := NewGenerator(8000)

	// Volume above 1.0 must clip, not overflow the sample range.
	for _, vol := range []Shape{Constant(1.0), Constant(1.5), Ramp{From: 0, To: 2}} {
		buf := g.Wave(0.5, Constant(440), vol)
		for i, s := range buf {
			if s < -1.0 || s > 1.0 {
				t.Fatalf("volume %v sample %d out of range: %v", vol, i, s)
			}
		}
	}
}

// maxStep returns the largest sample-to-sample jump in buf.
func maxStep(buf []float64) float64 {
	var max float64
	for i := 1; i < len(buf); i++ {
		if d := math.Abs(buf[i] - buf[i-1]); d > max {
			max = d
		}
	}
	return max
}

func TestChirpPhaseContinuity(t *testing.T) {
	const rate = 8000
	const fMax = 2000.0
	g := NewGenerator(rate)

	buf := g.Wave(0.5, Sweep{From: 100, To: fMax}, Constant(1.0))

	// The phase derivative tracks the linearly interpolated
	// instantaneous frequency, so no jump can exceed the phase step
	// at the top frequency.
	bound := 2 * math.Pi * fMax / rate
	if got := maxStep(buf); got > bound+1e-9 {
		t.Errorf("discontinuity %v exceeds bound %v", got, bound)
	}
}

func TestPhaseContinuityAcrossBuffers(t *testing.T) {
	const rate = 8000
	const freq = 440.0
	g := NewGenerator(rate)

	first := g.Wave(0.1, Constant(freq), Constant(1.0))
	second := g.Wave(0.1, Constant(freq), Constant(1.0))

	bound := 2 * math.Pi * freq / rate
	jump := math.Abs(second[0] - first[len(first)-1])
	if jump > bound+1e-9 {
		t.Errorf("boundary jump %v exceeds per-sample bound %v", jump, bound)
	}
}

func TestSilenceResetsPhase(t *testing.T) {
	g := NewGenerator(8000)
	g.Wave(0.033, Constant(440), Constant(1.0)) // leave phase mid-cycle
	g.Silence(0.01)

	buf := g.Wave(0.1, Constant(440), Constant(1.0))
	// First sample after a silence starts one phase step from zero.
	bound := 2 * math.Pi * 440 / 8000
	if math.Abs(buf[0]) > bound {
		t.Errorf("first sample after silence %v, expected within %v of zero", buf[0], bound)
	}
}

func TestShapes(t *testing.T) {
	if got := (Ramp{From: 2, To: 4}).At(0.5, 1.0); got != 3 {
		t.Errorf("ramp midpoint: expected 3, got %v", got)
	}
	if got := (Sweep{From: 100, To: 200}).At(1.0, 1.0); got != 200 {
		t.Errorf("sweep end: expected 200, got %v", got)
	}
	lfo := LFO{Min: 0.5, Max: 1.0, Freq: 2}
	for _, tm := range []float64{0, 0.1, 0.25, 0.33, 0.5} {
		v := lfo.At(tm, 1.0)
		if v < 0.5-1e-9 || v > 1.0+1e-9 {
			t.Errorf("lfo at %v out of bounds: %v", tm, v)
		}
	}
	if got := lfo.At(0, 1.0); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("lfo at 0: expected midpoint 0.75, got %v", got)
	}
}

package pattern

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/spanezz/stimpattern/internal/wave"
)

// drain pulls every buffer out of a pattern and returns them.
func drain(t *testing.T, g *wave.Generator, p Pattern) [][]float64 {
	t.Helper()
	var bufs [][]float64
	for {
		buf, ok := p.Next(g)
		if !ok {
			return bufs
		}
		bufs = append(bufs, buf)
	}
}

func totalSamples(bufs [][]float64) int {
	n := 0
	for _, b := range bufs {
		n += len(b)
	}
	return n
}

func TestSilenceEmitsOnce(t *testing.T) {
	g := wave.NewGenerator(8000)
	s := &Silence{Duration: 0.5}
	bufs := drain(t, g, s)
	if len(bufs) != 1 {
		t.Fatalf("got %d buffers, want 1", len(bufs))
	}
	if len(bufs[0]) != 4000 {
		t.Errorf("buffer has %d samples, want 4000", len(bufs[0]))
	}
	for i, v := range bufs[0] {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
	if _, ok := s.Next(g); ok {
		t.Error("exhausted pattern produced another buffer")
	}
}

func TestWaveEmitsOnce(t *testing.T) {
	g := wave.NewGenerator(8000)
	w := &Wave{Duration: 0.25, Freq: wave.Constant(440), Volume: wave.Constant(1)}
	bufs := drain(t, g, w)
	if len(bufs) != 1 {
		t.Fatalf("got %d buffers, want 1", len(bufs))
	}
	if len(bufs[0]) != 2000 {
		t.Errorf("buffer has %d samples, want 2000", len(bufs[0]))
	}
}

func TestPulseTrainSegments(t *testing.T) {
	tests := []struct {
		count    int
		segments int
	}{
		{1, 1},
		{2, 3},
		{3, 5},
		{5, 9},
	}
	for _, tt := range tests {
		g := wave.NewGenerator(8000)
		p, err := NewPulseTrain(tt.count, 0.1, 0.05, wave.Constant(440), wave.Constant(1))
		if err != nil {
			t.Fatalf("NewPulseTrain(%d): %v", tt.count, err)
		}
		bufs := drain(t, g, p)
		if len(bufs) != tt.segments {
			t.Errorf("count %d: got %d segments, want %d", tt.count, len(bufs), tt.segments)
		}
	}
}

func TestPulseTrainNoTrailingGap(t *testing.T) {
	// 3 pulses of 0.1s plus 2 gaps of 0.05s at 8kHz: 2400+800 samples.
	g := wave.NewGenerator(8000)
	p, err := NewPulseTrain(3, 0.1, 0.05, wave.Constant(440), wave.Constant(1))
	if err != nil {
		t.Fatalf("NewPulseTrain: %v", err)
	}
	bufs := drain(t, g, p)
	if got := totalSamples(bufs); got != 3200 {
		t.Errorf("total samples = %d, want 3200", got)
	}
	last := bufs[len(bufs)-1]
	quiet := true
	for _, v := range last {
		if v != 0 {
			quiet = false
			break
		}
	}
	if quiet {
		t.Error("last segment is silence, train must end on a pulse")
	}
}

func TestPulseTrainEmpty(t *testing.T) {
	g := wave.NewGenerator(8000)
	p, err := NewPulseTrain(0, 0.1, 0.05, wave.Constant(440), wave.Constant(1))
	if err != nil {
		t.Fatalf("NewPulseTrain(0): %v", err)
	}
	if bufs := drain(t, g, p); len(bufs) != 0 {
		t.Errorf("empty train emitted %d buffers", len(bufs))
	}

	c, err := NewChaosPulseTrain(0,
		Range{Min: 0.1, Max: 0.2}, Range{Min: 0.05, Max: 0.1},
		Range{Min: 200, Max: 400}, Tri{Min: 0.2, Mode: 0.5, Max: 1},
		rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewChaosPulseTrain(0): %v", err)
	}
	if bufs := drain(t, g, c); len(bufs) != 0 {
		t.Errorf("empty chaos train emitted %d buffers", len(bufs))
	}
}

func TestInvalidParameters(t *testing.T) {
	if _, err := NewPulseTrain(-1, 0.1, 0.05, wave.Constant(440), wave.Constant(1)); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative count: err = %v, want ErrInvalidParameter", err)
	}

	good := Range{Min: 1, Max: 2}
	bad := Range{Min: 2, Max: 1}
	tri := Tri{Min: 0.2, Mode: 0.5, Max: 0.8}
	cases := []struct {
		name     string
		duration Range
		gap      Range
		freq     Range
		volume   Tri
	}{
		{"duration", bad, good, good, tri},
		{"gap", good, bad, good, tri},
		{"freq", good, good, bad, tri},
		{"volume", good, good, good, Tri{Min: 0.5, Mode: 0.1, Max: 0.8}},
	}
	for _, tt := range cases {
		_, err := NewChaosPulseTrain(3, tt.duration, tt.gap, tt.freq, tt.volume, nil)
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%s: err = %v, want ErrInvalidParameter", tt.name, err)
		}
	}
}

func TestChaosPulseTrainReproducible(t *testing.T) {
	newTrain := func() *ChaosPulseTrain {
		p, err := NewChaosPulseTrain(4,
			Range{Min: 0.05, Max: 0.2},
			Range{Min: 0.02, Max: 0.1},
			Range{Min: 200, Max: 800},
			Tri{Min: 0.2, Mode: 0.7, Max: 1.0},
			rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatalf("NewChaosPulseTrain: %v", err)
		}
		return p
	}

	a := drain(t, wave.NewGenerator(8000), newTrain())
	b := drain(t, wave.NewGenerator(8000), newTrain())
	if len(a) != 7 {
		t.Fatalf("got %d segments, want 7", len(a))
	}
	if len(a) != len(b) {
		t.Fatalf("segment counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			t.Fatalf("segment %d lengths differ: %d vs %d", i, len(a[i]), len(b[i]))
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("segment %d sample %d differs: %v vs %v", i, j, a[i][j], b[i][j])
			}
		}
	}
}

func TestChaosPulseTrainBounds(t *testing.T) {
	duration := Range{Min: 0.05, Max: 0.2}
	p, err := NewChaosPulseTrain(20, duration,
		Range{Min: 0.02, Max: 0.1},
		Range{Min: 200, Max: 800},
		Tri{Min: 0.2, Mode: 0.7, Max: 1.0},
		rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewChaosPulseTrain: %v", err)
	}
	g := wave.NewGenerator(8000)
	for i := 0; ; i++ {
		buf, ok := p.Next(g)
		if !ok {
			break
		}
		if i%2 != 0 {
			continue
		}
		secs := float64(len(buf)) / 8000
		// Rounding to whole samples adds at most half a sample period.
		if secs < duration.Min-0.001 || secs > duration.Max+0.001 {
			t.Errorf("pulse %d duration %v outside [%v, %v]", i/2, secs, duration.Min, duration.Max)
		}
		for j, v := range buf {
			if v < -1 || v > 1 {
				t.Fatalf("pulse %d sample %d = %v outside [-1, 1]", i/2, j, v)
			}
		}
	}
}

func TestTriDraw(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tri := Tri{Min: 0.2, Mode: 0.7, Max: 1.0}
	for i := 0; i < 1000; i++ {
		v := tri.draw(rng)
		if v < tri.Min || v > tri.Max {
			t.Fatalf("draw %d = %v outside [%v, %v]", i, v, tri.Min, tri.Max)
		}
	}
	flat := Tri{Min: 0.5, Mode: 0.5, Max: 0.5}
	if v := flat.draw(rng); v != 0.5 {
		t.Errorf("degenerate draw = %v, want 0.5", v)
	}
}

package pattern

import (
	"testing"

	"github.com/spanezz/stimpattern/internal/wave"
)

func TestPlaylistOrder(t *testing.T) {
	a := &Silence{Duration: 0.1}
	b := &Silence{Duration: 0.2}
	seq := NewPlaylist(a, b)

	p, ok := seq.NextPattern()
	if !ok || p != Pattern(a) {
		t.Fatalf("first pattern = %v, %v", p, ok)
	}
	p, ok = seq.NextPattern()
	if !ok || p != Pattern(b) {
		t.Fatalf("second pattern = %v, %v", p, ok)
	}
	if _, ok := seq.NextPattern(); ok {
		t.Error("playlist did not terminate after its last pattern")
	}
	if _, ok := seq.NextPattern(); ok {
		t.Error("exhausted playlist yielded again")
	}
}

func TestRepeatMakesFreshPatterns(t *testing.T) {
	g := wave.NewGenerator(8000)
	seq := Repeat{Make: func() Pattern { return &Silence{Duration: 0.1} }}

	for i := 0; i < 3; i++ {
		p, ok := seq.NextPattern()
		if !ok {
			t.Fatalf("iteration %d: repeat terminated", i)
		}
		// Each instance must be unconsumed.
		if _, ok := p.Next(g); !ok {
			t.Fatalf("iteration %d: pattern already exhausted", i)
		}
	}
}

func TestFuncSequence(t *testing.T) {
	n := 0
	seq := FuncSequence(func() (Pattern, bool) {
		if n >= 2 {
			return nil, false
		}
		n++
		return &Silence{Duration: 0.1}, true
	})
	count := 0
	for {
		if _, ok := seq.NextPattern(); !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("sequence yielded %d patterns, want 2", count)
	}
}

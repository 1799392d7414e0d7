package pattern

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/spanezz/stimpattern/internal/wave"
)

// Range is a closed numeric interval a chaos pulse draws from
// uniformly.
type Range struct {
	Min float64
	Max float64
}

func (r Range) validate(name string) error {
	if r.Min > r.Max {
		return fmt.Errorf("%w: %s min %v > max %v", ErrInvalidParameter, name, r.Min, r.Max)
	}
	return nil
}

func (r Range) draw(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Tri is a three-point volume specification drawn from a triangular
// distribution with the given mode, so values cluster toward Mode.
type Tri struct {
	Min  float64
	Mode float64
	Max  float64
}

func (t Tri) validate(name string) error {
	if t.Min > t.Max || t.Mode < t.Min || t.Mode > t.Max {
		return fmt.Errorf("%w: %s min/mode/max %v/%v/%v not ordered", ErrInvalidParameter, name, t.Min, t.Mode, t.Max)
	}
	return nil
}

func (t Tri) draw(rng *rand.Rand) float64 {
	if t.Max == t.Min {
		return t.Min
	}
	u := rng.Float64()
	c := (t.Mode - t.Min) / (t.Max - t.Min)
	if u < c {
		return t.Min + math.Sqrt(u*(t.Max-t.Min)*(t.Mode-t.Min))
	}
	return t.Max - math.Sqrt((1-u)*(t.Max-t.Min)*(t.Max-t.Mode))
}

// PulseTrain emits count tone pulses of pulseDuration seconds each,
// separated by gap-long silences. There is no trailing gap: the
// produced sequence has 2*count-1 segments.
type PulseTrain struct {
	count         int
	pulseDuration float64
	gap           float64
	freq          wave.Shape
	volume        wave.Shape

	step int
}

// NewPulseTrain validates parameters up front; a negative count is
// an InvalidParameter error, count zero is a legal empty train.
func NewPulseTrain(count int, pulseDuration, gap float64, freq, volume wave.Shape) (*PulseTrain, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: pulse count %d < 0", ErrInvalidParameter, count)
	}
	return &PulseTrain{
		count:         count,
		pulseDuration: pulseDuration,
		gap:           gap,
		freq:          freq,
		volume:        volume,
	}, nil
}

func (p *PulseTrain) Describe() string {
	return fmt.Sprintf("%d pulses %.2fs gap=%.2fs freq=%v", p.count, p.pulseDuration, p.gap, p.freq)
}

func (p *PulseTrain) Next(g *wave.Generator) ([]float64, bool) {
	if p.step >= 2*p.count-1 {
		return nil, false
	}
	defer func() { p.step++ }()
	if p.step%2 == 1 {
		return g.Silence(p.gap), true
	}
	return g.Wave(p.pulseDuration, p.freq, p.volume), true
}

// ChaosPulseTrain is a PulseTrain whose per-pulse duration, frequency
// and gap are drawn uniformly from their ranges and whose volume is
// drawn from a triangular distribution, independently for each pulse.
type ChaosPulseTrain struct {
	count    int
	duration Range
	gap      Range
	freq     Range
	volume   Tri
	rng      *rand.Rand

	step int
}

// NewChaosPulseTrain validates all bounds at construction. rng may be
// nil, in which case a time-seeded source is used; tests inject a
// fixed-seed source for reproducible draws.
func NewChaosPulseTrain(count int, duration, gap, freq Range, volume Tri, rng *rand.Rand) (*ChaosPulseTrain, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: pulse count %d < 0", ErrInvalidParameter, count)
	}
	if err := duration.validate("duration"); err != nil {
		return nil, err
	}
	if err := gap.validate("gap"); err != nil {
		return nil, err
	}
	if err := freq.validate("freq"); err != nil {
		return nil, err
	}
	if err := volume.validate("volume"); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ChaosPulseTrain{
		count:    count,
		duration: duration,
		gap:      gap,
		freq:     freq,
		volume:   volume,
		rng:      rng,
	}, nil
}

func (p *ChaosPulseTrain) Describe() string {
	return fmt.Sprintf("%d chaos pulses %v-%vs freq=%v-%vHz",
		p.count, p.duration.Min, p.duration.Max, p.freq.Min, p.freq.Max)
}

func (p *ChaosPulseTrain) Next(g *wave.Generator) ([]float64, bool) {
	if p.step >= 2*p.count-1 {
		return nil, false
	}
	defer func() { p.step++ }()
	if p.step%2 == 1 {
		return g.Silence(p.gap.draw(p.rng)), true
	}
	return g.Wave(
		p.duration.draw(p.rng),
		wave.Constant(p.freq.draw(p.rng)),
		wave.Constant(p.volume.draw(p.rng)),
	), true
}

package pattern

import (
	"math/rand"
	"sync"
	"time"

	"github.com/spanezz/stimpattern/internal/excitement"
	"github.com/spanezz/stimpattern/internal/wave"
)

// HeartSync is an infinite Sequence whose pulse cadence follows the
// latest classified heart rate. Each NextPattern call reads the cell
// once and emits one beat-aligned pulse train; the trend steers the
// intensity. On a variability spike it requests a chaos override.
type HeartSync struct {
	cell *excitement.Cell

	// Carrier frequency in Hz and the volume ceiling. The trend
	// modulates volume between 40% and 100% of the ceiling.
	Freq      float64
	MaxVolume float64

	// PulsesPerCycle is how many beats one pattern covers before the
	// cadence is re-read from the cell.
	PulsesPerCycle int

	// NextPattern runs on the channel's frame loop while OnExcitement
	// runs on the classification path, so the mutable state they share
	// sits behind a mutex.
	mu       sync.Mutex
	override Overrider
	rng      *rand.Rand
	volume   float64
}

// NewHeartSync builds a sequence following cell. overrider receives
// the chaos override on a variability spike and may be nil. rng may
// be nil for a time-seeded source.
func NewHeartSync(cell *excitement.Cell, overrider Overrider, rng *rand.Rand) *HeartSync {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &HeartSync{
		cell:           cell,
		override:       overrider,
		rng:            rng,
		Freq:           440,
		MaxVolume:      1.0,
		PulsesPerCycle: 4,
		volume:         0.6,
	}
}

// SetOverrider retargets chaos overrides, typically at the channel
// this sequence was started on.
func (h *HeartSync) SetOverrider(o Overrider) {
	h.mu.Lock()
	h.override = o
	h.mu.Unlock()
}

func (h *HeartSync) NextPattern() (Pattern, bool) {
	snap, ok := h.cell.Load()
	if !ok {
		// Nothing classified yet: idle quietly for a beat at 60 bpm.
		return &Silence{Duration: 1}, true
	}

	h.mu.Lock()
	switch snap.Slope {
	case excitement.SlopeClimbing:
		h.volume += 0.1
	case excitement.SlopeFalling:
		h.volume -= 0.1
	}
	h.volume = clamp(h.volume, 0.4*h.MaxVolume, h.MaxVolume)
	volume := h.volume
	h.mu.Unlock()

	// One pulse per beat: a short tone on the beat, silence for the
	// rest of the period.
	period := 60.0 / snap.LastRate
	pulse := 0.3 * period
	gap := period - pulse
	p, err := NewPulseTrain(h.PulsesPerCycle, pulse, gap,
		wave.Constant(h.Freq), wave.Constant(volume))
	if err != nil {
		// Parameters above are always valid; keep the stream alive
		// regardless.
		return &Silence{Duration: period}, true
	}
	return p, true
}

// OnExcitement requests a chaos burst when the variability flag
// fires. Called synchronously from the classification path, so it
// only hands the pattern over and returns.
func (h *HeartSync) OnExcitement(snap excitement.Snapshot) {
	if !snap.Interesting {
		return
	}
	h.mu.Lock()
	overrider := h.override
	volume := h.volume
	seed := h.rng.Int63()
	h.mu.Unlock()
	if overrider == nil {
		return
	}
	// The burst gets its own random source: its draws happen later on
	// the channel's frame loop, not here.
	period := 60.0 / snap.LastRate
	burst, err := NewChaosPulseTrain(6,
		Range{Min: 0.2 * period, Max: 0.5 * period},
		Range{Min: 0.1 * period, Max: 0.4 * period},
		Range{Min: h.Freq * 0.5, Max: h.Freq * 1.5},
		Tri{Min: 0.5 * volume, Mode: volume, Max: h.MaxVolume},
		rand.New(rand.NewSource(seed)))
	if err != nil {
		return
	}
	overrider.RequestOverride(burst)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

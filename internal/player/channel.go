// Package player schedules pattern sequences onto output channels.
// Each channel is one independent output lane: it owns a sequence, a
// generation cursor and zero-or-one override, and produces one
// fixed-length frame per buffer period.
package player

import (
	"sync"

	"go.uber.org/zap"

	"github.com/spanezz/stimpattern/internal/excitement"
	"github.com/spanezz/stimpattern/internal/metrics"
	"github.com/spanezz/stimpattern/internal/pattern"
	"github.com/spanezz/stimpattern/internal/ringbuffer"
	"github.com/spanezz/stimpattern/internal/wave"
)

// State is the channel lifecycle phase, reported by the status API.
type State string

const (
	StateRunning    State = "running"
	StateOverridden State = "overridden"
	StateDone       State = "done"
)

// cursor re-chunks a stream of pattern buffers into arbitrary frame
// boundaries, retaining any leftover between calls. Pausing a cursor
// is free: it simply stops being asked for samples, and resumes at
// the exact sample where it left off.
type cursor struct {
	seq      pattern.Sequence // nil when wrapping a single pattern
	current  pattern.Pattern
	leftover []float64
}

func newSeqCursor(seq pattern.Sequence) *cursor  { return &cursor{seq: seq} }
func newPatternCursor(p pattern.Pattern) *cursor { return &cursor{current: p} }

// maxEmptyPulls bounds how many consecutive sample-less pulls fill
// tolerates before declaring the cursor exhausted. An infinite
// sequence of zero-duration patterns would otherwise spin forever
// while the channel mutex is held.
const maxEmptyPulls = 1024

// fill copies samples into frame[off:] and returns the new offset
// plus whether the cursor is exhausted. A sequence cursor advances to
// the next pattern when the current one runs out; a pattern cursor is
// exhausted when its single pattern is.
func (c *cursor) fill(g *wave.Generator, frame []float64, off int) (int, bool) {
	empty := 0
	for off < len(frame) {
		if len(c.leftover) > 0 {
			n := copy(frame[off:], c.leftover)
			c.leftover = c.leftover[n:]
			off += n
			continue
		}
		if c.current == nil {
			if c.seq == nil {
				return off, true
			}
			p, ok := c.seq.NextPattern()
			if !ok {
				return off, true
			}
			c.current = p
		}
		buf, ok := c.current.Next(g)
		if !ok {
			c.current = nil
			if c.seq == nil {
				return off, true
			}
			empty++
			if empty >= maxEmptyPulls {
				return off, true
			}
			continue
		}
		if len(buf) == 0 {
			empty++
			if empty >= maxEmptyPulls {
				return off, true
			}
			continue
		}
		empty = 0
		c.leftover = buf
	}
	return off, false
}

// Channel is one output lane. Frame production and override requests
// may come from different goroutines; everything else is owned by the
// run loop.
type Channel struct {
	name   string
	gen    *wave.Generator
	ring   *ringbuffer.RingBuffer
	logger *zap.Logger

	mu       sync.Mutex
	base     *cursor
	override *cursor
	pending  pattern.Pattern
	state    State
	err      error

	done chan struct{}
	stop chan struct{}
}

func newChannel(name string, seq pattern.Sequence, sampleRate, ringSec int, logger *zap.Logger) *Channel {
	return &Channel{
		name:   name,
		gen:    wave.NewGenerator(sampleRate),
		ring:   ringbuffer.New(ringSec, sampleRate),
		logger: logger.With(zap.String("channel", name)),
		base:   newSeqCursor(seq),
		state:  StateRunning,
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
	}
}

func (c *Channel) Name() string { return c.name }

// Done is closed when the channel's sequence has legitimately
// terminated or the channel was stopped. That is a completion signal,
// not an error.
func (c *Channel) Done() <-chan struct{} { return c.done }

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err reports why the channel terminated: nil after a legitimate
// sequence completion or an explicit stop, the sink error after an
// output collaborator failure. Meaningful once Done is closed.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Channel) fail(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// Waveform returns the last N seconds of produced samples.
func (c *Channel) Waveform(seconds int) []float64 { return c.ring.Snapshot(seconds) }

// RequestOverride stages p to take over at the next frame boundary:
// the in-flight frame completes first. A second request before the
// previous override finished replaces it, latest wins. After the
// override's stream is exhausted the base sequence resumes at the
// exact sample where it was paused.
func (c *Channel) RequestOverride(p pattern.Pattern) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDone {
		return
	}
	c.pending = p
	metrics.OverridesTotal.WithLabelValues(c.name).Inc()
	c.logger.Info("override requested", zap.String("pattern", p.Describe()))
}

// React routes a fresh snapshot to the channel's sequence when it
// implements the reaction capability.
func (c *Channel) React(snap excitement.Snapshot) {
	c.mu.Lock()
	seq := c.base.seq
	c.mu.Unlock()
	if r, ok := seq.(pattern.Reactor); ok {
		r.OnExcitement(snap)
	}
}

// frame produces the next fixed-length frame. A short tail is
// zero-padded; ok=false means the sequence is exhausted and no frame
// was produced.
func (c *Channel) frame(n int) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDone {
		return nil, false
	}
	if c.pending != nil {
		c.override = newPatternCursor(c.pending)
		c.pending = nil
		c.state = StateOverridden
	}

	frame := make([]float64, n)
	off := 0
	if c.override != nil {
		var done bool
		off, done = c.override.fill(c.gen, frame, off)
		if !done {
			c.ring.Write(frame)
			return frame, true
		}
		// Override exhausted: the rest of this frame resumes the
		// paused base stream.
		c.override = nil
		c.state = StateRunning
	}

	off, exhausted := c.base.fill(c.gen, frame, off)
	if exhausted && off == 0 {
		c.state = StateDone
		return nil, false
	}
	c.ring.Write(frame)
	return frame, true
}

// Stop lets the in-flight frame complete, then halts production.
func (c *Channel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDone {
		return
	}
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

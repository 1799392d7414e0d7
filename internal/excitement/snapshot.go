// Package excitement turns a stream of heart-rate samples into a
// continuously updated classification of the listener's state:
// rate trend, variability, and an edge-triggered "interesting" flag.
package excitement

import (
	"sync/atomic"
	"time"
)

// RateSample is one instantaneous heart-rate reading from the input
// collaborator.
type RateSample struct {
	Time time.Time
	Rate float64 // beats per minute
}

// Slope classifies the current rate trend.
type Slope int

const (
	SlopeNone Slope = iota
	SlopeClimbing
	SlopeFalling
	SlopeCoasting
)

func (s Slope) String() string {
	switch s {
	case SlopeClimbing:
		return "climbing"
	case SlopeFalling:
		return "falling"
	case SlopeCoasting:
		return "coasting"
	default:
		return "none"
	}
}

// Snapshot is the classification emitted after each accepted sample.
// It is an immutable value: a new one replaces the previous wholesale,
// so concurrent readers never observe a partial update.
type Snapshot struct {
	Time      time.Time
	LastRate  float64
	LastSlope float64 // bpm change versus the previous sample
	Slope     Slope

	// Interesting is set for exactly one classification cycle when
	// the short-window variability crosses above the configured
	// threshold. ShortRMSSD carries the statistic itself for
	// consumers that want a level rather than an edge.
	Interesting bool
	ShortRMSSD  float64 // milliseconds
}

// Cell holds the latest Snapshot: written by the classifier, read by
// any number of patterns on the buffer-production path.
type Cell struct {
	p atomic.Pointer[Snapshot]
}

// Load returns the latest snapshot, or ok=false before the first one.
func (c *Cell) Load() (Snapshot, bool) {
	s := c.p.Load()
	if s == nil {
		return Snapshot{}, false
	}
	return *s, true
}

func (c *Cell) store(s Snapshot) {
	c.p.Store(&s)
}

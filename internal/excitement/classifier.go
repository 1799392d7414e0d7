package excitement

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spanezz/stimpattern/internal/metrics"
)

// Config holds the classifier tuning parameters.
type Config struct {
	// Spans are the sliding window tiers. At least one; the shortest
	// drives variability, the shortest and longest drive the slope
	// classification.
	Spans []time.Duration

	// SlopeThreshold is the bpm difference between the short-window
	// and long-window mean rates beyond which the trend is classified
	// as climbing or falling.
	SlopeThreshold float64

	// RMSSDThreshold is the short-window RMSSD (ms) above which a
	// variability spike sets the interesting flag.
	RMSSDThreshold float64
}

// Classifier consumes timestamped heart-rate samples and publishes a
// fresh Snapshot to its Cell after each accepted sample. Process is
// called from a single goroutine (the ingest loop); the published
// snapshot is read lock-free by the buffer-production path.
type Classifier struct {
	cfg    Config
	cell   *Cell
	logger *zap.Logger

	windows []*intervalWindow
	last    *RateSample
	prevVar float64

	listeners []func(Snapshot)
	stopped   atomic.Bool
}

// New validates the configuration and builds a classifier publishing
// into cell.
func New(cfg Config, cell *Cell, logger *zap.Logger) (*Classifier, error) {
	if len(cfg.Spans) == 0 {
		return nil, fmt.Errorf("classifier: at least one window span required")
	}
	spans := append([]time.Duration(nil), cfg.Spans...)
	sort.Slice(spans, func(i, j int) bool { return spans[i] < spans[j] })
	for _, s := range spans {
		if s <= 0 {
			return nil, fmt.Errorf("classifier: window span %v must be positive", s)
		}
	}
	cfg.Spans = spans

	windows := make([]*intervalWindow, len(spans))
	for i, s := range spans {
		windows[i] = newIntervalWindow(s)
	}
	return &Classifier{
		cfg:     cfg,
		cell:    cell,
		logger:  logger.Named("excitement"),
		windows: windows,
	}, nil
}

// Register adds a listener invoked synchronously with every new
// snapshot. Listeners must not block. Not safe to call concurrently
// with Process: register everything before starting the ingest loop.
func (c *Classifier) Register(fn func(Snapshot)) {
	c.listeners = append(c.listeners, fn)
}

// Stop makes the classifier drop all further samples. Any Process
// call already in flight completes; no snapshot is emitted after.
func (c *Classifier) Stop() {
	c.stopped.Store(true)
}

// Process classifies one incoming sample. Malformed or out-of-order
// samples are dropped with a logged anomaly: upstream transports
// jitter, and that must never take the classifier down.
func (c *Classifier) Process(s RateSample) {
	if c.stopped.Load() {
		return
	}
	if s.Time.IsZero() || s.Rate <= 0 || math.IsNaN(s.Rate) || math.IsInf(s.Rate, 0) {
		c.logger.Warn("dropping malformed sample",
			zap.Time("time", s.Time), zap.Float64("rate", s.Rate))
		metrics.SamplesDroppedTotal.WithLabelValues("malformed").Inc()
		return
	}
	if c.last != nil && !s.Time.After(c.last.Time) {
		c.logger.Warn("dropping out-of-order sample",
			zap.Time("time", s.Time), zap.Time("latest", c.last.Time))
		metrics.SamplesDroppedTotal.WithLabelValues("out_of_order").Inc()
		return
	}

	for _, w := range c.windows {
		w.add(s)
	}

	short := c.windows[0]
	long := c.windows[len(c.windows)-1]

	var lastSlope float64
	if c.last != nil {
		lastSlope = s.Rate - c.last.Rate
	}

	// A sustained divergence of the short-window mean from the
	// long-window mean marks a trend; a single jump beyond the same
	// threshold marks it immediately.
	slope := SlopeNone
	if shortMean, ok := short.meanRate(); ok {
		longMean, _ := long.meanRate() // long holds at least what short holds
		switch {
		case shortMean-longMean > c.cfg.SlopeThreshold || lastSlope > c.cfg.SlopeThreshold:
			slope = SlopeClimbing
		case longMean-shortMean > c.cfg.SlopeThreshold || -lastSlope > c.cfg.SlopeThreshold:
			slope = SlopeFalling
		default:
			slope = SlopeCoasting
		}
	}

	// Edge-triggered: true only on the cycle where the variability
	// statistic crosses above the threshold.
	variability := short.rmssd()
	interesting := variability > c.cfg.RMSSDThreshold && c.prevVar <= c.cfg.RMSSDThreshold
	c.prevVar = variability

	c.last = &s
	snap := Snapshot{
		Time:        s.Time,
		LastRate:    s.Rate,
		LastSlope:   lastSlope,
		Slope:       slope,
		Interesting: interesting,
		ShortRMSSD:  variability,
	}
	c.cell.store(snap)

	metrics.HeartSamplesTotal.Inc()
	metrics.SnapshotsTotal.Inc()
	metrics.LastHeartRate.Set(s.Rate)
	metrics.ShortWindowRMSSD.Set(variability)
	if interesting {
		metrics.InterestingTotal.Inc()
		c.logger.Info("variability spike",
			zap.Float64("rmssd", variability),
			zap.Float64("rate", s.Rate))
	}

	for _, fn := range c.listeners {
		fn(snap)
	}
}

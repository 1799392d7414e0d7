package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges
var (
	ActiveChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stimpattern_active_channels",
		Help: "Number of channels currently producing buffers",
	})
	LastHeartRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stimpattern_last_heart_rate_bpm",
		Help: "Rate of the last accepted heart-rate sample",
	})
	ShortWindowRMSSD = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stimpattern_short_window_rmssd_ms",
		Help: "RMSSD of the shortest classifier window in milliseconds",
	})
)

// Counters
var (
	HeartSamplesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stimpattern_heart_samples_total",
		Help: "Total heart-rate samples accepted by the classifier",
	})
	SamplesDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stimpattern_samples_dropped_total",
		Help: "Heart-rate samples dropped by reason",
	}, []string{"reason"})
	SnapshotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stimpattern_snapshots_total",
		Help: "Total excitement snapshots emitted",
	})
	InterestingTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stimpattern_interesting_total",
		Help: "Total snapshots with the interesting flag set",
	})
	BuffersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stimpattern_buffers_total",
		Help: "Total buffers generated by channel",
	}, []string{"channel"})
	OverridesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stimpattern_overrides_total",
		Help: "Total override requests by channel",
	}, []string{"channel"})
	ChannelsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stimpattern_channels_completed_total",
		Help: "Channels whose top-level sequence terminated",
	})
	SinkErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stimpattern_sink_errors_total",
		Help: "Write failures reported by the output collaborator",
	})
)

// Histograms
var (
	BufferGenSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stimpattern_buffer_gen_seconds",
		Help:    "Time spent generating one output buffer by channel",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
	}, []string{"channel"})
)

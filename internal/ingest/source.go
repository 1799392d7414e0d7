// Package ingest reads heart-rate samples from an input collaborator
// and feeds them to the classifier. Sources share a line/message
// framing: one JSON record per line or message, {"time": unix
// seconds, "rate": bpm}.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/spanezz/stimpattern/internal/excitement"
)

// State constants for ingest source lifecycle.
const (
	StateStarting = "starting"
	StateRunning  = "running"
	StateStopped  = "stopped"
	StateError    = "error"
)

// Handler receives each decoded sample. The classifier's Process
// method satisfies this.
type Handler func(excitement.RateSample)

// Source is the interface for any rate-sample ingest source (file,
// stdin, NATS subject, websocket).
type Source interface {
	// Start begins ingesting samples. Blocks until ctx is cancelled,
	// the source ends, or an error occurs.
	Start(ctx context.Context) error
	// Stop terminates the ingest. Idempotent.
	Stop()
	// Status returns a snapshot of current ingest state.
	Status() Status
}

// Status describes the current state of an ingest source.
type Status struct {
	State       string `json:"state"`
	Source      string `json:"source"`
	RecordsRead int64  `json:"recordsRead"`
	LastError   string `json:"lastError,omitempty"`
}

type rateRecord struct {
	Time float64 `json:"time"` // unix seconds, fractional
	Rate float64 `json:"rate"` // beats per minute
}

// parseRecord decodes one framed record. Framing-level garbage is an
// error here; semantic validation (rate bounds, ordering) belongs to
// the classifier.
func parseRecord(data []byte) (excitement.RateSample, error) {
	var rec rateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return excitement.RateSample{}, fmt.Errorf("decode record: %w", err)
	}
	if rec.Time <= 0 || math.IsNaN(rec.Time) || math.IsInf(rec.Time, 0) {
		return excitement.RateSample{}, fmt.Errorf("record has no usable timestamp")
	}
	sec, frac := math.Modf(rec.Time)
	return excitement.RateSample{
		Time: time.Unix(int64(sec), int64(frac*1e9)),
		Rate: rec.Rate,
	}, nil
}

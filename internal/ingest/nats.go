package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/spanezz/stimpattern/internal/metrics"
)

// NATSSource subscribes to a subject carrying one JSON record per
// message. The connection reconnects indefinitely; samples published
// while disconnected are simply missed, which the classifier already
// tolerates.
type NATSSource struct {
	url     string
	subject string
	handler Handler
	logger  *zap.Logger

	mu        sync.Mutex
	state     string
	lastError string
	cancel    context.CancelFunc

	records atomic.Int64
}

func NewNATSSource(url, subject string, handler Handler, logger *zap.Logger) *NATSSource {
	return &NATSSource{
		url:     url,
		subject: subject,
		handler: handler,
		logger:  logger.With(zap.String("source", url), zap.String("subject", subject)),
		state:   StateStopped,
	}
}

func (s *NATSSource) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateRunning || s.state == StateStarting {
		s.mu.Unlock()
		return fmt.Errorf("ingest already running")
	}
	s.state = StateStarting
	s.lastError = ""
	s.records.Store(0)
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	nc, err := nats.Connect(s.url,
		nats.Name("stimpattern-ingest"),
		nats.Timeout(nats.DefaultTimeout),
		nats.ReconnectWait(nats.DefaultReconnectWait),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		s.fail(err)
		return fmt.Errorf("connect nats: %w", err)
	}
	defer nc.Close()

	sub, err := nc.Subscribe(s.subject, func(msg *nats.Msg) {
		s.deliver(msg.Data)
	})
	if err != nil {
		s.fail(err)
		return fmt.Errorf("subscribe %s: %w", s.subject, err)
	}
	defer sub.Unsubscribe()

	s.setState(StateRunning)
	s.logger.Info("ingest started")

	<-ctx.Done()
	s.setState(StateStopped)
	s.logger.Info("ingest ended", zap.Int64("records", s.records.Load()))
	return nil
}

func (s *NATSSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *NATSSource) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:       s.state,
		Source:      s.url + " " + s.subject,
		RecordsRead: s.records.Load(),
		LastError:   s.lastError,
	}
}

func (s *NATSSource) deliver(data []byte) {
	sample, err := parseRecord(data)
	if err != nil {
		s.logger.Warn("dropping unparseable record", zap.Error(err))
		metrics.SamplesDroppedTotal.WithLabelValues("unparseable").Inc()
		return
	}
	s.records.Add(1)
	s.handler(sample)
}

func (s *NATSSource) setState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *NATSSource) fail(err error) {
	s.mu.Lock()
	s.state = StateError
	s.lastError = err.Error()
	s.mu.Unlock()
}

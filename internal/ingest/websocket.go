package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/spanezz/stimpattern/internal/metrics"
)

const wsDialTimeout = 10 * time.Second

// WebsocketSource connects to a monitor exposing rate samples as one
// JSON record per text message.
type WebsocketSource struct {
	url     string
	handler Handler
	logger  *zap.Logger

	mu        sync.Mutex
	state     string
	lastError string
	cancel    context.CancelFunc

	records atomic.Int64
}

func NewWebsocketSource(url string, handler Handler, logger *zap.Logger) *WebsocketSource {
	return &WebsocketSource{
		url:     url,
		handler: handler,
		logger:  logger.With(zap.String("source", url)),
		state:   StateStopped,
	}
}

func (s *WebsocketSource) Start(ctx context.Context) error {
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

	dialer := websocket.Dialer{HandshakeTimeout: wsDialTimeout}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		s.fail(err)
		return fmt.Errorf("dial monitor: %w", err)
	}
	defer conn.Close()

	s.setState(StateRunning)
	s.logger.Info("ingest started")

	// Unblock ReadMessage on cancellation.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				s.setState(StateStopped)
				s.logger.Info("ingest ended", zap.Int64("records", s.records.Load()))
				return nil
			}
			s.fail(err)
			return fmt.Errorf("read monitor: %w", err)
		}
		s.deliver(data)
	}
}

func (s *WebsocketSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *WebsocketSource) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:       s.state,
		Source:      s.url,
		RecordsRead: s.records.Load(),
		LastError:   s.lastError,
	}
}

func (s *WebsocketSource) deliver(data []byte) {
	sample, err := parseRecord(data)
	if err != nil {
		s.logger.Warn("dropping unparseable record", zap.Error(err))
		metrics.SamplesDroppedTotal.WithLabelValues("unparseable").Inc()
		return
	}
	s.records.Add(1)
	s.handler(sample)
}

func (s *WebsocketSource) setState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *WebsocketSource) fail(err error) {
	s.mu.Lock()
	s.state = StateError
	s.lastError = err.Error()
	s.mu.Unlock()
}

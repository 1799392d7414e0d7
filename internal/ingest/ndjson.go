package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spanezz/stimpattern/internal/metrics"
)

// NDJSONSource reads one JSON record per line from a file or stdin.
// A file is read at line pace, which makes a recorded session replay
// as fast as it parses; live use points this at a FIFO or stdin.
type NDJSONSource struct {
	path    string
	handler Handler
	logger  *zap.Logger

	mu        sync.Mutex
	state     string
	lastError string
	cancel    context.CancelFunc

	records atomic.Int64
}

// NewNDJSONSource reads from path, or from stdin when path is "-".
func NewNDJSONSource(path string, handler Handler, logger *zap.Logger) *NDJSONSource {
	return &NDJSONSource{
		path:    path,
		handler: handler,
		logger:  logger.With(zap.String("source", path)),
		state:   StateStopped,
	}
}

func (s *NDJSONSource) Start(ctx context.Context) error {
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

	var r io.ReadCloser
	if s.path == "-" {
		r = io.NopCloser(os.Stdin)
	} else {
		f, err := os.Open(s.path)
		if err != nil {
			s.fail(err)
			return fmt.Errorf("open sample stream: %w", err)
		}
		r = f
	}
	defer r.Close()

	s.setState(StateRunning)
	s.logger.Info("ingest started")

	// Close the reader when cancelled so a blocked line read returns.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			r.Close()
		case <-done:
		}
	}()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.deliver([]byte(line))
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		s.fail(err)
		return fmt.Errorf("read sample stream: %w", err)
	}
	s.setState(StateStopped)
	s.logger.Info("ingest ended", zap.Int64("records", s.records.Load()))
	return nil
}

func (s *NDJSONSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *NDJSONSource) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:       s.state,
		Source:      s.path,
		RecordsRead: s.records.Load(),
		LastError:   s.lastError,
	}
}

func (s *NDJSONSource) deliver(data []byte) {
	sample, err := parseRecord(data)
	if err != nil {
		s.logger.Warn("dropping unparseable record", zap.Error(err))
		metrics.SamplesDroppedTotal.WithLabelValues("unparseable").Inc()
		return
	}
	s.records.Add(1)
	s.handler(sample)
}

func (s *NDJSONSource) setState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *NDJSONSource) fail(err error) {
	s.mu.Lock()
	s.state = StateError
	s.lastError = err.Error()
	s.mu.Unlock()
}

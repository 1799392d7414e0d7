package player

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spanezz/stimpattern/internal/excitement"
	"github.com/spanezz/stimpattern/internal/metrics"
	"github.com/spanezz/stimpattern/internal/pattern"
	"github.com/spanezz/stimpattern/internal/sink"
)

// Config tunes the output cadence.
type Config struct {
	SampleRate   int           // output sample rate in Hz
	BufferPeriod time.Duration // one frame per period
	RingSec      int           // per-channel waveform lookback
}

// Player owns the output channels. Every channel runs its own frame
// loop at the configured cadence, so an expensive pattern on one
// channel never stalls another channel's output.
type Player struct {
	cfg      Config
	sink     sink.Sink
	logger   *zap.Logger
	frameLen int

	mu       sync.RWMutex
	channels map[string]*Channel
	wg       sync.WaitGroup
	stopping bool
}

// New validates the configuration and builds an idle player.
func New(cfg Config, out sink.Sink, logger *zap.Logger) (*Player, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("player: sample rate %d must be positive", cfg.SampleRate)
	}
	if cfg.BufferPeriod <= 0 {
		return nil, fmt.Errorf("player: buffer period %v must be positive", cfg.BufferPeriod)
	}
	if cfg.RingSec <= 0 {
		cfg.RingSec = 1
	}
	frameLen := int(math.Round(cfg.BufferPeriod.Seconds() * float64(cfg.SampleRate)))
	if frameLen == 0 {
		frameLen = 1
	}
	return &Player{
		cfg:      cfg,
		sink:     out,
		logger:   logger.Named("player"),
		frameLen: frameLen,
		channels: make(map[string]*Channel),
	}, nil
}

// Start creates a channel and begins producing frames from seq.
func (p *Player) Start(name string, seq pattern.Sequence) (*Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopping {
		return nil, fmt.Errorf("player: shutting down")
	}
	if _, exists := p.channels[name]; exists {
		return nil, fmt.Errorf("player: channel %q already running", name)
	}

	ch := newChannel(name, seq, p.cfg.SampleRate, p.cfg.RingSec, p.logger)
	if s, ok := seq.(pattern.OverriderSetter); ok {
		s.SetOverrider(ch)
	}
	p.channels[name] = ch
	metrics.ActiveChannels.Inc()

	p.wg.Add(1)
	go p.run(ch)

	p.logger.Info("channel started", zap.String("channel", name))
	return ch, nil
}

// Channel looks up a running channel by name.
func (p *Player) Channel(name string) (*Channel, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ch, ok := p.channels[name]
	return ch, ok
}

// Stop halts a channel after its in-flight frame completes. The
// returned Done channel closes once the loop has exited.
func (p *Player) Stop(name string) (<-chan struct{}, error) {
	ch, ok := p.Channel(name)
	if !ok {
		return nil, fmt.Errorf("player: channel %q not found", name)
	}
	ch.Stop()
	return ch.Done(), nil
}

// Route hands a fresh classification to every channel's sequence.
// Registered as a classifier listener, so it runs on the ingest path
// and must stay cheap.
func (p *Player) Route(snap excitement.Snapshot) {
	p.mu.RLock()
	channels := make([]*Channel, 0, len(p.channels))
	for _, ch := range p.channels {
		channels = append(channels, ch)
	}
	p.mu.RUnlock()
	for _, ch := range channels {
		ch.React(snap)
	}
}

// ChannelStatus is one channel's entry in the status report.
type ChannelStatus struct {
	Name  string `json:"name"`
	State State  `json:"state"`
}

// Status reports all running channels.
func (p *Player) Status() []ChannelStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]ChannelStatus, 0, len(p.channels))
	for _, ch := range p.channels {
		out = append(out, ChannelStatus{Name: ch.Name(), State: ch.State()})
	}
	return out
}

// Shutdown stops every channel and waits for their loops to drain,
// bounded by ctx. The sink is closed last so in-flight frames land.
func (p *Player) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.stopping = true
	channels := make([]*Channel, 0, len(p.channels))
	for _, ch := range p.channels {
		channels = append(channels, ch)
	}
	p.mu.Unlock()

	for _, ch := range channels {
		ch.Stop()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("player: shutdown timed out: %w", ctx.Err())
	}

	if err := p.sink.Close(); err != nil {
		return fmt.Errorf("player: close sink: %w", err)
	}
	p.logger.Info("player shutdown complete")
	return nil
}

// run is one channel's frame loop.
func (p *Player) run(ch *Channel) {
	defer p.wg.Done()
	defer p.remove(ch)

	ticker := time.NewTicker(p.cfg.BufferPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ch.stop:
			ch.logger.Info("channel stopped")
			return
		case <-ticker.C:
		}

		start := time.Now()
		frame, ok := ch.frame(p.frameLen)
		metrics.BufferGenSeconds.WithLabelValues(ch.name).Observe(time.Since(start).Seconds())
		if !ok {
			metrics.ChannelsCompletedTotal.Inc()
			ch.logger.Info("sequence complete")
			return
		}
		metrics.BuffersTotal.WithLabelValues(ch.name).Inc()

		if err := p.sink.Write(ch.name, frame); err != nil {
			metrics.SinkErrorsTotal.Inc()
			ch.fail(err)
			ch.logger.Error("output collaborator lost, stopping channel", zap.Error(err))
			return
		}
	}
}

func (p *Player) remove(ch *Channel) {
	p.mu.Lock()
	delete(p.channels, ch.name)
	p.mu.Unlock()

	ch.mu.Lock()
	ch.state = StateDone
	ch.mu.Unlock()
	close(ch.done)

	metrics.ActiveChannels.Dec()
}

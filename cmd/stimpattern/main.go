package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spanezz/stimpattern/internal/api"
	"github.com/spanezz/stimpattern/internal/config"
	"github.com/spanezz/stimpattern/internal/excitement"
	"github.com/spanezz/stimpattern/internal/ingest"
	"github.com/spanezz/stimpattern/internal/pattern"
	"github.com/spanezz/stimpattern/internal/player"
	"github.com/spanezz/stimpattern/internal/sink"
	"github.com/spanezz/stimpattern/internal/wave"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()
	logger.Info("stimpattern starting",
		zap.String("listen", cfg.ListenAddr),
		zap.String("input", cfg.Input),
		zap.String("output", cfg.Output),
		zap.Int("sampleRate", cfg.SampleRate),
		zap.Duration("bufferPeriod", cfg.BufferPeriod),
	)

	out, err := buildSink(cfg)
	if err != nil {
		logger.Fatal("failed to open output", zap.Error(err))
	}

	cell := &excitement.Cell{}
	classifier, err := excitement.New(excitement.Config{
		Spans:          cfg.WindowSpans,
		SlopeThreshold: cfg.SlopeThreshold,
		RMSSDThreshold: cfg.RMSSDThreshold,
	}, cell, logger)
	if err != nil {
		logger.Fatal("failed to create classifier", zap.Error(err))
	}

	p, err := player.New(player.Config{
		SampleRate:   cfg.SampleRate,
		BufferPeriod: cfg.BufferPeriod,
		RingSec:      cfg.WavRingSec,
	}, out, logger)
	if err != nil {
		logger.Fatal("failed to create player", zap.Error(err))
	}
	classifier.Register(p.Route)

	source := buildSource(cfg, classifier.Process, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	requestShutdown := func() {
		select {
		case quit <- syscall.SIGTERM:
		default:
		}
	}

	sequences := map[string]api.SequenceFactory{
		"heartsync": func() pattern.Sequence {
			return pattern.NewHeartSync(cell, nil, nil)
		},
		"steady": func() pattern.Sequence {
			return pattern.Repeat{Make: func() pattern.Pattern {
				return &pattern.Wave{
					Duration: 1,
					Freq:     wave.Constant(440),
					Volume:   wave.LFO{Min: 0.3, Max: 0.8, Freq: 0.5},
				}
			}}
		},
	}

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.New(p, cell, source, sequences, requestShutdown, logger).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	go func() {
		logger.Info("control API listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("control API failed", zap.Error(err))
		}
	}()

	ingestCtx, cancelIngest := context.WithCancel(context.Background())
	if source != nil {
		go func() {
			if err := source.Start(ingestCtx); err != nil {
				logger.Error("ingest failed", zap.Error(err))
			}
		}()
	}

	<-quit

	logger.Info("shutting down")
	classifier.Stop()
	cancelIngest()
	if source != nil {
		source.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		logger.Error("player shutdown failed", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("control API shutdown failed", zap.Error(err))
	}
}

func buildSink(cfg *config.Config) (sink.Sink, error) {
	switch {
	case cfg.Output == "none":
		return sink.Discard{}, nil
	case cfg.Output == "speaker":
		return sink.NewSpeaker(cfg.SampleRate)
	case cfg.Output == "nats":
		return sink.DialNATS(cfg.NATSURL, cfg.WaveSubject)
	case strings.HasPrefix(cfg.Output, "wav:"):
		return sink.NewWAV(strings.TrimPrefix(cfg.Output, "wav:"), cfg.SampleRate), nil
	default:
		return sink.Discard{}, nil
	}
}

func buildSource(cfg *config.Config, handler ingest.Handler, logger *zap.Logger) ingest.Source {
	switch {
	case cfg.Input == "nats":
		return ingest.NewNATSSource(cfg.NATSURL, cfg.HeartSubject, handler, logger)
	case strings.HasPrefix(cfg.Input, "ws://"), strings.HasPrefix(cfg.Input, "wss://"):
		return ingest.NewWebsocketSource(cfg.Input, handler, logger)
	case strings.HasPrefix(cfg.Input, "file:"):
		return ingest.NewNDJSONSource(strings.TrimPrefix(cfg.Input, "file:"), handler, logger)
	case cfg.Input == "stdin":
		return ingest.NewNDJSONSource("-", handler, logger)
	default:
		return nil
	}
}

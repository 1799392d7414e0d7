// Package api exposes the control surface: channel lifecycle,
// override requests, status and metrics over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spanezz/stimpattern/internal/excitement"
	"github.com/spanezz/stimpattern/internal/ingest"
	"github.com/spanezz/stimpattern/internal/pattern"
	"github.com/spanezz/stimpattern/internal/player"
)

// SequenceFactory builds a fresh sequence instance per started
// channel; sequences are single-use like patterns.
type SequenceFactory func() pattern.Sequence

// Server holds dependencies for the HTTP handlers.
type Server struct {
	player    *player.Player
	cell      *excitement.Cell
	source    ingest.Source
	sequences map[string]SequenceFactory
	shutdown  func()
	logger    *zap.Logger
}

// New wires the control surface. source may be nil when samples come
// from elsewhere; shutdown triggers a graceful process drain.
func New(p *player.Player, cell *excitement.Cell, source ingest.Source,
	sequences map[string]SequenceFactory, shutdown func(), logger *zap.Logger) *Server {

	return &Server{
		player:    p,
		cell:      cell,
		source:    source,
		sequences: sequences,
		shutdown:  shutdown,
		logger:    logger.Named("api"),
	}
}

// Handler returns the routed control surface.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/shutdown", s.handleShutdown)
		r.Route("/channels/{name}", func(r chi.Router) {
			r.Post("/start", s.handleStart)
			r.Post("/stop", s.handleStop)
			r.Post("/override", s.handleOverride)
			r.Get("/waveform", s.handleWaveform)
		})
	})
	return r
}

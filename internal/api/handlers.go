package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spanezz/stimpattern/internal/ingest"
	"github.com/spanezz/stimpattern/internal/pattern"
	"github.com/spanezz/stimpattern/internal/player"
	"github.com/spanezz/stimpattern/internal/wave"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type snapshotResponse struct {
	Time        time.Time `json:"time"`
	LastRate    float64   `json:"lastRate"`
	LastSlope   float64   `json:"lastSlope"`
	Slope       string    `json:"slope"`
	Interesting bool      `json:"interesting"`
	ShortRMSSD  float64   `json:"shortRmssdMs"`
}

type statusResponse struct {
	Channels   []player.ChannelStatus `json:"channels"`
	Excitement *snapshotResponse      `json:"excitement"`
	Ingest     *ingest.Status         `json:"ingest,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Channels: s.player.Status()}
	if snap, ok := s.cell.Load(); ok {
		resp.Excitement = &snapshotResponse{
			Time:        snap.Time,
			LastRate:    snap.LastRate,
			LastSlope:   snap.LastSlope,
			Slope:       snap.Slope.String(),
			Interesting: snap.Interesting,
			ShortRMSSD:  snap.ShortRMSSD,
		}
	}
	if s.source != nil {
		st := s.source.Status()
		resp.Ingest = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

type startRequest struct {
	Sequence string `json:"sequence"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Sequence == "" {
		writeError(w, http.StatusBadRequest, "sequence required")
		return
	}
	factory, ok := s.sequences[req.Sequence]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown sequence %q", req.Sequence))
		return
	}

	if _, err := s.player.Start(name, factory()); err != nil {
		s.logger.Warn("start channel failed", zap.String("channel", name), zap.Error(err))
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"channel":  name,
		"sequence": req.Sequence,
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, err := s.player.Stop(name); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rangeSpec struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type triSpec struct {
	Min  float64 `json:"min"`
	Mode float64 `json:"mode"`
	Max  float64 `json:"max"`
}

type overrideRequest struct {
	Pattern string `json:"pattern"` // "pulses" or "chaos"

	// pulses
	Count         int     `json:"count"`
	PulseDuration float64 `json:"pulseDuration"`
	Gap           float64 `json:"gap"`
	Freq          float64 `json:"freq"`
	Volume        float64 `json:"volume"`

	// chaos
	Duration  rangeSpec `json:"duration"`
	GapRange  rangeSpec `json:"gapRange"`
	FreqRange rangeSpec `json:"freqRange"`
	VolumeTri triSpec   `json:"volumeTri"`
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ch, ok := s.player.Channel(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("channel %q not found", name))
		return
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := buildOverridePattern(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	requestID := uuid.New().String()
	ch.RequestOverride(p)
	s.logger.Info("override accepted",
		zap.String("channel", name),
		zap.String("requestId", requestID),
		zap.String("pattern", p.Describe()),
	)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"requestId": requestID,
		"channel":   name,
		"pattern":   p.Describe(),
	})
}

func buildOverridePattern(req overrideRequest) (pattern.Pattern, error) {
	switch req.Pattern {
	case "pulses":
		return pattern.NewPulseTrain(req.Count, req.PulseDuration, req.Gap,
			wave.Constant(req.Freq), wave.Constant(req.Volume))
	case "chaos":
		return pattern.NewChaosPulseTrain(req.Count,
			pattern.Range{Min: req.Duration.Min, Max: req.Duration.Max},
			pattern.Range{Min: req.GapRange.Min, Max: req.GapRange.Max},
			pattern.Range{Min: req.FreqRange.Min, Max: req.FreqRange.Max},
			pattern.Tri{Min: req.VolumeTri.Min, Mode: req.VolumeTri.Mode, Max: req.VolumeTri.Max},
			nil)
	default:
		return nil, fmt.Errorf("unknown pattern %q", req.Pattern)
	}
}

type waveformResponse struct {
	Channel    string    `json:"channel"`
	Seconds    int       `json:"seconds"`
	SampleRate int       `json:"sampleRate,omitempty"`
	Samples    []float64 `json:"samples"`
}

func (s *Server) handleWaveform(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ch, ok := s.player.Channel(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("channel %q not found", name))
		return
	}

	seconds := 1
	if v := r.URL.Query().Get("seconds"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "seconds must be a positive integer")
			return
		}
		seconds = n
	}

	samples := ch.Waveform(seconds)
	if samples == nil {
		samples = []float64{}
	}
	writeJSON(w, http.StatusOK, waveformResponse{
		Channel: name,
		Seconds: seconds,
		Samples: samples,
	})
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("shutdown requested")
	w.WriteHeader(http.StatusAccepted)
	go s.shutdown()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

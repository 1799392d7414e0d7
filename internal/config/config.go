package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string

	// Input: where rate samples come from.
	// "nats", "ws:<url>", "file:<path>" or "stdin".
	Input        string
	NATSURL      string
	HeartSubject string

	// Output: where generated frames go.
	// "wav:<path>", "speaker", "nats" or "none".
	Output      string
	WaveSubject string

	SampleRate   int
	BufferPeriod time.Duration
	WavRingSec   int

	WindowSpans    []time.Duration
	SlopeThreshold float64
	RMSSDThreshold float64
}

func Load() *Config {
	return &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":9090"),
		Input:          getEnv("INPUT", "nats"),
		NATSURL:        getEnv("NATS_URL", "nats://127.0.0.1:4222"),
		HeartSubject:   getEnv("HEART_SUBJECT", "heart.rate"),
		Output:         getEnv("OUTPUT", "none"),
		WaveSubject:    getEnv("WAVE_SUBJECT", "wave.frames"),
		SampleRate:     getEnvInt("SAMPLE_RATE", 44100),
		BufferPeriod:   getEnvDuration("BUFFER_PERIOD", 100*time.Millisecond),
		WavRingSec:     getEnvInt("WAV_RING_SEC", 30),
		WindowSpans:    getEnvDurations("WINDOW_SPANS", []time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second}),
		SlopeThreshold: getEnvFloat("SLOPE_THRESHOLD", 8),
		RMSSDThreshold: getEnvFloat("RMSSD_THRESHOLD", 70),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDurations(key string, fallback []time.Duration) []time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []time.Duration
	for _, part := range strings.Split(v, ",") {
		d, err := time.ParseDuration(strings.TrimSpace(part))
		if err != nil {
			return fallback
		}
		out = append(out, d)
	}
	return out
}

//go:build soak

package player_test

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spanezz/stimpattern/internal/excitement"
	"github.com/spanezz/stimpattern/internal/pattern"
	"github.com/spanezz/stimpattern/internal/player"
	"github.com/spanezz/stimpattern/internal/sink"
	"github.com/spanezz/stimpattern/internal/testutil"
)

const (
	soakDuration = 2 * time.Minute
	soakChannels = 4
	sampleEvery  = 500 * time.Millisecond
)

func TestSoakStability(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping soak test in short mode")
	}

	logger, _ := zap.NewDevelopment()

	cell := &excitement.Cell{}
	classifier, err := excitement.New(excitement.Config{
		Spans:          []time.Duration{10 * time.Second, 60 * time.Second},
		SlopeThreshold: 10,
		RMSSDThreshold: 80,
	}, cell, logger)
	if err != nil {
		t.Fatalf("excitement.New: %v", err)
	}

	p, err := player.New(player.Config{
		SampleRate:   8000,
		BufferPeriod: 100 * time.Millisecond,
		RingSec:      10,
	}, sink.Discard{}, logger)
	if err != nil {
		t.Fatalf("player.New: %v", err)
	}
	classifier.Register(p.Route)

	// Record baseline
	runtime.GC()
	time.Sleep(100 * time.Millisecond)
	baselineGoroutines := runtime.NumGoroutine()
	t.Logf("baseline goroutines: %d", baselineGoroutines)

	for i := 0; i < soakChannels; i++ {
		name := fmt.Sprintf("soak-%d", i)
		seq := pattern.NewHeartSync(cell, nil, rand.New(rand.NewSource(int64(i))))
		if _, err := p.Start(name, seq); err != nil {
			t.Fatalf("Start %s: %v", name, err)
		}
	}

	// Feed a wandering heart rate for the whole run
	stopFeed := make(chan struct{})
	go func() {
		rng := rand.New(rand.NewSource(99))
		rate := 70.0
		ticker := time.NewTicker(sampleEvery)
		defer ticker.Stop()
		for {
			select {
			case <-stopFeed:
				return
			case now := <-ticker.C:
				rate += rng.Float64()*10 - 5
				if rate < 50 {
					rate = 50
				}
				if rate > 160 {
					rate = 160
				}
				classifier.Process(excitement.RateSample{Time: now, Rate: rate})
			}
		}
	}()

	time.Sleep(soakDuration)
	close(stopFeed)
	classifier.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	testutil.AssertNoGoroutineLeaks(t, baselineGoroutines, 2)
}

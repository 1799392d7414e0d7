package sink

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/hajimehoshi/oto/v2"
)

// Speaker plays each channel's stream on the local audio device.
// Every channel gets its own oto player fed through a pipe; writes
// block while the device catches up, which paces the producing
// channel to real time.
type Speaker struct {
	ctx *oto.Context

	mu      sync.Mutex
	players map[string]*speakerChannel
}

type speakerChannel struct {
	w      *io.PipeWriter
	player oto.Player
}

// NewSpeaker opens the audio device for s16le mono at the given rate
// and waits until it is ready.
func NewSpeaker(sampleRate int) (*Speaker, error) {
	ctx, ready, err := oto.NewContext(sampleRate, 1, 2)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready
	return &Speaker{
		ctx:     ctx,
		players: make(map[string]*speakerChannel),
	}, nil
}

func (s *Speaker) Write(channel string, frame []float64) error {
	s.mu.Lock()
	sc, ok := s.players[channel]
	if !ok {
		r, w := io.Pipe()
		player := s.ctx.NewPlayer(r)
		player.Play()
		sc = &speakerChannel{w: w, player: player}
		s.players[channel] = sc
	}
	s.mu.Unlock()

	buf := make([]byte, 2*len(frame))
	for i, v := range frame {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(clip16(v)))
	}
	if _, err := sc.w.Write(buf); err != nil {
		return fmt.Errorf("speaker %s: %w", channel, err)
	}
	return nil
}

func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.players {
		sc.w.Close()
		sc.player.Close()
	}
	s.players = make(map[string]*speakerChannel)
	return nil
}

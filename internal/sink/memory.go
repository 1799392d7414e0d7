package sink

import "sync"

// Memory retains every frame per channel. Tests use it to assert on
// delivery order and content.
type Memory struct {
	mu     sync.Mutex
	frames map[string][][]float64
	closed bool
}

func NewMemory() *Memory {
	return &Memory{frames: make(map[string][][]float64)}
}

func (m *Memory) Write(channel string, frame []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]float64, len(frame))
	copy(cp, frame)
	m.frames[channel] = append(m.frames[channel], cp)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Frames returns the frames delivered so far for a channel.
func (m *Memory) Frames(channel string) [][]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]float64(nil), m.frames[channel]...)
}

// Samples returns the concatenated sample stream for a channel.
func (m *Memory) Samples(channel string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []float64
	for _, f := range m.frames[channel] {
		out = append(out, f...)
	}
	return out
}

func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

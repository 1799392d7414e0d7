package ringbuffer

import "sync"

// RingBuffer holds a fixed-duration circular buffer of mono waveform
// samples. It is safe for concurrent use from a single writer and
// multiple readers.
type RingBuffer struct {
	mu         sync.Mutex
	buf        []float64
	writePos   int
	capacity   int
	written    int // total samples ever written (for tracking fill level)
	sampleRate int
}

// New creates a ring buffer that holds the specified number of
// seconds of samples at the given rate.
func New(seconds, sampleRate int) *RingBuffer {
	cap := seconds * sampleRate
	return &RingBuffer{
		buf:        make([]float64, cap),
		capacity:   cap,
		sampleRate: sampleRate,
	}
}

// Write appends samples to the buffer, overwriting the oldest data
// when full.
func (rb *RingBuffer) Write(data []float64) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for len(data) > 0 {
		n := copy(rb.buf[rb.writePos:], data)
		data = data[n:]
		rb.writePos = (rb.writePos + n) % rb.capacity
		rb.written += n
	}
}

// Snapshot returns a copy of the last N seconds of samples.
// If less data has been written than requested, only the available
// data is returned.
func (rb *RingBuffer) Snapshot(seconds int) []float64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	requested := seconds * rb.sampleRate
	if requested > rb.capacity {
		requested = rb.capacity
	}

	available := rb.written
	if available > rb.capacity {
		available = rb.capacity
	}
	if requested > available {
		requested = available
	}

	if requested == 0 {
		return nil
	}

	out := make([]float64, requested)
	start := (rb.writePos - requested + rb.capacity) % rb.capacity

	if start+requested <= rb.capacity {
		copy(out, rb.buf[start:start+requested])
	} else {
		first := rb.capacity - start
		copy(out[:first], rb.buf[start:])
		copy(out[first:], rb.buf[:requested-first])
	}

	return out
}

// Available returns the number of seconds of samples currently stored.
func (rb *RingBuffer) Available() float64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	available := rb.written
	if available > rb.capacity {
		available = rb.capacity
	}
	return float64(available) / float64(rb.sampleRate)
}

// Package sink delivers generated waveform frames to output
// collaborators: a WAV file, the local speaker, a NATS subject, or
// nothing at all.
package sink

// Sink consumes fixed-length sample frames, one stream per channel
// name. Implementations must tolerate interleaved writes from
// multiple channel goroutines. A write error means the collaborator
// is gone and the writing channel must stop cleanly.
type Sink interface {
	Write(channel string, frame []float64) error
	Close() error
}

// Discard drops every frame. Used when no output collaborator is
// configured and the waveform is only observed through the API.
type Discard struct{}

func (Discard) Write(channel string, frame []float64) error { return nil }
func (Discard) Close() error                                { return nil }

// clip16 quantizes a sample to signed 16-bit with clipping.
func clip16(v float64) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

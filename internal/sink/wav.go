package sink

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// WAV writes each channel's stream to its own PCM s16le mono WAV
// file. The channel name is inserted before the extension, so path
// "out.wav" with channels "left" and "right" produces "out-left.wav"
// and "out-right.wav". Sizes in the header are patched on Close.
type WAV struct {
	path       string
	sampleRate int

	mu    sync.Mutex
	files map[string]*wavFile
}

type wavFile struct {
	f       *os.File
	written int // data bytes
}

func NewWAV(path string, sampleRate int) *WAV {
	return &WAV{
		path:       path,
		sampleRate: sampleRate,
		files:      make(map[string]*wavFile),
	}
}

func (w *WAV) Write(channel string, frame []float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	wf, ok := w.files[channel]
	if !ok {
		var err error
		wf, err = w.open(channel)
		if err != nil {
			return err
		}
		w.files[channel] = wf
	}

	buf := make([]byte, 2*len(frame))
	for i, v := range frame {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(clip16(v)))
	}
	n, err := wf.f.Write(buf)
	wf.written += n
	if err != nil {
		return fmt.Errorf("wav %s: %w", channel, err)
	}
	return nil
}

func (w *WAV) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	for channel, wf := range w.files {
		if err := w.finalize(wf); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("wav %s: %w", channel, err)
		}
	}
	w.files = make(map[string]*wavFile)
	return firstErr
}

func (w *WAV) open(channel string) (*wavFile, error) {
	ext := filepath.Ext(w.path)
	path := strings.TrimSuffix(w.path, ext) + "-" + channel + ext
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := w.writeHeader(f); err != nil {
		f.Close()
		return nil, err
	}
	return &wavFile{f: f}, nil
}

// writeHeader emits a canonical 44-byte RIFF header with zero sizes;
// finalize patches them once the data length is known.
func (w *WAV) writeHeader(f *os.File) error {
	var hdr [44]byte
	copy(hdr[0:], "RIFF")
	copy(hdr[8:], "WAVE")
	copy(hdr[12:], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:], 16)                      // fmt chunk size
	binary.LittleEndian.PutUint16(hdr[20:], 1)                       // PCM
	binary.LittleEndian.PutUint16(hdr[22:], 1)                       // mono
	binary.LittleEndian.PutUint32(hdr[24:], uint32(w.sampleRate))    // sample rate
	binary.LittleEndian.PutUint32(hdr[28:], uint32(w.sampleRate*2))  // byte rate
	binary.LittleEndian.PutUint16(hdr[32:], 2)                       // block align
	binary.LittleEndian.PutUint16(hdr[34:], 16)                      // bits per sample
	copy(hdr[36:], "data")
	_, err := f.Write(hdr[:])
	return err
}

func (w *WAV) finalize(wf *wavFile) error {
	var sz [4]byte
	binary.LittleEndian.PutUint32(sz[:], uint32(36+wf.written))
	if _, err := wf.f.WriteAt(sz[:], 4); err != nil {
		wf.f.Close()
		return err
	}
	binary.LittleEndian.PutUint32(sz[:], uint32(wf.written))
	if _, err := wf.f.WriteAt(sz[:], 40); err != nil {
		wf.f.Close()
		return err
	}
	return wf.f.Close()
}

package ringbuffer

import "testing"

const rate = 8000

func TestNewCapacity(t *testing.T) {
	rb := New(5, rate)
	if rb.capacity != 5*rate {
		t.Errorf("expected capacity %d, got %d", 5*rate, rb.capacity)
	}
}

func TestSnapshotEmpty(t *testing.T) {
	rb := New(5, rate)
	snap := rb.Snapshot(1)
	if snap != nil {
		t.Errorf("expected nil snapshot from empty buffer, got %d samples", len(snap))
	}
}

func TestWriteAndSnapshotExact(t *testing.T) {
	rb := New(1, rate)
	data := make([]float64, rate)
	for i := range data {
		data[i] = float64(i)
	}
	rb.Write(data)

	snap := rb.Snapshot(1)
	if len(snap) != rate {
		t.Fatalf("expected snapshot len %d, got %d", rate, len(snap))
	}
	for i := range snap {
		if snap[i] != data[i] {
			t.Fatalf("sample %d: expected %v, got %v", i, data[i], snap[i])
		}
	}
}

func TestSnapshotPartialFill(t *testing.T) {
	rb := New(5, rate)
	data := make([]float64, rate) // write 1 second into a 5-second buffer
	rb.Write(data)

	snap := rb.Snapshot(3) // request 3 seconds but only 1 is available
	if len(snap) != rate {
		t.Errorf("expected %d samples (1 second), got %d", rate, len(snap))
	}
}

func TestWrapAround(t *testing.T) {
	rb := New(1, rate)

	// Write 1.5 seconds of data, the first 0.5s should be overwritten
	first := make([]float64, rate/2)
	for i := range first {
		first[i] = 0.25
	}
	second := make([]float64, rate)
	for i := range second {
		second[i] = 0.75
	}

	rb.Write(first)
	rb.Write(second)

	snap := rb.Snapshot(1)
	if len(snap) != rate {
		t.Fatalf("expected %d samples, got %d", rate, len(snap))
	}

	// The last second of samples written should all be 0.75
	for i, v := range snap {
		if v != 0.75 {
			t.Errorf("sample %d: expected 0.75, got %v", i, v)
			break
		}
	}
}

func TestAvailable(t *testing.T) {
	rb := New(5, rate)
	if rb.Available() != 0 {
		t.Errorf("expected 0 available, got %f", rb.Available())
	}

	rb.Write(make([]float64, rate*2))
	if rb.Available() != 2.0 {
		t.Errorf("expected 2.0 available, got %f", rb.Available())
	}

	// Write more than capacity
	rb.Write(make([]float64, rate*10))
	if rb.Available() != 5.0 {
		t.Errorf("expected 5.0 available (capped), got %f", rb.Available())
	}
}

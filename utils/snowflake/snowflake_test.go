package snowflake

import (
	"sync"
	"testing"
)

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name        string
		workerID    int64
		expectError bool
	}{
		{name: "valid worker ID", workerID: 1, expectError: false},
		{name: "max worker ID", workerID: 1023, expectError: false},
		{name: "worker ID too large", workerID: 1024, expectError: true},
		{name: "negative worker ID", workerID: -1, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGenerator(tt.workerID)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for worker ID %d, got nil", tt.workerID)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g == nil {
				t.Fatal("expected generator, got nil")
			}
		})
	}
}

func TestNextID_Monotonic(t *testing.T) {
	g, err := NewGenerator(1)
	if err != nil {
		t.Fatal(err)
	}

	var prev int64
	for i := 0; i < 10000; i++ {
		id, err := g.NextID()
		if err != nil {
			t.Fatalf("NextID failed at iteration %d: %v", i, err)
		}
		if id <= prev {
			t.Fatalf("IDs not strictly increasing: %d after %d", id, prev)
		}
		prev = id
	}
}

func TestNextID_Components(t *testing.T) {
	g, err := NewGenerator(42)
	if err != nil {
		t.Fatal(err)
	}

	id, err := g.NextID()
	if err != nil {
		t.Fatal(err)
	}

	if got := WorkerID(id); got != 42 {
		t.Errorf("WorkerID(id) = %d, want 42", got)
	}
	if ts := Timestamp(id); ts < Epoch {
		t.Errorf("Timestamp(id) = %d, before epoch %d", ts, Epoch)
	}
	if seq := Sequence(id); seq < 0 || seq > sequenceMask {
		t.Errorf("Sequence(id) = %d out of range", seq)
	}
}

func TestNextID_ConcurrentUnique(t *testing.T) {
	g, err := NewGenerator(1)
	if err != nil {
		t.Fatal(err)
	}

	const goroutines = 8
	const perGoroutine = 2000

	var mu sync.Mutex
	seen := make(map[int64]bool, goroutines*perGoroutine)
	var wg sync.WaitGroup

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perGoroutine)
			for range perGoroutine {
				id, err := g.NextID()
				if err != nil {
					t.Errorf("NextID failed: %v", err)
					return
				}
				local = append(local, id)
			}
			mu.Lock()
			for _, id := range local {
				if seen[id] {
					t.Errorf("duplicate ID generated: %d", id)
				}
				seen[id] = true
			}
			mu.Unlock()
		}()
	}

	wg.Wait()
}

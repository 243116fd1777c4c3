package snowflake

import (
	"errors"
	"sync"
	"time"
)

const (
	// Epoch is the custom epoch (January 1, 2024 00:00:00 UTC), milliseconds.
	Epoch int64 = 1704067200000

	workerIDBits uint8 = 10
	sequenceBits uint8 = 12

	workerIDShift  = sequenceBits
	timestampShift = sequenceBits + workerIDBits

	sequenceMask int64 = -1 ^ (-1 << sequenceBits)
	workerIDMask int64 = -1 ^ (-1 << workerIDBits)
)

var (
	ErrInvalidWorkerID     = errors.New("worker ID exceeds maximum value")
	ErrClockMovedBackwards = errors.New("clock moved backwards")
)

// Generator produces unique time-ordered int64 IDs. Message rows use these
// as primary keys: IDs created later in the same millisecond sort higher,
// which is the tie-break the conversation ordering relies on.
type Generator struct {
	mu sync.Mutex

	workerID      int64
	sequence      int64
	lastTimestamp int64
}

// NewGenerator creates a generator for the given worker ID (0..1023).
func NewGenerator(workerID int64) (*Generator, error) {
	if workerID < 0 || workerID > workerIDMask {
		return nil, ErrInvalidWorkerID
	}
	return &Generator{workerID: workerID}, nil
}

// NextID generates the next unique ID.
func (g *Generator) NextID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	timestamp := currentTimestamp()

	if timestamp < g.lastTimestamp {
		return 0, ErrClockMovedBackwards
	}

	if timestamp == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & sequenceMask
		// sequence overflow, spin to the next millisecond
		if g.sequence == 0 {
			timestamp = waitNextMillis(g.lastTimestamp)
		}
	} else {
		g.sequence = 0
	}

	g.lastTimestamp = timestamp

	id := ((timestamp - Epoch) << timestampShift) |
		(g.workerID << workerIDShift) |
		g.sequence

	return id, nil
}

// Timestamp extracts the millisecond timestamp embedded in an ID.
func Timestamp(id int64) int64 {
	return (id >> timestampShift) + Epoch
}

// WorkerID extracts the worker ID embedded in an ID.
func WorkerID(id int64) int64 {
	return (id >> workerIDShift) & workerIDMask
}

// Sequence extracts the per-millisecond sequence embedded in an ID.
func Sequence(id int64) int64 {
	return id & sequenceMask
}

func currentTimestamp() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

func waitNextMillis(lastTimestamp int64) int64 {
	timestamp := currentTimestamp()
	for timestamp <= lastTimestamp {
		timestamp = currentTimestamp()
	}
	return timestamp
}

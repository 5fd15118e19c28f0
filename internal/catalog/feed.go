package catalog

import (
	"context"
	"sync"
	"time"
)

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventUpdated EventKind = "updated"
	EventRemoved EventKind = "removed"
)

// Event describes one committed catalog mutation.
type Event struct {
	Sequence  uint64    `json:"seq"`
	Timestamp time.Time `json:"ts"`
	Kind      EventKind `json:"kind"`
	Rom       Rom       `json:"rom"`
}

// Feed is a bounded, sequenced buffer of catalog events. Observers poll it with
// Fetch instead of being called back, so a slow consumer never blocks a
// mutation.
type Feed struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	buffer   []Event
	nextSeq  uint64
}

// NewFeed constructs a feed keeping at most capacity events.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 256
	}
	f := &Feed{capacity: capacity}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Publish appends an event and wakes waiting fetchers.
func (f *Feed) Publish(kind EventKind, rom Rom) {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSeq++
	evt := Event{Sequence: f.nextSeq, Timestamp: time.Now().UTC(), Kind: kind, Rom: rom}
	if len(f.buffer) == f.capacity {
		copy(f.buffer, f.buffer[1:])
		f.buffer = f.buffer[:f.capacity-1]
	}
	f.buffer = append(f.buffer, evt)
	f.cond.Broadcast()
}

// Fetch returns up to limit events with a sequence greater than since, plus the
// latest sequence number. When wait is true Fetch blocks until at least one
// event is available or ctx ends.
func (f *Feed) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]Event, uint64, error) {
	if f == nil {
		return nil, since, nil
	}
	if limit <= 0 || limit > f.capacity {
		limit = f.capacity
	}

	stop := make(chan struct{})
	defer close(stop)
	if wait && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				f.mu.Lock()
				f.cond.Broadcast()
				f.mu.Unlock()
			case <-stop:
			}
		}()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		events, next := f.snapshotLocked(since, limit)
		if len(events) > 0 || !wait {
			return events, next, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, next, err
		}
		f.cond.Wait()
	}
}

// Tail returns the most recent limit events without blocking.
func (f *Feed) Tail(limit int) ([]Event, uint64) {
	if f == nil {
		return nil, 0
	}
	if limit <= 0 || limit > f.capacity {
		limit = f.capacity
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	start := max(len(f.buffer)-limit, 0)
	return append([]Event(nil), f.buffer[start:]...), f.nextSeq
}

// Sequence reports the sequence number of the latest published event.
func (f *Feed) Sequence() uint64 {
	if f == nil {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextSeq
}

func (f *Feed) snapshotLocked(since uint64, limit int) ([]Event, uint64) {
	for i, evt := range f.buffer {
		if evt.Sequence > since {
			end := min(i+limit, len(f.buffer))
			return append([]Event(nil), f.buffer[i:end]...), f.nextSeq
		}
	}
	return nil, f.nextSeq
}

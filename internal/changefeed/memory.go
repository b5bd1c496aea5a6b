package changefeed

import (
	"context"
	"sync"
)

const subscriptionBuffer = 64

// MemoryFeed is an in-process broker for single-node deployments and tests.
type MemoryFeed struct {
	mu   sync.RWMutex
	subs map[string]map[*memorySubscription]bool
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{
		subs: make(map[string]map[*memorySubscription]bool),
	}
}

func (f *MemoryFeed) Publish(ctx context.Context, branchID string, event Event) error {
	f.mu.RLock()
	targets := make([]*memorySubscription, 0, len(f.subs[branchID]))
	for sub := range f.subs[branchID] {
		targets = append(targets, sub)
	}
	f.mu.RUnlock()

	for _, sub := range targets {
		sub.deliver(event)
	}

	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context, branchID string) (Subscription, error) {
	sub := &memorySubscription{
		feed:     f,
		branchID: branchID,
		events:   make(chan Event, subscriptionBuffer),
		done:     make(chan struct{}),
	}

	f.mu.Lock()
	if f.subs[branchID] == nil {
		f.subs[branchID] = make(map[*memorySubscription]bool)
	}
	f.subs[branchID][sub] = true
	f.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			sub.Close()
		}()
	}

	return sub, nil
}

func (f *MemoryFeed) remove(sub *memorySubscription) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if subs, exists := f.subs[sub.branchID]; exists {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(f.subs, sub.branchID)
		}
	}
}

type memorySubscription struct {
	feed     *MemoryFeed
	branchID string
	events   chan Event
	done     chan struct{}

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// deliver blocks when the subscriber's buffer is full, but never holds the
// lock across the send: Close unblocks any stalled deliver via done.
func (s *memorySubscription) deliver(event Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	select {
	case s.events <- event:
	case <-s.done:
	}
}

func (s *memorySubscription) Events() <-chan Event { return s.events }

// Err is always nil for the in-process feed; the stream only ends via Close.
func (s *memorySubscription) Err() error { return nil }

func (s *memorySubscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	// Wait out pending delivers so closing events cannot race a send.
	s.inflight.Wait()
	close(s.events)

	s.feed.remove(s)
	return nil
}

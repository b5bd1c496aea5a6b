package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/changefeed"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
)

type scriptedFeed struct {
	mu            sync.Mutex
	subscribeErrs int // fail this many Subscribe calls first
	calls         int
	current       *scriptedSubscription
}

func (f *scriptedFeed) Publish(ctx context.Context, branchID string, event changefeed.Event) error {
	f.mu.Lock()
	sub := f.current
	f.mu.Unlock()

	if sub != nil {
		sub.events <- event
	}
	return nil
}

func (f *scriptedFeed) Subscribe(ctx context.Context, branchID string) (changefeed.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	if f.subscribeErrs > 0 {
		f.subscribeErrs--
		return nil, errors.New("broker unavailable")
	}

	sub := &scriptedSubscription{events: make(chan changefeed.Event, 8)}
	f.current = sub

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

func (f *scriptedFeed) subscribeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *scriptedFeed) drop(err error) {
	f.mu.Lock()
	sub := f.current
	f.current = nil
	f.mu.Unlock()

	if sub != nil {
		sub.err = err
		sub.Close()
	}
}

type scriptedSubscription struct {
	events chan changefeed.Event
	err    error
	once   sync.Once
}

func (s *scriptedSubscription) Events() <-chan changefeed.Event { return s.events }
func (s *scriptedSubscription) Err() error { return s.err }
func (s *scriptedSubscription) Close() error {
	s.once.Do(func() { close(s.events) })
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []changefeed.Event
}

func (r *recordingSink) HandleEvent(event changefeed.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for _, event := range r.events {
		ids = append(ids, event.Notification.ID)
	}
	return ids
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition never met")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func newTestManager(feed changefeed.Feed, sink EventSink) *ChannelManager {
	m := NewChannelManager(feed, "admin-1", "branch-1", sink)
	m.ResubscribeAfter = 10 * time.Millisecond
	m.RetrySetupAfter = 20 * time.Millisecond
	return m
}

func TestManagerDeliversEventsInOrder(t *testing.T) {
	feed := &scriptedFeed{}
	sink := &recordingSink{}

	manager := newTestManager(feed, sink)
	manager.Start()
	defer manager.Close()

	waitFor(t, time.Second, manager.IsConnected)

	for _, id := range []string{"n1", "n2", "n3"} {
		feed.Publish(context.Background(), "branch-1", changefeed.Event{
			Type:         changefeed.EventInsert,
			Notification: models.Notification{BaseModel: models.BaseModel{ID: id}},
		})
	}

	waitFor(t, time.Second, func() bool { return len(sink.ids()) == 3 })

	ids := sink.ids()
	for i, want := range []string{"n1", "n2", "n3"} {
		if ids[i] != want {
			t.Fatalf("delivery order = %v, want [n1 n2 n3]", ids)
		}
	}
}

func TestManagerResubscribesAfterDrop(t *testing.T) {
	feed := &scriptedFeed{}
	sink := &recordingSink{}

	manager := newTestManager(feed, sink)
	manager.Start()
	defer manager.Close()

	waitFor(t, time.Second, manager.IsConnected)

	if feed.subscribeCalls() != 1 {
		t.Fatalf("subscribe calls = %d, want 1", feed.subscribeCalls())
	}

	feed.drop(nil) // clean close

	waitFor(t, time.Second, func() bool { return feed.subscribeCalls() == 2 && manager.IsConnected() })

	// Events flow again on the new subscription.
	feed.Publish(context.Background(), "branch-1", changefeed.Event{
		Type:         changefeed.EventInsert,
		Notification: models.Notification{BaseModel: models.BaseModel{ID: "after-reconnect"}},
	})

	waitFor(t, time.Second, func() bool { return len(sink.ids()) == 1 })
}

func TestManagerRetriesSetupFailuresIndefinitely(t *testing.T) {
	feed := &scriptedFeed{subscribeErrs: 3}
	sink := &recordingSink{}

	manager := newTestManager(feed, sink)
	manager.Start()
	defer manager.Close()

	waitFor(t, 2*time.Second, manager.IsConnected)

	if calls := feed.subscribeCalls(); calls != 4 {
		t.Errorf("subscribe calls = %d, want 4 (3 failures then success)", calls)
	}
}

func TestManagerReportsErrorStateOnDrop(t *testing.T) {
	feed := &scriptedFeed{}
	sink := &recordingSink{}

	manager := newTestManager(feed, sink)
	manager.ResubscribeAfter = 200 * time.Millisecond
	manager.Start()
	defer manager.Close()

	waitFor(t, time.Second, manager.IsConnected)

	feed.drop(errors.New("connection reset"))

	waitFor(t, time.Second, func() bool { return manager.State() == StateError })

	if manager.IsConnected() {
		t.Error("IsConnected must be false while backing off")
	}
}

func TestCloseCancelsPendingRetryTimer(t *testing.T) {
	feed := &scriptedFeed{}
	sink := &recordingSink{}

	manager := newTestManager(feed, sink)
	manager.ResubscribeAfter = time.Hour // a pending timer that must not fire
	manager.Start()

	waitFor(t, time.Second, manager.IsConnected)

	feed.drop(nil)

	waitFor(t, time.Second, func() bool { return !manager.IsConnected() })

	done := make(chan struct{})
	go func() {
		manager.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return while a retry timer was pending")
	}

	if manager.State() != StateClosed {
		t.Errorf("state after Close = %s, want CLOSED", manager.State())
	}

	if feed.subscribeCalls() != 1 {
		t.Errorf("subscribe calls = %d after Close, want 1 (no orphaned retry)", feed.subscribeCalls())
	}
}

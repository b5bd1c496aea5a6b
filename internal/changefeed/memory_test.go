package changefeed

import (
	"context"
	"testing"
	"time"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
)

func event(id string) Event {
	return Event{
		Type:         EventInsert,
		Notification: models.Notification{BaseModel: models.BaseModel{ID: id}, BranchID: "branch-1"},
	}
}

func TestMemoryFeedDeliversInPublishOrder(t *testing.T) {
	feed := NewMemoryFeed()
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, "branch-1")

	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	for _, id := range []string{"a", "b", "c"} {
		if err := feed.Publish(ctx, "branch-1", event(id)); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	for _, want := range []string{"a", "b", "c"} {
		select {
		case got := <-sub.Events():
			if got.Notification.ID != want {
				t.Fatalf("got %s, want %s", got.Notification.ID, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestMemoryFeedScopesByBranch(t *testing.T) {
	feed := NewMemoryFeed()
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, "branch-2")

	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	if err := feed.Publish(ctx, "branch-1", event("other-branch")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-sub.Events():
		t.Fatalf("received cross-branch event %s", got.Notification.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryFeedCloseEndsStream(t *testing.T) {
	feed := NewMemoryFeed()

	sub, err := feed.Subscribe(context.Background(), "branch-1")

	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := sub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("expected closed events channel")
		}
	case <-time.After(time.Second):
		t.Fatal("events channel not closed")
	}

	if sub.Err() != nil {
		t.Errorf("Err after clean close = %v, want nil", sub.Err())
	}

	// Publishing after close must not panic or block.
	if err := feed.Publish(context.Background(), "branch-1", event("late")); err != nil {
		t.Fatalf("Publish after close: %v", err)
	}
}

func TestMemoryFeedCloseUnblocksStalledDelivery(t *testing.T) {
	feed := NewMemoryFeed()
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, "branch-1")

	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// Overrun the buffer against a subscriber that never reads, so the
	// publisher stalls inside deliver.
	published := make(chan struct{})
	go func() {
		for i := 0; i < subscriptionBuffer+5; i++ {
			feed.Publish(ctx, "branch-1", event("flood"))
		}
		close(published)
	}()

	time.Sleep(50 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		sub.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close blocked behind a stalled subscriber")
	}

	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("publisher still stalled after Close")
	}
}

func TestMemoryFeedContextCancelReleasesSubscription(t *testing.T) {
	feed := NewMemoryFeed()
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := feed.Subscribe(ctx, "branch-1")

	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	cancel()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("expected closed events channel after context cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("context cancel did not end the stream")
	}
}

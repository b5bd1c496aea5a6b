// Package changefeed carries Notification insert/update events from the store
// to subscribed admin sessions. Events for one branch are delivered to each
// subscriber in publish order; there is no ordering across branches.
package changefeed

import (
	"context"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
)

type Event struct {
	Type         EventType           `json:"event"`
	Notification models.Notification `json:"row"`
}

type Publisher interface {
	Publish(ctx context.Context, branchID string, event Event) error
}

// Subscription is one branch-scoped event stream. Events() closes when the
// stream ends; Err() then reports why (nil after a clean Close).
type Subscription interface {
	Events() <-chan Event
	Err() error
	Close() error
}

type Feed interface {
	Publisher
	Subscribe(ctx context.Context, branchID string) (Subscription, error)
}

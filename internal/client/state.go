// Package client holds the admin session's view of its notifications. Local
// actions apply optimistically and then persist; server change events merge
// monotonically so a stale echo can never demote a notification that the
// admin already read, acknowledged, or resolved.
package client

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/changefeed"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/types"
)

// Notification is the client-side projection of a persisted notification row.
type Notification struct {
	ID             string
	Type           string
	Severity       string
	Title          string
	Message        string
	BranchID       string
	Status         string
	IsRead         bool
	IsAcknowledged bool
	IsResolved     bool
	AcknowledgedAt *time.Time
	ResolvedAt     *time.Time
	CreatedAt      time.Time
}

func FromModel(row models.Notification) Notification {
	return Notification{
		ID:             row.ID,
		Type:           row.Type,
		Severity:       row.Severity,
		Title:          row.Title,
		Message:        row.Message,
		BranchID:       row.BranchID,
		Status:         row.Status,
		IsRead:         row.AdminIsRead,
		IsAcknowledged: row.IsAcknowledged,
		IsResolved:     row.IsResolved,
		AcknowledgedAt: row.AcknowledgedAt,
		ResolvedAt:     row.ResolvedAt,
		CreatedAt:      row.CreatedAt,
	}
}

// Persister performs the server round-trip behind each optimistic action and
// reloads the authoritative list when a round-trip fails.
type Persister interface {
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Acknowledge(ctx context.Context, id string) error
	Resolve(ctx context.Context, id string) error
	Load(ctx context.Context) ([]Notification, error)
}

// State is the admin-visible notification list plus its derived counters.
// All methods are safe for the one-event-at-a-time cooperative model: a
// mutex serializes event application against admin actions.
type State struct {
	mu            sync.Mutex
	persister     Persister
	toasts        *ToastCenter
	notifications []Notification
	now           func() time.Time
}

func NewState(persister Persister, toasts *ToastCenter) *State {
	return &State{
		persister: persister,
		toasts:    toasts,
		now:       time.Now,
	}
}

// Replace swaps in a freshly loaded list, e.g. on session start.
func (s *State) Replace(notifications []Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = append([]Notification(nil), notifications...)
}

// HandleEvent lets a State be wired directly as a delivery sink.
func (s *State) HandleEvent(event changefeed.Event) {
	s.ApplyEvent(event)
}

// ApplyEvent folds one server change event into the list. INSERT prepends
// (newest first is the delivery contract); UPDATE merges forward-only.
func (s *State) ApplyEvent(event changefeed.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	incoming := FromModel(event.Notification)

	switch event.Type {
	case changefeed.EventInsert:
		s.notifications = append([]Notification{incoming}, s.notifications...)
		s.raiseToast(incoming)
	case changefeed.EventUpdate:
		for i := range s.notifications {
			if s.notifications[i].ID == incoming.ID {
				mergeMonotonic(&s.notifications[i], incoming)
				return
			}
		}
	}
}

// mergeMonotonic ORs the lifecycle flags so a locally optimistic true is
// never regressed by a stale or partial server echo, and only moves status
// forward from active to resolved.
func mergeMonotonic(local *Notification, server Notification) {
	local.IsRead = local.IsRead || server.IsRead
	local.IsAcknowledged = local.IsAcknowledged || server.IsAcknowledged
	local.IsResolved = local.IsResolved || server.IsResolved

	if local.AcknowledgedAt == nil {
		local.AcknowledgedAt = server.AcknowledgedAt
	}
	if local.ResolvedAt == nil {
		local.ResolvedAt = server.ResolvedAt
	}
	if server.Status == types.StatusResolved {
		local.Status = types.StatusResolved
	}
}

func (s *State) raiseToast(notification Notification) {
	if s.toasts == nil {
		return
	}

	// Only high and critical interrupt; critical stays until dismissed.
	if !types.SeverityAtLeast(notification.Severity, types.SeverityHigh) {
		return
	}

	toast := Toast{
		NotificationID: notification.ID,
		Severity:       notification.Severity,
		Message:        notification.Message,
	}

	if notification.Severity == types.SeverityCritical {
		toast.Persistent = true
	} else {
		toast.AutoDismiss = HighSeverityToastDuration
	}

	s.toasts.Raise(toast)
}

// MarkAsRead applies the read flag locally, then persists. On persistence
// failure the full list is reloaded to reconcile instead of reverting the
// single flag, which avoids flicker on partial failures.
func (s *State) MarkAsRead(ctx context.Context, id string) error {
	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsRead = true
			break
		}
	}
	s.mu.Unlock()

	if err := s.persister.MarkRead(ctx, id); err != nil {
		s.reload(ctx)
		return err
	}

	return nil
}

func (s *State) MarkAllAsRead(ctx context.Context) error {
	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].IsRead = true
	}
	s.mu.Unlock()

	if err := s.persister.MarkAllRead(ctx); err != nil {
		s.reload(ctx)
		return err
	}

	return nil
}

func (s *State) Acknowledge(ctx context.Context, id string) error {
	now := s.now()

	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsAcknowledged = true
			s.notifications[i].IsRead = true
			s.notifications[i].AcknowledgedAt = &now
			break
		}
	}
	s.mu.Unlock()

	if err := s.persister.Acknowledge(ctx, id); err != nil {
		s.reload(ctx)
		return err
	}

	return nil
}

func (s *State) Resolve(ctx context.Context, id string) error {
	now := s.now()

	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsResolved = true
			s.notifications[i].Status = types.StatusResolved
			s.notifications[i].ResolvedAt = &now
			break
		}
	}
	s.mu.Unlock()

	if err := s.persister.Resolve(ctx, id); err != nil {
		s.reload(ctx)
		return err
	}

	return nil
}

// ClearNotification drops the entry from the local list only; the server row
// is untouched.
func (s *State) ClearNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

func (s *State) reload(ctx context.Context) {
	fresh, err := s.persister.Load(ctx)

	if err != nil {
		log.Printf("Failed to reload notifications after persistence failure: %v", err)
		return
	}

	s.Replace(fresh)
}

// Notifications returns a copy of the current list, newest first.
func (s *State) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Notification(nil), s.notifications...)
}

// UnreadCount is a pure projection over the current list.
func (s *State) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.notifications {
		if !n.IsRead {
			count++
		}
	}

	return count
}

// CriticalCount counts critical notifications that have not been
// acknowledged, regardless of read state.
func (s *State) CriticalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.notifications {
		if n.Severity == types.SeverityCritical && !n.IsAcknowledged {
			count++
		}
	}

	return count
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/changefeed"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/rules"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationStore owns every write to the notifications table and publishes
// a change event after each committed insert or lifecycle update.
type NotificationStore struct {
	db   *gorm.DB
	feed changefeed.Publisher
}

func NewNotificationStore(db *gorm.DB, feed changefeed.Publisher) *NotificationStore {
	return &NotificationStore{db: db, feed: feed}
}

// CommitAlerts persists the surviving candidates in one transaction. The
// partial unique indexes on (type, inventory_id) and (type, batch_id) make a
// candidate that already has an active alert a conflict, which is silently
// dropped, so repeated and concurrent runs never duplicate an active alert.
// Returns only the rows that were actually inserted.
func (s *NotificationStore) CommitAlerts(ctx context.Context, branchID string, alerts []rules.GeneratedAlert) ([]models.Notification, error) {
	var committed []models.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, alert := range alerts {
			row, err := notificationFromAlert(branchID, alert)

			if err != nil {
				return err
			}

			result := tx.Clauses(dedupConflict(alert)).Create(&row)

			if result.Error != nil {
				return result.Error
			}

			if result.RowsAffected > 0 {
				committed = append(committed, row)
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("commit alerts for branch %s: %w", branchID, err)
	}

	for _, row := range committed {
		s.publish(ctx, changefeed.EventInsert, row)
	}

	return committed, nil
}

func notificationFromAlert(branchID string, alert rules.GeneratedAlert) (models.Notification, error) {
	metadata, err := json.Marshal(alert.Metadata)

	if err != nil {
		return models.Notification{}, fmt.Errorf("marshal metadata for alert %s: %w", alert.ID, err)
	}

	row := models.Notification{
		BaseModel:     models.BaseModel{ID: alert.ID},
		Type:          alert.Type,
		Severity:      alert.Severity,
		Title:         alert.Title,
		Message:       alert.Message,
		BranchID:      branchID,
		Metadata:      metadata,
		Status:        types.StatusActive,
		AutoGenerated: true,
	}

	if alert.ProductID != "" {
		row.ProductID = &alert.ProductID
	}
	if alert.InventoryID != "" {
		row.InventoryID = &alert.InventoryID
	}
	if alert.BatchID != "" {
		row.BatchID = &alert.BatchID
	}

	return row, nil
}

func dedupConflict(alert rules.GeneratedAlert) clause.OnConflict {
	if alert.BatchID != "" {
		return clause.OnConflict{
			Columns: []clause.Column{{Name: "type"}, {Name: "batch_id"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "status = 'active' AND batch_id IS NOT NULL"},
			}},
			DoNothing: true,
		}
	}

	return clause.OnConflict{
		Columns: []clause.Column{{Name: "type"}, {Name: "inventory_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "status = 'active' AND inventory_id IS NOT NULL"},
		}},
		DoNothing: true,
	}
}

// ListResult is the branch-scoped notification view, newest first.
type ListResult struct {
	Notifications []models.Notification
	UnreadCount   int64
	CriticalCount int64
}

func (s *NotificationStore) List(ctx context.Context, branchID string, limit, offset int) (ListResult, error) {
	var result ListResult

	query := s.db.WithContext(ctx).Where("branch_id = ?", branchID)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&result.Notifications).Error; err != nil {
		return ListResult{}, fmt.Errorf("list notifications for branch %s: %w", branchID, err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("branch_id = ? AND admin_is_read = ?", branchID, false).
		Count(&result.UnreadCount).Error; err != nil {
		return ListResult{}, fmt.Errorf("count unread for branch %s: %w", branchID, err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("branch_id = ? AND severity = ? AND is_acknowledged = ?", branchID, types.SeverityCritical, false).
		Count(&result.CriticalCount).Error; err != nil {
		return ListResult{}, fmt.Errorf("count critical for branch %s: %w", branchID, err)
	}

	return result, nil
}

// MarkRead flips the admin read flags. Flags only ever move forward; there is
// no un-read operation.
func (s *NotificationStore) MarkRead(ctx context.Context, branchID, id string) (models.Notification, error) {
	return s.applyUpdate(ctx, branchID, id, map[string]interface{}{
		"is_read":       true,
		"admin_is_read": true,
	})
}

// MarkAllRead flips the read flags on every unread notification in the branch
// and publishes one UPDATE event per affected row.
func (s *NotificationStore) MarkAllRead(ctx context.Context, branchID string) (int64, error) {
	var unread []models.Notification

	if err := s.db.WithContext(ctx).
		Where("branch_id = ? AND admin_is_read = ?", branchID, false).
		Find(&unread).Error; err != nil {
		return 0, fmt.Errorf("load unread for branch %s: %w", branchID, err)
	}

	var count int64

	for _, row := range unread {
		if _, err := s.MarkRead(ctx, branchID, row.ID); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func (s *NotificationStore) Acknowledge(ctx context.Context, branchID, id, adminID string) (models.Notification, error) {
	now := time.Now()

	return s.applyUpdate(ctx, branchID, id, map[string]interface{}{
		"is_acknowledged": true,
		"is_read":         true,
		"admin_is_read":   true,
		"acknowledged_at": &now,
		"acknowledged_by": &adminID,
	})
}

// Resolve closes the notification. Moving status off "active" releases the
// dedup key, so a later generation run may raise a fresh alert for the same
// inventory row or batch.
func (s *NotificationStore) Resolve(ctx context.Context, branchID, id, adminID string) (models.Notification, error) {
	now := time.Now()

	return s.applyUpdate(ctx, branchID, id, map[string]interface{}{
		"is_resolved": true,
		"status":      types.StatusResolved,
		"resolved_at": &now,
		"resolved_by": &adminID,
	})
}

func (s *NotificationStore) applyUpdate(ctx context.Context, branchID, id string, fields map[string]interface{}) (models.Notification, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND branch_id = ?", id, branchID).
		Updates(fields)

	if result.Error != nil {
		return models.Notification{}, fmt.Errorf("update notification %s: %w", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return models.Notification{}, ErrNotificationNotFound
	}

	var row models.Notification

	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return models.Notification{}, fmt.Errorf("reload notification %s: %w", id, err)
	}

	s.publish(ctx, changefeed.EventUpdate, row)

	return row, nil
}

// PurgeResolved deletes resolved notifications older than the horizon. Active
// rows are never touched regardless of age.
func (s *NotificationStore) PurgeResolved(ctx context.Context, horizon time.Duration) (int64, error) {
	cutoff := time.Now().Add(-horizon)

	result := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", types.StatusResolved, cutoff).
		Delete(&models.Notification{})

	if result.Error != nil {
		return 0, fmt.Errorf("purge resolved notifications: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (s *NotificationStore) publish(ctx context.Context, eventType changefeed.EventType, row models.Notification) {
	if s.feed == nil {
		return
	}

	event := changefeed.Event{Type: eventType, Notification: row}

	if err := s.feed.Publish(ctx, row.BranchID, event); err != nil {
		log.Printf("Failed to publish %s event for notification %s (branch %s): %v",
			eventType, row.ID, row.BranchID, err)
	}
}

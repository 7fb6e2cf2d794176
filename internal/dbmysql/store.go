package dbmysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"usernotify/internal/common"
)

type mysqlStore struct {
	db *gorm.DB
}

// NewStore returns a common.Store backed by MySQL. Notification creation
// and deletion run inside transactions so readers never observe a
// notification without its links or a partially deleted firing.
func NewStore(db *gorm.DB) common.Store {
	return &mysqlStore{db: db}
}

func (s *mysqlStore) CreateNotification(ctx context.Context, n *common.Notification, recipientIDs []int64) error {
	if len(recipientIDs) == 0 {
		return fmt.Errorf("notification requires at least one recipient")
	}

	row := Notification{
		EventID:        n.EventID,
		PackageID:      n.PackageID,
		ObjectID:       n.ObjectID,
		AuthorID:       n.AuthorID,
		AdditionalData: n.AdditionalData,
		CreatedAt:      n.CreatedAt,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}

		links := make([]RecipientLink, len(recipientIDs))
		for i, userID := range recipientIDs {
			links[i] = RecipientLink{NotificationID: row.ID, UserID: userID}
		}
		if err := tx.Create(&links).Error; err != nil {
			return fmt.Errorf("failed to create recipient links: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	n.ID = row.ID
	n.CreatedAt = row.CreatedAt
	return nil
}

func (s *mysqlStore) FindNotifications(ctx context.Context, eventIDs, objectIDs []int64, scope common.Scope) ([]common.Notification, error) {
	if len(eventIDs) == 0 || len(objectIDs) == 0 {
		return nil, nil
	}

	var rows []Notification
	query := s.db.WithContext(ctx).
		Where("event_id IN ?", eventIDs).
		Where("object_id IN ?", objectIDs)
	if len(scope) > 0 {
		query = query.Where("package_id IN ?", []int64(scope))
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find notifications: %w", err)
	}

	return toCommon(rows), nil
}

func (s *mysqlStore) DeleteNotifications(ctx context.Context, notificationIDs []int64) error {
	if len(notificationIDs) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notification_id IN ?", notificationIDs).Delete(&RecipientLink{}).Error; err != nil {
			return fmt.Errorf("failed to delete recipient links: %w", err)
		}
		if err := tx.Where("id IN ?", notificationIDs).Delete(&Notification{}).Error; err != nil {
			return fmt.Errorf("failed to delete notifications: %w", err)
		}
		return nil
	})
}

func (s *mysqlStore) FindLinks(ctx context.Context, notificationIDs []int64) ([]common.RecipientLink, error) {
	if len(notificationIDs) == 0 {
		return nil, nil
	}

	var rows []RecipientLink
	err := s.db.WithContext(ctx).
		Where("notification_id IN ?", notificationIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find recipient links: %w", err)
	}

	links := make([]common.RecipientLink, len(rows))
	for i, row := range rows {
		links[i] = common.RecipientLink{
			NotificationID:   row.NotificationID,
			UserID:           row.UserID,
			Confirmed:        row.Confirmed,
			ConfirmationTime: row.ConfirmationTime,
		}
	}
	return links, nil
}

func (s *mysqlStore) SetConfirmed(ctx context.Context, notificationID, userID int64, at time.Time) error {
	// Zero rows affected means the link is absent or already confirmed;
	// both are a no-op so callers stay idempotent.
	result := s.db.WithContext(ctx).
		Model(&RecipientLink{}).
		Where("notification_id = ? AND user_id = ? AND confirmed = ?", notificationID, userID, false).
		Updates(map[string]interface{}{
			"confirmed":         true,
			"confirmation_time": at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to confirm notification: %w", result.Error)
	}
	return nil
}

func (s *mysqlStore) CountUnconfirmed(ctx context.Context, userID int64, scope common.Scope) (int64, error) {
	var count int64
	query := s.db.WithContext(ctx).
		Model(&RecipientLink{}).
		Joins("JOIN notifications ON notifications.id = notification_recipient_links.notification_id").
		Where("notification_recipient_links.user_id = ? AND notification_recipient_links.confirmed = ?", userID, false)
	if len(scope) > 0 {
		query = query.Where("notifications.package_id IN ?", []int64(scope))
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unconfirmed notifications: %w", err)
	}
	return count, nil
}

func (s *mysqlStore) ListUnconfirmed(ctx context.Context, userID int64, scope common.Scope, limit, offset int) ([]common.Notification, error) {
	var rows []Notification
	query := s.db.WithContext(ctx).
		Model(&Notification{}).
		Joins("JOIN notification_recipient_links ON notification_recipient_links.notification_id = notifications.id").
		Where("notification_recipient_links.user_id = ? AND notification_recipient_links.confirmed = ?", userID, false).
		Order("notifications.created_at DESC, notifications.id DESC")
	if len(scope) > 0 {
		query = query.Where("notifications.package_id IN ?", []int64(scope))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list unconfirmed notifications: %w", err)
	}

	return toCommon(rows), nil
}

func (s *mysqlStore) FindNotificationID(ctx context.Context, eventID, objectID int64, authorID *int64, at *time.Time, scope common.Scope) (int64, error) {
	var row Notification
	query := s.db.WithContext(ctx).
		Where("event_id = ? AND object_id = ?", eventID, objectID)
	if len(scope) > 0 {
		query = query.Where("package_id IN ?", []int64(scope))
	}
	if authorID != nil {
		query = query.Where("author_id = ?", *authorID)
	}
	if at != nil {
		query = query.Where("created_at = ?", *at)
	}

	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find notification: %w", err)
	}
	return row.ID, nil
}

func toCommon(rows []Notification) []common.Notification {
	out := make([]common.Notification, len(rows))
	for i, row := range rows {
		out[i] = common.Notification{
			ID:             row.ID,
			EventID:        row.EventID,
			PackageID:      row.PackageID,
			ObjectID:       row.ObjectID,
			AuthorID:       row.AuthorID,
			AdditionalData: row.AdditionalData,
			CreatedAt:      row.CreatedAt,
		}
	}
	return out
}

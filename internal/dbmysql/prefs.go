package dbmysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"usernotify/internal/common"
)

type prefStore struct {
	db *gorm.DB
}

// NewPreferenceStore returns a common.PreferenceStore backed by MySQL.
func NewPreferenceStore(db *gorm.DB) common.PreferenceStore {
	return &prefStore{db: db}
}

func (s *prefStore) Subscribers(ctx context.Context, eventID int64, userIDs []int64) ([]int64, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	var subscribers []int64
	err := s.db.WithContext(ctx).
		Model(&EventSubscription{}).
		Where("event_id = ? AND user_id IN ?", eventID, userIDs).
		Order("user_id ASC").
		Pluck("user_id", &subscribers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load event subscribers: %w", err)
	}
	return subscribers, nil
}

func (s *prefStore) EnabledKinds(ctx context.Context, eventIDs, userIDs []int64) (map[int64]map[int64][]common.Kind, error) {
	if len(eventIDs) == 0 || len(userIDs) == 0 {
		return nil, nil
	}

	var rows []ChannelPref
	err := s.db.WithContext(ctx).
		Where("event_id IN ? AND user_id IN ?", eventIDs, userIDs).
		Order("user_id ASC, event_id ASC, kind ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load channel preferences: %w", err)
	}

	out := make(map[int64]map[int64][]common.Kind)
	for _, row := range rows {
		byEvent, ok := out[row.UserID]
		if !ok {
			byEvent = make(map[int64][]common.Kind)
			out[row.UserID] = byEvent
		}
		// Any row marks the pair as configured, even when every kind is
		// disabled; only enabled rows contribute kinds.
		if _, ok := byEvent[row.EventID]; !ok {
			byEvent[row.EventID] = []common.Kind{}
		}
		if row.Enabled {
			byEvent[row.EventID] = append(byEvent[row.EventID], common.Kind(row.Kind))
		}
	}
	return out, nil
}

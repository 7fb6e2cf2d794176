package dbmysql

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"usernotify/internal/common"
)

// EventDefs loads the event catalog rows in ID order. The row IDs are the
// durable event IDs the registry carries; every event-keyed table
// references them.
func EventDefs(ctx context.Context, db *gorm.DB) ([]EventDef, error) {
	var defs []EventDef
	if err := db.WithContext(ctx).Order("id ASC").Find(&defs).Error; err != nil {
		return nil, fmt.Errorf("failed to load event definitions: %w", err)
	}
	return defs, nil
}

// Kinds parses the comma separated kind list of one catalog row.
func (d EventDef) Kinds() []common.Kind {
	parts := strings.Split(d.SupportedKinds, ",")
	kinds := make([]common.Kind, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kinds = append(kinds, common.Kind(p))
		}
	}
	return kinds
}

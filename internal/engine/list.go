package engine

import (
	"context"
	"fmt"
	"log/slog"

	"usernotify/internal/common"
	"usernotify/internal/logging"
)

// ListNotifications returns a page of the user's unconfirmed notifications
// within scope, newest first, each rendered by the event's renderer. A
// notification whose renderer or object load fails is skipped and logged
// rather than failing the whole listing.
func (e *Engine) ListNotifications(ctx context.Context, userID int64, limit, offset int) (common.NotificationList, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := e.store.ListUnconfirmed(ctx, userID, e.scope, limit, offset)
	if err != nil {
		return common.NotificationList{}, fmt.Errorf("%w: failed to list notifications: %v", common.ErrStoreFailure, err)
	}
	if len(notifications) == 0 {
		return common.NotificationList{Items: []common.NotificationItem{}}, nil
	}

	// Batch-load the referenced objects per object type before rendering.
	idsByType := make(map[string][]int64)
	for _, n := range notifications {
		event, err := e.registry.EventByID(n.EventID)
		if err != nil {
			continue
		}
		idsByType[event.ObjectType] = append(idsByType[event.ObjectType], n.ObjectID)
	}

	objects := make(map[string]map[int64]common.NotificationObject, len(idsByType))
	for objectType, objectIDs := range idsByType {
		provider, err := e.registry.ObjectProvider(objectType)
		if err != nil {
			continue
		}
		loaded, err := provider.ObjectsByIDs(ctx, objectIDs)
		if err != nil {
			e.logger.WarnContext(ctx, "failed to load notification objects",
				slog.String("object_type", objectType),
				logging.Err(err))
			continue
		}
		objects[objectType] = loaded
	}

	items := make([]common.NotificationItem, 0, len(notifications))
	for _, n := range notifications {
		event, err := e.registry.EventByID(n.EventID)
		if err != nil {
			continue
		}
		renderer, err := e.registry.Renderer(event.ID)
		if err != nil {
			continue
		}
		object := objects[event.ObjectType][n.ObjectID]

		rendered, err := renderer.Render(n, object, n.AdditionalData)
		if err != nil {
			e.logger.WarnContext(ctx, "failed to render notification",
				slog.Int64("notification_id", n.ID),
				logging.Err(err))
			continue
		}

		items = append(items, common.NotificationItem{
			NotificationID: n.ID,
			EventID:        n.EventID,
			ObjectType:     event.ObjectType,
			ObjectID:       n.ObjectID,
			CreatedAt:      n.CreatedAt,
			Rendered:       rendered,
		})
	}

	return common.NotificationList{Count: len(items), Items: items}, nil
}

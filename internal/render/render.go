// Package render provides the data-driven default renderer used when an
// event has no richer renderer of its own: the firing payload carries the
// user-visible text, so rendering only shapes it.
package render

import (
	"context"
	"fmt"

	"usernotify/internal/common"
)

// DataRenderer renders from the additional-data payload: "title" becomes
// the short label, "message" the body, "actions" the action list.
type DataRenderer struct{}

func (DataRenderer) Render(n common.Notification, _ common.NotificationObject, data common.AdditionalData) (common.Rendered, error) {
	out := common.Rendered{}
	if title, ok := data["title"].(string); ok {
		out.ShortLabel = title
	}
	if message, ok := data["message"].(string); ok {
		out.Body = message
	}
	if out.ShortLabel == "" {
		return common.Rendered{}, fmt.Errorf("notification %d has no title in its payload", n.ID)
	}

	if raw, ok := data["actions"].([]any); ok {
		for _, entry := range raw {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			action := common.Action{}
			action.Label, _ = m["label"].(string)
			action.URL, _ = m["url"].(string)
			action.Style, _ = m["style"].(string)
			if action.Label != "" {
				out.Actions = append(out.Actions, action)
			}
		}
	}

	return out, nil
}

// Ref is a notification object known only by its identity. The standalone
// service does not own the domain entities notifications are about; callers
// identify them by ID and ship display data in the firing payload.
type Ref struct {
	ID     int64
	Author int64
}

func (r Ref) ObjectID() int64 { return r.ID }
func (r Ref) AuthorID() int64 { return r.Author }

// RefProvider materializes Refs for the requested IDs.
type RefProvider struct{}

func (RefProvider) ObjectsByIDs(_ context.Context, objectIDs []int64) (map[int64]common.NotificationObject, error) {
	out := make(map[int64]common.NotificationObject, len(objectIDs))
	for _, id := range objectIDs {
		out[id] = Ref{ID: id}
	}
	return out, nil
}

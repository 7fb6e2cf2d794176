package common

import (
	"context"
	"time"
)

// NotificationObject is any domain entity a notification is about. It is
// supplied by the caller at fire time; the engine only needs its identity
// and the identity of the user who triggered it.
type NotificationObject interface {
	ObjectID() int64
	AuthorID() int64
}

// ObjectProvider loads notification objects of one object type by ID.
// Registered per object type; used when rendering notification listings.
type ObjectProvider interface {
	ObjectsByIDs(ctx context.Context, objectIDs []int64) (map[int64]NotificationObject, error)
}

// Renderer produces the user-visible output for one event's notifications.
// Bound to the event at registry build time, not resolved per call.
type Renderer interface {
	Render(notification Notification, object NotificationObject, data AdditionalData) (Rendered, error)
}

// Channel is a pluggable delivery sink (email, push, in-app). Send and
// Revoke failures are isolated per (recipient, channel) by the engine; a
// failing channel never fails the overall fire or revoke operation.
type Channel interface {
	Kind() Kind
	Supports(event Event) bool
	Send(ctx context.Context, notification Notification, recipient Recipient, event Event) error
	Revoke(ctx context.Context, notification Notification, recipient Recipient, event Event) error
}

// Store is the durable record of notifications and recipient links. The
// engine relies on CreateNotification and DeleteNotifications being atomic:
// a concurrent reader never observes a notification without its links or a
// partially deleted firing.
type Store interface {
	// CreateNotification persists the notification together with one
	// recipient link per user ID, all or nothing, and assigns the ID.
	CreateNotification(ctx context.Context, n *Notification, recipientIDs []int64) error

	// FindNotifications returns notifications matching any of the event IDs
	// and any of the object IDs, restricted to the scope.
	FindNotifications(ctx context.Context, eventIDs, objectIDs []int64, scope Scope) ([]Notification, error)

	// DeleteNotifications removes the notifications and all their links
	// atomically.
	DeleteNotifications(ctx context.Context, notificationIDs []int64) error

	// FindLinks returns all recipient links of the given notifications.
	FindLinks(ctx context.Context, notificationIDs []int64) ([]RecipientLink, error)

	// SetConfirmed marks one link confirmed at the given time. Already
	// confirmed or absent links are a no-op, not an error.
	SetConfirmed(ctx context.Context, notificationID, userID int64, at time.Time) error

	// CountUnconfirmed counts the user's unconfirmed links within scope.
	CountUnconfirmed(ctx context.Context, userID int64, scope Scope) (int64, error)

	// ListUnconfirmed returns the user's unconfirmed notifications within
	// scope, newest first.
	ListUnconfirmed(ctx context.Context, userID int64, scope Scope, limit, offset int) ([]Notification, error)

	// FindNotificationID locates a notification by event and object,
	// narrowed by author and/or creation time. Returns 0 when absent.
	FindNotificationID(ctx context.Context, eventID, objectID int64, authorID *int64, at *time.Time, scope Scope) (int64, error)
}

// PreferenceStore answers which users are subscribed to an event and which
// channel kinds they selected for it.
type PreferenceStore interface {
	// Subscribers filters the candidate user IDs down to users subscribed
	// to the event.
	Subscribers(ctx context.Context, eventID int64, userIDs []int64) ([]int64, error)

	// EnabledKinds returns the explicit channel selections per user per
	// event. A user/event pair absent from the result is unconfigured and
	// defaults to all kinds the event supports; present with an empty slice
	// means the user disabled every channel.
	EnabledKinds(ctx context.Context, eventIDs, userIDs []int64) (map[int64]map[int64][]Kind, error)
}

// Package engine orchestrates notification firing and revocation. It is
// the only component with multi-step consistency requirements: the store
// write is atomic, channel dispatch is best effort and isolated per
// (recipient, channel), and unread-count caches are invalidated only after
// the write commits.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"usernotify/internal/common"
	"usernotify/internal/countcache"
	"usernotify/internal/metrics"
	"usernotify/internal/registry"
	"usernotify/internal/resolver"
)

type Engine struct {
	registry *registry.Registry
	resolver *resolver.Resolver
	store    common.Store
	channels map[common.Kind]common.Channel
	counts   *countcache.Cache
	scope    common.Scope
	logger   *slog.Logger

	workers     int
	sendTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithWorkers bounds how many channel calls run concurrently per operation.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSendTimeout bounds each channel send/revoke call. A timed-out call is
// a delivery failure for that (recipient, channel) only.
func WithSendTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.sendTimeout = d
		}
	}
}

// WithCountCacheShards sets the shard count of the unread-count cache.
func WithCountCacheShards(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.counts = countcache.New(e.countUnread, n)
		}
	}
}

func New(
	reg *registry.Registry,
	res *resolver.Resolver,
	store common.Store,
	channels []common.Channel,
	scope common.Scope,
	opts ...Option,
) *Engine {
	e := &Engine{
		registry:    reg,
		resolver:    res,
		store:       store,
		channels:    make(map[common.Kind]common.Channel, len(channels)),
		scope:       scope,
		logger:      slog.Default(),
		workers:     5,
		sendTimeout: 10 * time.Second,
	}
	for _, ch := range channels {
		e.channels[ch.Kind()] = ch
	}
	e.counts = countcache.New(e.countUnread, 32)

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Engine) countUnread(ctx context.Context, userID int64) (int64, error) {
	count, err := e.store.CountUnconfirmed(ctx, userID, e.scope)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count unconfirmed notifications: %v", common.ErrStoreFailure, err)
	}
	return count, nil
}

// FireEvent resolves the recipients of the event among recipientIDs,
// persists one notification shared by all of them together with their
// links, dispatches every enabled and supported channel, and invalidates
// the recipients' unread counts.
//
// An empty resolved recipient set creates nothing. Channel failures are
// logged and counted, never returned: the caller still sees the
// notification recorded and counted.
func (e *Engine) FireEvent(
	ctx context.Context,
	eventName, objectType string,
	object common.NotificationObject,
	recipientIDs []int64,
	additionalData common.AdditionalData,
) error {
	event, err := e.registry.Lookup(objectType, eventName)
	if err != nil {
		return err
	}
	if object == nil {
		return fmt.Errorf("%w: notification object is required", common.ErrValidation)
	}

	recipients, err := e.resolver.Resolve(ctx, event, recipientIDs)
	if err != nil {
		return fmt.Errorf("failed to resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		e.logger.DebugContext(ctx, "no recipients resolved, skipping firing",
			slog.String("event", objectType+"."+eventName))
		return nil
	}

	userIDs := make([]int64, len(recipients))
	for i, r := range recipients {
		userIDs[i] = r.UserID
	}

	notification := common.Notification{
		EventID:        event.ID,
		PackageID:      event.PackageID,
		ObjectID:       object.ObjectID(),
		AuthorID:       object.AuthorID(),
		AdditionalData: additionalData,
		CreatedAt:      time.Now(),
	}
	if err := e.store.CreateNotification(ctx, &notification, userIDs); err != nil {
		metrics.Firings.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: failed to create notification: %v", common.ErrStoreFailure, err)
	}

	e.dispatch(ctx, func(yield func(job)) {
		for _, recipient := range recipients {
			for _, kind := range recipient.KindsFor(event.ID) {
				if ch, ok := e.channels[kind]; ok && ch.Supports(event) {
					yield(job{channel: ch, notification: notification, recipient: recipient, event: event})
				}
			}
		}
	}, e.sendOne)

	// Invalidation happens only after the write committed; a failed write
	// never touches the cache.
	e.counts.InvalidateAll(userIDs)

	metrics.Firings.WithLabelValues("ok").Inc()
	e.logger.InfoContext(ctx, "notification fired",
		slog.String("event", objectType+"."+eventName),
		slog.Int64("notification_id", notification.ID),
		slog.Int("recipients", len(recipients)))

	return nil
}

// RevokeEvent revokes a single event for a single object.
func (e *Engine) RevokeEvent(ctx context.Context, eventName, objectType string, object common.NotificationObject) error {
	return e.RevokeEvents(ctx, []string{eventName}, objectType, []common.NotificationObject{object})
}

// RevokeEvents removes every notification matching the events and objects,
// calling each affected channel's Revoke before anything is deleted, then
// deletes notifications and links atomically and invalidates the unread
// counts of every touched recipient.
func (e *Engine) RevokeEvents(
	ctx context.Context,
	eventNames []string,
	objectType string,
	objects []common.NotificationObject,
) error {
	if len(eventNames) == 0 || len(objects) == 0 {
		return fmt.Errorf("%w: event names and objects are required", common.ErrValidation)
	}

	events := make([]common.Event, 0, len(eventNames))
	eventIDs := make([]int64, 0, len(eventNames))
	eventsByID := make(map[int64]common.Event, len(eventNames))
	for _, name := range eventNames {
		event, err := e.registry.Lookup(objectType, name)
		if err != nil {
			return err
		}
		events = append(events, event)
		eventIDs = append(eventIDs, event.ID)
		eventsByID[event.ID] = event
	}

	objectIDs := make([]int64, 0, len(objects))
	for _, object := range objects {
		if object == nil {
			return fmt.Errorf("%w: nil notification object", common.ErrValidation)
		}
		objectIDs = append(objectIDs, object.ObjectID())
	}

	notifications, err := e.store.FindNotifications(ctx, eventIDs, objectIDs, e.scope)
	if err != nil {
		return fmt.Errorf("%w: failed to find notifications: %v", common.ErrStoreFailure, err)
	}
	if len(notifications) == 0 {
		return nil
	}

	notificationIDs := make([]int64, len(notifications))
	for i, n := range notifications {
		notificationIDs[i] = n.ID
	}

	links, err := e.store.FindLinks(ctx, notificationIDs)
	if err != nil {
		return fmt.Errorf("%w: failed to load recipient links: %v", common.ErrStoreFailure, err)
	}

	linkedUsers := make(map[int64][]int64, len(notifications)) // notificationID -> userIDs
	uniqueUserIDs := make([]int64, 0, len(links))
	seen := make(map[int64]bool, len(links))
	for _, link := range links {
		linkedUsers[link.NotificationID] = append(linkedUsers[link.NotificationID], link.UserID)
		if !seen[link.UserID] {
			seen[link.UserID] = true
			uniqueUserIDs = append(uniqueUserIDs, link.UserID)
		}
	}

	// Linked users keep their channel selections even after unsubscribing;
	// an artifact delivered while subscribed still has to be recalled.
	recipients, err := e.resolver.ChannelSelections(ctx, events, uniqueUserIDs)
	if err != nil {
		return fmt.Errorf("failed to resolve recipients: %w", err)
	}
	recipientsByID := make(map[int64]common.Recipient, len(recipients))
	for _, r := range recipients {
		recipientsByID[r.UserID] = r
	}

	// Every revoke call completes before the notifications are deleted, so
	// channels can still look up whatever details they need.
	e.dispatch(ctx, func(yield func(job)) {
		for _, notification := range notifications {
			event := eventsByID[notification.EventID]
			for _, userID := range linkedUsers[notification.ID] {
				recipient, ok := recipientsByID[userID]
				if !ok {
					continue
				}
				for _, kind := range recipient.KindsFor(event.ID) {
					if ch, ok := e.channels[kind]; ok && ch.Supports(event) {
						yield(job{channel: ch, notification: notification, recipient: recipient, event: event})
					}
				}
			}
		}
	}, e.revokeOne)

	if err := e.store.DeleteNotifications(ctx, notificationIDs); err != nil {
		return fmt.Errorf("%w: failed to delete notifications: %v", common.ErrStoreFailure, err)
	}

	e.counts.InvalidateAll(uniqueUserIDs)

	e.logger.InfoContext(ctx, "notifications revoked",
		slog.String("object_type", objectType),
		slog.Int("notifications", len(notificationIDs)),
		slog.Int("recipients", len(uniqueUserIDs)))

	return nil
}

// MarkAsConfirmed marks one (notification, user) link confirmed and
// invalidates the user's unread count. Confirming an already confirmed or
// absent link is a no-op so callers stay idempotent.
func (e *Engine) MarkAsConfirmed(ctx context.Context, notificationID, userID int64, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	if err := e.store.SetConfirmed(ctx, notificationID, userID, at); err != nil {
		return fmt.Errorf("%w: failed to confirm notification: %v", common.ErrStoreFailure, err)
	}
	e.counts.Invalidate(userID)
	return nil
}

// GetUnreadCount returns the user's unread notification count within the
// engine's scope, served from the count cache.
func (e *Engine) GetUnreadCount(ctx context.Context, userID int64) (int64, error) {
	return e.counts.Get(ctx, userID)
}

// GetEventID returns the registry-assigned ID for an event, or
// ErrUnknownEvent.
func (e *Engine) GetEventID(objectType, eventName string) (int64, error) {
	event, err := e.registry.Lookup(objectType, eventName)
	if err != nil {
		return 0, err
	}
	return event.ID, nil
}

// FindNotificationID locates a notification by event and object, narrowed
// by author and/or creation time; at least one of them is required.
func (e *Engine) FindNotificationID(ctx context.Context, eventID, objectID int64, authorID *int64, at *time.Time) (int64, error) {
	if authorID == nil && at == nil {
		return 0, fmt.Errorf("%w: authorID and time cannot be omitted at once", common.ErrValidation)
	}
	id, err := e.store.FindNotificationID(ctx, eventID, objectID, authorID, at, e.scope)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to find notification: %v", common.ErrStoreFailure, err)
	}
	if id == 0 {
		return 0, common.ErrNotFound
	}
	return id, nil
}

// Package memstore provides in-memory implementations of the notification
// store and preference store. Used in tests and as a development backend;
// all operations are safe for concurrent use and the create/delete paths
// are atomic under one lock, matching the store contract.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"usernotify/internal/common"
)

type prefKey struct {
	userID  int64
	eventID int64
}

type Store struct {
	mu sync.RWMutex

	nextID        int64
	notifications map[int64]common.Notification
	links         map[int64]map[int64]*common.RecipientLink // notificationID -> userID -> link

	subscriptions map[int64]map[int64]bool // eventID -> userID -> subscribed
	kinds         map[prefKey][]common.Kind

	// FailNext, when set, makes the next mutating store call fail with the
	// given error. Lets tests exercise store-failure propagation.
	FailNext error
}

func New() *Store {
	return &Store{
		nextID:        1,
		notifications: make(map[int64]common.Notification),
		links:         make(map[int64]map[int64]*common.RecipientLink),
		subscriptions: make(map[int64]map[int64]bool),
		kinds:         make(map[prefKey][]common.Kind),
	}
}

func (s *Store) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

// --- common.Store ---

func (s *Store) CreateNotification(ctx context.Context, n *common.Notification, recipientIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	if len(recipientIDs) == 0 {
		return fmt.Errorf("notification requires at least one recipient")
	}

	n.ID = s.nextID
	s.nextID++
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.notifications[n.ID] = *n

	byUser := make(map[int64]*common.RecipientLink, len(recipientIDs))
	for _, userID := range recipientIDs {
		byUser[userID] = &common.RecipientLink{NotificationID: n.ID, UserID: userID}
	}
	s.links[n.ID] = byUser
	return nil
}

func (s *Store) FindNotifications(ctx context.Context, eventIDs, objectIDs []int64, scope common.Scope) ([]common.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	eventSet := toSet(eventIDs)
	objectSet := toSet(objectIDs)

	var out []common.Notification
	for _, n := range s.notifications {
		if !eventSet[n.EventID] || !objectSet[n.ObjectID] {
			continue
		}
		if len(scope) > 0 && !scope.Contains(n.PackageID) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteNotifications(ctx context.Context, notificationIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	for _, id := range notificationIDs {
		delete(s.notifications, id)
		delete(s.links, id)
	}
	return nil
}

func (s *Store) FindLinks(ctx context.Context, notificationIDs []int64) ([]common.RecipientLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []common.RecipientLink
	for _, id := range notificationIDs {
		for _, link := range s.links[id] {
			out = append(out, *link)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NotificationID != out[j].NotificationID {
			return out[i].NotificationID < out[j].NotificationID
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (s *Store) SetConfirmed(ctx context.Context, notificationID, userID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	link, ok := s.links[notificationID][userID]
	if !ok || link.Confirmed {
		return nil
	}
	link.Confirmed = true
	link.ConfirmationTime = &at
	return nil
}

func (s *Store) CountUnconfirmed(ctx context.Context, userID int64, scope common.Scope) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for notificationID, byUser := range s.links {
		link, ok := byUser[userID]
		if !ok || link.Confirmed {
			continue
		}
		n := s.notifications[notificationID]
		if len(scope) > 0 && !scope.Contains(n.PackageID) {
			continue
		}
		count++
	}
	return count, nil
}

func (s *Store) ListUnconfirmed(ctx context.Context, userID int64, scope common.Scope, limit, offset int) ([]common.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []common.Notification
	for notificationID, byUser := range s.links {
		link, ok := byUser[userID]
		if !ok || link.Confirmed {
			continue
		}
		n := s.notifications[notificationID]
		if len(scope) > 0 && !scope.Contains(n.PackageID) {
			continue
		}
		all = append(all, n)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) FindNotificationID(ctx context.Context, eventID, objectID int64, authorID *int64, at *time.Time, scope common.Scope) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.notifications))
	for id := range s.notifications {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		n := s.notifications[id]
		if n.EventID != eventID || n.ObjectID != objectID {
			continue
		}
		if len(scope) > 0 && !scope.Contains(n.PackageID) {
			continue
		}
		if authorID != nil && n.AuthorID != *authorID {
			continue
		}
		if at != nil && !n.CreatedAt.Equal(*at) {
			continue
		}
		return n.ID, nil
	}
	return 0, nil
}

// --- common.PreferenceStore ---

func (s *Store) Subscribers(ctx context.Context, eventID int64, userIDs []int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []int64
	for _, userID := range userIDs {
		if s.subscriptions[eventID][userID] {
			out = append(out, userID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *Store) EnabledKinds(ctx context.Context, eventIDs, userIDs []int64) (map[int64]map[int64][]common.Kind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]map[int64][]common.Kind)
	for _, userID := range userIDs {
		for _, eventID := range eventIDs {
			kinds, ok := s.kinds[prefKey{userID: userID, eventID: eventID}]
			if !ok {
				continue
			}
			if out[userID] == nil {
				out[userID] = make(map[int64][]common.Kind)
			}
			out[userID][eventID] = append([]common.Kind(nil), kinds...)
		}
	}
	return out, nil
}

// --- test/dev helpers ---

// Subscribe marks users as subscribed to an event.
func (s *Store) Subscribe(eventID int64, userIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscriptions[eventID] == nil {
		s.subscriptions[eventID] = make(map[int64]bool)
	}
	for _, userID := range userIDs {
		s.subscriptions[eventID][userID] = true
	}
}

// Unsubscribe removes users' subscriptions to an event.
func (s *Store) Unsubscribe(eventID int64, userIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, userID := range userIDs {
		delete(s.subscriptions[eventID], userID)
	}
}

// SetKinds configures a user's enabled kinds for an event. An empty list
// means explicitly no channels, which is distinct from unconfigured.
func (s *Store) SetKinds(userID, eventID int64, kinds ...common.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds[prefKey{userID: userID, eventID: eventID}] = append([]common.Kind(nil), kinds...)
}

// NotificationCount reports how many notification rows exist.
func (s *Store) NotificationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notifications)
}

// LinkCount reports how many recipient links exist.
func (s *Store) LinkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, byUser := range s.links {
		count += len(byUser)
	}
	return count
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

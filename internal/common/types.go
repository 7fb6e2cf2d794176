package common

import (
	"time"
)

// Kind identifies a delivery channel kind a user can enable per event.
type Kind string

const (
	KindInApp Kind = "inApp"
	KindEmail Kind = "email"
	KindPush  Kind = "push"
)

// Scope is the set of package IDs a query is restricted to. Notifications
// carry the package ID of the event that produced them; counts and listings
// only see notifications whose package ID is in the caller's scope.
type Scope []int64

func (s Scope) Contains(packageID int64) bool {
	for _, id := range s {
		if id == packageID {
			return true
		}
	}
	return false
}

// Event is a registered (objectType, eventName) pair. The ID is the
// durable catalog ID every event-keyed row references; it stays stable
// across catalog gaps and restarts. Events are immutable after
// registration.
type Event struct {
	ID             int64
	ObjectType     string
	Name           string
	PackageID      int64
	SupportedKinds []Kind
}

func (e Event) Supports(kind Kind) bool {
	for _, k := range e.SupportedKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// AdditionalData is the free-form payload attached to a firing. The engine
// treats it as opaque; renderers and channels interpret it.
type AdditionalData map[string]any

// Notification is one row per firing, shared by every recipient of that
// firing. It is never duplicated per recipient.
type Notification struct {
	ID             int64
	EventID        int64
	PackageID      int64
	ObjectID       int64
	AuthorID       int64
	AdditionalData AdditionalData
	CreatedAt      time.Time
}

// RecipientLink joins a notification to one recipient of record. Confirmed
// transitions false to true exactly once; re-confirming is a no-op.
type RecipientLink struct {
	NotificationID   int64
	UserID           int64
	Confirmed        bool
	ConfirmationTime *time.Time
}

// Recipient is a resolved recipient of record: a user plus the channel
// kinds that user has enabled, keyed by event ID. A recipient may have zero
// enabled kinds and still receive the notification record itself.
type Recipient struct {
	UserID       int64
	KindsByEvent map[int64][]Kind
}

// KindsFor returns the enabled channel kinds for one event.
func (r Recipient) KindsFor(eventID int64) []Kind {
	return r.KindsByEvent[eventID]
}

// Action is a call-to-action attached to a rendered notification.
type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Style string `json:"style"`
}

// Rendered is the output of an event's renderer for one notification.
type Rendered struct {
	ShortLabel string   `json:"short_label"`
	Body       string   `json:"body"`
	Actions    []Action `json:"actions,omitempty"`
}

// NotificationItem is one entry of a notification listing.
type NotificationItem struct {
	NotificationID int64     `json:"notification_id"`
	EventID        int64     `json:"event_id"`
	ObjectType     string    `json:"object_type"`
	ObjectID       int64     `json:"object_id"`
	CreatedAt      time.Time `json:"created_at"`
	Rendered
}

// NotificationList is the result of a paginated listing.
type NotificationList struct {
	Count int                `json:"count"`
	Items []NotificationItem `json:"items"`
}

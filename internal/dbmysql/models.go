package dbmysql

import (
	"time"

	"usernotify/internal/common"
)

// Notification is the persisted row per firing, shared by all recipients.
type Notification struct {
	ID             int64                 `gorm:"primaryKey;autoIncrement"`
	EventID        int64                 `gorm:"not null;index:idx_notifications_event_object"`
	PackageID      int64                 `gorm:"not null;index"`
	ObjectID       int64                 `gorm:"not null;index:idx_notifications_event_object"`
	AuthorID       int64                 `gorm:"not null"`
	AdditionalData common.AdditionalData `gorm:"serializer:json"`
	CreatedAt      time.Time             `gorm:"autoCreateTime;index"`
}

// RecipientLink joins one notification to one recipient of record.
type RecipientLink struct {
	NotificationID   int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID           int64 `gorm:"primaryKey;autoIncrement:false;index"`
	Confirmed        bool  `gorm:"not null;default:false"`
	ConfirmationTime *time.Time
}

func (RecipientLink) TableName() string {
	return "notification_recipient_links"
}

// EventSubscription marks a user as subscribed to an event.
type EventSubscription struct {
	EventID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID  int64 `gorm:"primaryKey;autoIncrement:false;index"`
}

// ChannelPref is one explicit channel selection of a user for an event.
// Any row for a (user, event) pair means the user configured that event;
// only rows with Enabled are delivered to.
type ChannelPref struct {
	UserID  int64  `gorm:"primaryKey;autoIncrement:false"`
	EventID int64  `gorm:"primaryKey;autoIncrement:false"`
	Kind    string `gorm:"primaryKey;size:32"`
	Enabled bool   `gorm:"not null;default:true"`
}

// EventDef is one catalog entry; the registry is built from these rows at
// process start. RendererName is resolved against the renderers registered
// in the composition root.
type EventDef struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	ObjectType     string `gorm:"not null;size:191;uniqueIndex:idx_event_defs_type_name"`
	EventName      string `gorm:"not null;size:191;uniqueIndex:idx_event_defs_type_name"`
	PackageID      int64  `gorm:"not null;default:1"`
	SupportedKinds string `gorm:"not null;size:255"` // comma separated
	RendererName   string `gorm:"not null;size:191"`
}

// Models lists every model for migration.
func Models() []any {
	return []any{
		&Notification{},
		&RecipientLink{},
		&EventSubscription{},
		&ChannelPref{},
		&EventDef{},
	}
}

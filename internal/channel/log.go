package channel

import (
	"context"
	"log/slog"

	"usernotify/internal/common"
)

// Log is an in-app delivery stand-in that records sends and revokes in the
// structured log. The recipient link persisted by the engine is what makes
// a notification visible in-app; this channel only leaves an audit trail.
type Log struct {
	kind   common.Kind
	logger *slog.Logger
}

func NewLog(kind common.Kind, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{kind: kind, logger: logger}
}

func (l *Log) Kind() common.Kind { return l.kind }

func (l *Log) Supports(event common.Event) bool {
	return event.Supports(l.kind)
}

func (l *Log) Send(ctx context.Context, n common.Notification, r common.Recipient, event common.Event) error {
	l.logger.InfoContext(ctx, "notification delivered",
		slog.String("kind", string(l.kind)),
		slog.String("event", event.ObjectType+"."+event.Name),
		slog.Int64("notification_id", n.ID),
		slog.Int64("user_id", r.UserID))
	return nil
}

func (l *Log) Revoke(ctx context.Context, n common.Notification, r common.Recipient, event common.Event) error {
	l.logger.InfoContext(ctx, "notification revoked",
		slog.String("kind", string(l.kind)),
		slog.String("event", event.ObjectType+"."+event.Name),
		slog.Int64("notification_id", n.ID),
		slog.Int64("user_id", r.UserID))
	return nil
}

package engine

import (
	"context"
	"log/slog"
	"sync"

	"usernotify/internal/common"
	"usernotify/internal/logging"
	"usernotify/internal/metrics"
)

// job is one channel call for one recipient.
type job struct {
	channel      common.Channel
	notification common.Notification
	recipient    common.Recipient
	event        common.Event
}

// dispatch runs every yielded job through do with bounded concurrency and
// waits for all of them. Failures are handled inside do; dispatch itself
// never fails.
func (e *Engine) dispatch(ctx context.Context, jobs func(yield func(job)), do func(ctx context.Context, j job)) {
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup

	jobs(func(j job) {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			callCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
			defer cancel()
			do(callCtx, j)
		}()
	})

	wg.Wait()
}

func (e *Engine) sendOne(ctx context.Context, j job) {
	if err := j.channel.Send(ctx, j.notification, j.recipient, j.event); err != nil {
		metrics.DeliveryFailures.WithLabelValues(string(j.channel.Kind())).Inc()
		e.logger.WarnContext(ctx, "channel delivery failed",
			slog.String("kind", string(j.channel.Kind())),
			slog.Int64("notification_id", j.notification.ID),
			logging.UserID(j.recipient.UserID),
			logging.Err(err))
		return
	}
	metrics.Deliveries.WithLabelValues(string(j.channel.Kind())).Inc()
}

func (e *Engine) revokeOne(ctx context.Context, j job) {
	if err := j.channel.Revoke(ctx, j.notification, j.recipient, j.event); err != nil {
		metrics.Revocations.WithLabelValues(string(j.channel.Kind()), "error").Inc()
		e.logger.WarnContext(ctx, "channel revoke failed",
			slog.String("kind", string(j.channel.Kind())),
			slog.Int64("notification_id", j.notification.ID),
			logging.UserID(j.recipient.UserID),
			logging.Err(err))
		return
	}
	metrics.Revocations.WithLabelValues(string(j.channel.Kind()), "ok").Inc()
}

// Package resolver turns a candidate user set into the recipients of a
// notification event, annotated with the channel kinds each user enabled.
//
// A user with zero enabled channels is still a recipient of record: they
// are linked to the notification (so their unread count reflects it) even
// though no channel fires for them. Only users not subscribed to the event
// are excluded entirely.
package resolver

import (
	"context"
	"fmt"
	"sort"

	"usernotify/internal/common"
)

type Resolver struct {
	prefs common.PreferenceStore
}

func New(prefs common.PreferenceStore) *Resolver {
	return &Resolver{prefs: prefs}
}

// Resolve returns the recipients of one event among the candidates, in
// ascending user ID order. Duplicate candidates are collapsed.
func (r *Resolver) Resolve(ctx context.Context, event common.Event, candidateIDs []int64) ([]common.Recipient, error) {
	return r.ResolveForEvents(ctx, []common.Event{event}, candidateIDs)
}

// ResolveForEvents resolves recipients across several events at once; each
// recipient carries its enabled kinds per event ID. A user is included when
// subscribed to at least one of the events.
func (r *Resolver) ResolveForEvents(ctx context.Context, events []common.Event, candidateIDs []int64) ([]common.Recipient, error) {
	candidates := dedupe(candidateIDs)
	if len(candidates) == 0 || len(events) == 0 {
		return nil, nil
	}

	eventIDs := make([]int64, len(events))
	byEventID := make(map[int64]common.Event, len(events))
	for i, ev := range events {
		eventIDs[i] = ev.ID
		byEventID[ev.ID] = ev
	}

	subscribed := make(map[int64]map[int64]bool, len(candidates)) // userID -> eventID -> subscribed
	for _, ev := range events {
		userIDs, err := r.prefs.Subscribers(ctx, ev.ID, candidates)
		if err != nil {
			return nil, fmt.Errorf("failed to load subscribers for event %d: %w", ev.ID, err)
		}
		for _, userID := range userIDs {
			if subscribed[userID] == nil {
				subscribed[userID] = make(map[int64]bool, len(events))
			}
			subscribed[userID][ev.ID] = true
		}
	}

	if len(subscribed) == 0 {
		return nil, nil
	}

	userIDs := make([]int64, 0, len(subscribed))
	for userID := range subscribed {
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	selections, err := r.prefs.EnabledKinds(ctx, eventIDs, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel selections: %w", err)
	}

	recipients := make([]common.Recipient, 0, len(userIDs))
	for _, userID := range userIDs {
		recipient := common.Recipient{
			UserID:       userID,
			KindsByEvent: make(map[int64][]common.Kind),
		}
		for eventID := range subscribed[userID] {
			ev := byEventID[eventID]
			if kinds, configured := selections[userID][eventID]; configured {
				recipient.KindsByEvent[eventID] = append([]common.Kind(nil), kinds...)
			} else {
				// Unconfigured users get every kind the event supports.
				recipient.KindsByEvent[eventID] = append([]common.Kind(nil), ev.SupportedKinds...)
			}
		}
		recipients = append(recipients, recipient)
	}

	return recipients, nil
}

// ChannelSelections returns every user's enabled kinds per event without
// the subscription filter. Revocation targets users already linked to a
// notification; having unsubscribed since delivery must not leave their
// channel artifacts in place, so each linked user keeps their configured
// kinds (or the event's full kind set when unconfigured).
func (r *Resolver) ChannelSelections(ctx context.Context, events []common.Event, userIDs []int64) ([]common.Recipient, error) {
	users := dedupe(userIDs)
	if len(users) == 0 || len(events) == 0 {
		return nil, nil
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })

	eventIDs := make([]int64, len(events))
	for i, ev := range events {
		eventIDs[i] = ev.ID
	}

	selections, err := r.prefs.EnabledKinds(ctx, eventIDs, users)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel selections: %w", err)
	}

	recipients := make([]common.Recipient, 0, len(users))
	for _, userID := range users {
		recipient := common.Recipient{
			UserID:       userID,
			KindsByEvent: make(map[int64][]common.Kind, len(events)),
		}
		for _, ev := range events {
			if kinds, configured := selections[userID][ev.ID]; configured {
				recipient.KindsByEvent[ev.ID] = append([]common.Kind(nil), kinds...)
			} else {
				recipient.KindsByEvent[ev.ID] = append([]common.Kind(nil), ev.SupportedKinds...)
			}
		}
		recipients = append(recipients, recipient)
	}

	return recipients, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

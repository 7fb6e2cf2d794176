package channel

import (
	"context"
	"sync"

	"usernotify/internal/common"
)

// Call records one Send or Revoke invocation on a Memory channel.
type Call struct {
	Notification common.Notification
	Recipient    common.Recipient
	Event        common.Event
}

// Memory is an in-memory channel for tests. It records every call and can
// be armed to fail.
type Memory struct {
	kind common.Kind

	mu        sync.Mutex
	sends     []Call
	revokes   []Call
	SendErr   error
	RevokeErr error
}

func NewMemory(kind common.Kind) *Memory {
	return &Memory{kind: kind}
}

func (m *Memory) Kind() common.Kind { return m.kind }

func (m *Memory) Supports(event common.Event) bool {
	return event.Supports(m.kind)
}

func (m *Memory) Send(ctx context.Context, n common.Notification, r common.Recipient, event common.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.sends = append(m.sends, Call{Notification: n, Recipient: r, Event: event})
	return nil
}

func (m *Memory) Revoke(ctx context.Context, n common.Notification, r common.Recipient, event common.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RevokeErr != nil {
		return m.RevokeErr
	}
	m.revokes = append(m.revokes, Call{Notification: n, Recipient: r, Event: event})
	return nil
}

// Sends returns a copy of the recorded send calls.
func (m *Memory) Sends() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.sends...)
}

// Revokes returns a copy of the recorded revoke calls.
func (m *Memory) Revokes() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.revokes...)
}

// SendsTo returns how many sends were recorded for one user.
func (m *Memory) SendsTo(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.sends {
		if c.Recipient.UserID == userID {
			count++
		}
	}
	return count
}

// Package channel contains the delivery channel implementations consumed
// by the dispatch engine, plus an in-memory channel for tests.
package channel

import (
	"context"
	"fmt"
	"strconv"

	"usernotify/internal/common"
)

// EmailSender sends a single mail. Implemented over SMTP in production and
// mocked in tests.
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// AddressBook resolves a user ID to their mail address.
type AddressBook interface {
	EmailFor(ctx context.Context, userID int64) (string, error)
}

// Email delivers notifications by mail. The recipient address comes from
// the address book when one is configured, otherwise from the firing
// payload ("recipient_emails" keyed by user ID). Revoking a mailed
// notification is inherently impossible, so Revoke is a no-op.
type Email struct {
	sender    EmailSender
	addresses AddressBook
}

// NewEmail creates the mail channel; addresses may be nil when callers ship
// addresses in the firing payload instead.
func NewEmail(sender EmailSender, addresses AddressBook) *Email {
	return &Email{sender: sender, addresses: addresses}
}

func (e *Email) Kind() common.Kind { return common.KindEmail }

func (e *Email) Supports(event common.Event) bool {
	return event.Supports(common.KindEmail)
}

func (e *Email) Send(ctx context.Context, n common.Notification, r common.Recipient, event common.Event) error {
	to, err := e.address(ctx, n, r.UserID)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Notification: %s", event.Name)
	if title, ok := n.AdditionalData["title"].(string); ok && title != "" {
		subject = title
	}
	body, _ := n.AdditionalData["message"].(string)

	if err := e.sender.SendEmail(to, subject, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (e *Email) Revoke(ctx context.Context, n common.Notification, r common.Recipient, event common.Event) error {
	// A sent mail cannot be recalled.
	return nil
}

func (e *Email) address(ctx context.Context, n common.Notification, userID int64) (string, error) {
	if e.addresses != nil {
		to, err := e.addresses.EmailFor(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("failed to resolve address for user %d: %w", userID, err)
		}
		if to != "" {
			return to, nil
		}
	}
	if m, ok := n.AdditionalData["recipient_emails"].(map[string]any); ok {
		if to, ok := m[strconv.FormatInt(userID, 10)].(string); ok && to != "" {
			return to, nil
		}
	}
	return "", fmt.Errorf("no address known for user %d", userID)
}

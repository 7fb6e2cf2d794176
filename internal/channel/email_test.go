package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"usernotify/internal/common"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendEmail(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

type mockAddressBook struct {
	mock.Mock
}

func (m *mockAddressBook) EmailFor(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

var mailEvent = common.Event{
	ID:             1,
	ObjectType:     "com.example.thread",
	Name:           "reply",
	PackageID:      1,
	SupportedKinds: []common.Kind{common.KindInApp, common.KindEmail},
}

func TestEmail_SendUsesAddressBookAndPayloadTitle(t *testing.T) {
	sender := new(mockSender)
	book := new(mockAddressBook)
	book.On("EmailFor", mock.Anything, int64(5)).Return("alice@example.com", nil)
	sender.On("SendEmail", "alice@example.com", "New reply to your thread", "Bob replied.").Return(nil)

	email := NewEmail(sender, book)
	n := common.Notification{
		ID:      1,
		EventID: 1,
		AdditionalData: common.AdditionalData{
			"title":   "New reply to your thread",
			"message": "Bob replied.",
		},
	}

	err := email.Send(context.Background(), n, common.Recipient{UserID: 5}, mailEvent)

	require.NoError(t, err)
	sender.AssertExpectations(t)
	book.AssertExpectations(t)
}

func TestEmail_SendFallsBackToPayloadAddress(t *testing.T) {
	sender := new(mockSender)
	sender.On("SendEmail", "bob@example.com", "Notification: reply", "").Return(nil)

	email := NewEmail(sender, nil)
	n := common.Notification{
		ID:      1,
		EventID: 1,
		AdditionalData: common.AdditionalData{
			"recipient_emails": map[string]any{"6": "bob@example.com"},
		},
	}

	err := email.Send(context.Background(), n, common.Recipient{UserID: 6}, mailEvent)

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestEmail_SendFailsWithoutAddress(t *testing.T) {
	sender := new(mockSender)
	email := NewEmail(sender, nil)

	err := email.Send(context.Background(), common.Notification{ID: 1}, common.Recipient{UserID: 7}, mailEvent)

	assert.Error(t, err)
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmail_SendWrapsSenderError(t *testing.T) {
	sender := new(mockSender)
	boom := errors.New("smtp down")
	sender.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(boom)

	book := new(mockAddressBook)
	book.On("EmailFor", mock.Anything, int64(5)).Return("alice@example.com", nil)

	email := NewEmail(sender, book)
	err := email.Send(context.Background(), common.Notification{ID: 1}, common.Recipient{UserID: 5}, mailEvent)

	assert.ErrorIs(t, err, boom)
}

func TestEmail_RevokeIsNoOp(t *testing.T) {
	sender := new(mockSender)
	email := NewEmail(sender, nil)

	err := email.Revoke(context.Background(), common.Notification{ID: 1}, common.Recipient{UserID: 5}, mailEvent)

	assert.NoError(t, err)
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmail_SupportsFollowsEventKinds(t *testing.T) {
	email := NewEmail(new(mockSender), nil)

	assert.True(t, email.Supports(mailEvent))

	inAppOnly := mailEvent
	inAppOnly.SupportedKinds = []common.Kind{common.KindInApp}
	assert.False(t, email.Supports(inAppOnly))
}

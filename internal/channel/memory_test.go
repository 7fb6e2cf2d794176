package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usernotify/internal/common"
)

func TestMemory_RecordsSendsAndRevokes(t *testing.T) {
	m := NewMemory(common.KindInApp)
	ctx := context.Background()
	n := common.Notification{ID: 1, EventID: 1}

	require.NoError(t, m.Send(ctx, n, common.Recipient{UserID: 5}, mailEvent))
	require.NoError(t, m.Send(ctx, n, common.Recipient{UserID: 6}, mailEvent))
	require.NoError(t, m.Revoke(ctx, n, common.Recipient{UserID: 5}, mailEvent))

	assert.Len(t, m.Sends(), 2)
	assert.Len(t, m.Revokes(), 1)
	assert.Equal(t, 1, m.SendsTo(5))
	assert.Equal(t, 0, m.SendsTo(7))
}

func TestMemory_ArmedFailureRecordsNothing(t *testing.T) {
	m := NewMemory(common.KindPush)
	m.SendErr = errors.New("push gateway unavailable")

	err := m.Send(context.Background(), common.Notification{ID: 1}, common.Recipient{UserID: 5}, mailEvent)

	assert.Error(t, err)
	assert.Empty(t, m.Sends())
}

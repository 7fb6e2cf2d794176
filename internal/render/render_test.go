package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usernotify/internal/common"
)

func TestDataRenderer_TitleMessageActions(t *testing.T) {
	r := DataRenderer{}
	data := common.AdditionalData{
		"title":   "New reply",
		"message": "Bob replied to your thread.",
		"actions": []any{
			map[string]any{"label": "View thread", "url": "/threads/10", "style": "primary"},
			map[string]any{"url": "/ignored"}, // no label, dropped
		},
	}

	out, err := r.Render(common.Notification{ID: 1}, Ref{ID: 10}, data)

	require.NoError(t, err)
	assert.Equal(t, "New reply", out.ShortLabel)
	assert.Equal(t, "Bob replied to your thread.", out.Body)
	require.Len(t, out.Actions, 1)
	assert.Equal(t, common.Action{Label: "View thread", URL: "/threads/10", Style: "primary"}, out.Actions[0])
}

func TestDataRenderer_MissingTitleFails(t *testing.T) {
	r := DataRenderer{}

	_, err := r.Render(common.Notification{ID: 1}, Ref{ID: 10}, common.AdditionalData{"message": "no title"})

	assert.Error(t, err)
}

func TestRefProvider_MaterializesAllIDs(t *testing.T) {
	objects, err := RefProvider{}.ObjectsByIDs(context.Background(), []int64{10, 11})

	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, int64(10), objects[10].ObjectID())
	assert.Equal(t, int64(11), objects[11].ObjectID())
}

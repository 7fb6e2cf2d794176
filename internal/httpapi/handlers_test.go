package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"usernotify/internal/common"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) FireEvent(ctx context.Context, eventName, objectType string, object common.NotificationObject, recipientIDs []int64, data common.AdditionalData) error {
	args := m.Called(ctx, eventName, objectType, object, recipientIDs, data)
	return args.Error(0)
}

func (m *mockService) RevokeEvents(ctx context.Context, eventNames []string, objectType string, objects []common.NotificationObject) error {
	args := m.Called(ctx, eventNames, objectType, objects)
	return args.Error(0)
}

func (m *mockService) MarkAsConfirmed(ctx context.Context, notificationID, userID int64, at time.Time) error {
	args := m.Called(ctx, notificationID, userID, at)
	return args.Error(0)
}

func (m *mockService) GetUnreadCount(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockService) ListNotifications(ctx context.Context, userID int64, limit, offset int) (common.NotificationList, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).(common.NotificationList), args.Error(1)
}

var testSecret = []byte("test-secret")

func newTestRouter(service Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(NewHandler(service, logger), testSecret)
}

func authHeader(t *testing.T, userID int64) string {
	t.Helper()
	token, err := common.GenerateToken(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(t *testing.T, handler http.Handler, method, target, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestFireEvent_Accepted(t *testing.T) {
	service := new(mockService)
	service.On("FireEvent", mock.Anything, "reply", "com.example.thread",
		objectPayload{ID: 10, Author: 99}, []int64{5, 6}, mock.Anything).Return(nil)

	rec := doRequest(t, newTestRouter(service), http.MethodPost, "/api/v1/events/fire", authHeader(t, 1), map[string]any{
		"event_name":    "reply",
		"object_type":   "com.example.thread",
		"object":        map[string]any{"object_id": 10, "author_id": 99},
		"recipient_ids": []int64{5, 6},
		"data":          map[string]any{"title": "New reply"},
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	service.AssertExpectations(t)
}

func TestFireEvent_MissingFields(t *testing.T) {
	service := new(mockService)

	rec := doRequest(t, newTestRouter(service), http.MethodPost, "/api/v1/events/fire", authHeader(t, 1), map[string]any{
		"event_name": "reply",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "FireEvent",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFireEvent_UnknownEventMapsTo404(t *testing.T) {
	service := new(mockService)
	service.On("FireEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(common.ErrUnknownEvent)

	rec := doRequest(t, newTestRouter(service), http.MethodPost, "/api/v1/events/fire", authHeader(t, 1), map[string]any{
		"event_name":  "vanished",
		"object_type": "com.example.thread",
		"object":      map[string]any{"object_id": 10},
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFireEvent_StoreFailureMapsTo500(t *testing.T) {
	service := new(mockService)
	service.On("FireEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("failed to save notification: %w", common.ErrStoreFailure))

	rec := doRequest(t, newTestRouter(service), http.MethodPost, "/api/v1/events/fire", authHeader(t, 1), map[string]any{
		"event_name":  "reply",
		"object_type": "com.example.thread",
		"object":      map[string]any{"object_id": 10},
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRevokeEvents_OK(t *testing.T) {
	service := new(mockService)
	service.On("RevokeEvents", mock.Anything, []string{"reply", "like"}, "com.example.thread",
		mock.MatchedBy(func(objects []common.NotificationObject) bool {
			return len(objects) == 1 && objects[0].ObjectID() == 10
		})).Return(nil)

	rec := doRequest(t, newTestRouter(service), http.MethodPost, "/api/v1/events/revoke", authHeader(t, 1), map[string]any{
		"event_names": []string{"reply", "like"},
		"object_type": "com.example.thread",
		"objects":     []map[string]any{{"object_id": 10}},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestConfirm_UsesAuthenticatedUser(t *testing.T) {
	service := new(mockService)
	service.On("MarkAsConfirmed", mock.Anything, int64(42), int64(5), mock.Anything).Return(nil)

	rec := doRequest(t, newTestRouter(service), http.MethodPost, "/api/v1/notifications/42/confirm", authHeader(t, 5), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestUnreadCount_OK(t *testing.T) {
	service := new(mockService)
	service.On("GetUnreadCount", mock.Anything, int64(5)).Return(int64(3), nil)

	rec := doRequest(t, newTestRouter(service), http.MethodGet, "/api/v1/notifications/unread-count", authHeader(t, 5), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body["count"])
}

func TestListNotifications_PassesPagination(t *testing.T) {
	service := new(mockService)
	list := common.NotificationList{
		Count: 1,
		Items: []common.NotificationItem{{NotificationID: 1, Rendered: common.Rendered{ShortLabel: "New reply"}}},
	}
	service.On("ListNotifications", mock.Anything, int64(5), 10, 20).Return(list, nil)

	rec := doRequest(t, newTestRouter(service), http.MethodGet, "/api/v1/notifications?limit=10&offset=20", authHeader(t, 5), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got common.NotificationList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Count)
	service.AssertExpectations(t)
}

func TestAuth_MissingTokenRejected(t *testing.T) {
	service := new(mockService)

	rec := doRequest(t, newTestRouter(service), http.MethodGet, "/api/v1/notifications/unread-count", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	service.AssertNotCalled(t, "GetUnreadCount", mock.Anything, mock.Anything)
}

func TestAuth_BadTokenRejected(t *testing.T) {
	service := new(mockService)

	rec := doRequest(t, newTestRouter(service), http.MethodGet, "/api/v1/notifications/unread-count", "Bearer not-a-token", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_WrongSecretRejected(t *testing.T) {
	service := new(mockService)
	token, err := common.GenerateToken([]byte("other-secret"), 5, time.Hour)
	require.NoError(t, err)

	rec := doRequest(t, newTestRouter(service), http.MethodGet, "/api/v1/notifications/unread-count", "Bearer "+token, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestID_Echoed(t *testing.T) {
	rec := doRequest(t, newTestRouter(new(mockService)), http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

// Package httpapi is the thin request-handling wrapper that turns HTTP
// calls into engine operations. Confirm, list and count act on the
// authenticated user; fire and revoke are service-to-service calls.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"usernotify/internal/common"
	"usernotify/internal/logging"
)

// Service is the engine surface the handlers need.
type Service interface {
	FireEvent(ctx context.Context, eventName, objectType string, object common.NotificationObject, recipientIDs []int64, data common.AdditionalData) error
	RevokeEvents(ctx context.Context, eventNames []string, objectType string, objects []common.NotificationObject) error
	MarkAsConfirmed(ctx context.Context, notificationID, userID int64, at time.Time) error
	GetUnreadCount(ctx context.Context, userID int64) (int64, error)
	ListNotifications(ctx context.Context, userID int64, limit, offset int) (common.NotificationList, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// NewRouter wires the handlers, auth and observability middleware.
func NewRouter(h *Handler, jwtSecret []byte) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(MetricsMiddleware)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(jwtSecret))
	api.HandleFunc("/events/fire", h.FireEvent).Methods(http.MethodPost)
	api.HandleFunc("/events/revoke", h.RevokeEvents).Methods(http.MethodPost)
	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/unread-count", h.UnreadCount).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id:[0-9]+}/confirm", h.Confirm).Methods(http.MethodPost)

	return r
}

// objectPayload is the caller-supplied notification object.
type objectPayload struct {
	ID     int64 `json:"object_id"`
	Author int64 `json:"author_id"`
}

func (o objectPayload) ObjectID() int64 { return o.ID }
func (o objectPayload) AuthorID() int64 { return o.Author }

type fireRequest struct {
	EventName    string                `json:"event_name"`
	ObjectType   string                `json:"object_type"`
	Object       objectPayload         `json:"object"`
	RecipientIDs []int64               `json:"recipient_ids"`
	Data         common.AdditionalData `json:"data"`
}

func (h *Handler) FireEvent(w http.ResponseWriter, r *http.Request) {
	var req fireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EventName == "" || req.ObjectType == "" || req.Object.ID == 0 {
		writeError(w, http.StatusBadRequest, "event_name, object_type and object.object_id are required")
		return
	}

	err := h.service.FireEvent(r.Context(), req.EventName, req.ObjectType, req.Object, req.RecipientIDs, req.Data)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"status": "fired"})
}

type revokeRequest struct {
	EventNames []string        `json:"event_names"`
	ObjectType string          `json:"object_type"`
	Objects    []objectPayload `json:"objects"`
}

func (h *Handler) RevokeEvents(w http.ResponseWriter, r *http.Request) {
	var req revokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.EventNames) == 0 || req.ObjectType == "" || len(req.Objects) == 0 {
		writeError(w, http.StatusBadRequest, "event_names, object_type and objects are required")
		return
	}

	objects := make([]common.NotificationObject, len(req.Objects))
	for i, o := range req.Objects {
		objects[i] = o
	}

	if err := h.service.RevokeEvents(r.Context(), req.EventNames, req.ObjectType, objects); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "revoked"})
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	notificationID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.service.MarkAsConfirmed(r.Context(), notificationID, userID, time.Now()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "confirmed"})
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	count, err := h.service.GetUnreadCount(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"count": count})
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := h.service.ListNotifications(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrUnknownEvent):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			logging.Err(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/dogtuna/thoughtify/internal/api/middleware"
	"github.com/dogtuna/thoughtify/internal/domain"
	"github.com/dogtuna/thoughtify/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	initiatives   domain.InitiativeStore
	notifications domain.NotificationStore
}

func NewNotificationHandler(initiatives domain.InitiativeStore, notifications domain.NotificationStore) *NotificationHandler {
	return &NotificationHandler{initiatives: initiatives, notifications: notifications}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid initiative id")
		return
	}

	if _, err := h.initiatives.Get(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "initiative not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get initiative")
		return
	}

	notifications, err := h.notifications.ListByInitiative(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

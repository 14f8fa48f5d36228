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

type MessageHandler struct {
	initiatives domain.InitiativeStore
	messages    domain.MessageStore
}

func NewMessageHandler(initiatives domain.InitiativeStore, messages domain.MessageStore) *MessageHandler {
	return &MessageHandler{initiatives: initiatives, messages: messages}
}

func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	initiativeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid initiative id")
		return
	}

	messageID, err := uuid.Parse(chi.URLParam(r, "messageId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	if _, err := h.initiatives.Get(r.Context(), user.ID, initiativeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "initiative not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get initiative")
		return
	}

	msg, err := h.messages.GetByID(r.Context(), messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "message not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get message")
		return
	}
	if msg.InitiativeID != initiativeID {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

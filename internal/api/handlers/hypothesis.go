package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dogtuna/thoughtify/internal/api/middleware"
	"github.com/dogtuna/thoughtify/internal/domain"
	"github.com/dogtuna/thoughtify/internal/service"
	"github.com/dogtuna/thoughtify/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type HypothesisHandler struct {
	initiatives domain.InitiativeStore
	svc         *service.HypothesisService
}

func NewHypothesisHandler(initiatives domain.InitiativeStore, svc *service.HypothesisService) *HypothesisHandler {
	return &HypothesisHandler{initiatives: initiatives, svc: svc}
}

func (h *HypothesisHandler) List(w http.ResponseWriter, r *http.Request) {
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

	init, err := h.initiatives.Get(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "initiative not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get initiative")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"hypotheses":           init.Hypotheses,
		"suggested_hypotheses": init.SuggestedHypotheses,
		"recommendations":      init.Recommendations,
	})
}

type createHypothesisRequest struct {
	Statement string `json:"statement"`
}

func (h *HypothesisHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req createHypothesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hyp, err := h.svc.Create(r.Context(), user.ID, id, req.Statement)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStatementRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "initiative not found")
		case errors.Is(err, service.ErrUpdateContention):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create hypothesis")
		}
		return
	}

	writeJSON(w, http.StatusCreated, hyp)
}

func (h *HypothesisHandler) Promote(w http.ResponseWriter, r *http.Request) {
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

	suggestedID := chi.URLParam(r, "suggestedId")
	if suggestedID == "" {
		writeError(w, http.StatusBadRequest, "suggested hypothesis id is required")
		return
	}

	hyp, err := h.svc.Promote(r.Context(), user.ID, id, suggestedID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSuggestionNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrWeakerThanExisting):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "initiative not found")
		case errors.Is(err, service.ErrUpdateContention):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to promote hypothesis")
		}
		return
	}

	writeJSON(w, http.StatusCreated, hyp)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dogtuna/thoughtify/internal/api/middleware"
	"github.com/dogtuna/thoughtify/internal/domain"
	"github.com/dogtuna/thoughtify/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type InitiativeHandler struct {
	initiatives domain.InitiativeStore
	tasks       domain.TaskStore
	questions   domain.QuestionStore
}

func NewInitiativeHandler(initiatives domain.InitiativeStore, tasks domain.TaskStore, questions domain.QuestionStore) *InitiativeHandler {
	return &InitiativeHandler{initiatives: initiatives, tasks: tasks, questions: questions}
}

type createInitiativeRequest struct {
	Name               string           `json:"name"`
	BusinessGoal       string           `json:"business_goal,omitempty"`
	AudienceProfile    string           `json:"audience_profile,omitempty"`
	ProjectConstraints string           `json:"project_constraints,omitempty"`
	Contacts           []domain.Contact `json:"contacts,omitempty"`
	PriorQA            []domain.QAEntry `json:"prior_qa,omitempty"`
	SourceMaterials    []string         `json:"source_materials,omitempty"`
}

func (h *InitiativeHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createInitiativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	init := &domain.Initiative{
		UserID:             user.ID,
		Name:               req.Name,
		BusinessGoal:       req.BusinessGoal,
		AudienceProfile:    req.AudienceProfile,
		ProjectConstraints: req.ProjectConstraints,
		Contacts:           req.Contacts,
		PriorQA:            req.PriorQA,
		SourceMaterials:    req.SourceMaterials,
	}

	if err := h.initiatives.Create(r.Context(), init); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create initiative")
		return
	}

	writeJSON(w, http.StatusCreated, init)
}

func (h *InitiativeHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, init)
}

func (h *InitiativeHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
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

	tasks, err := h.tasks.ListByInitiative(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *InitiativeHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
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

	questions, err := h.questions.ListByInitiative(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list questions")
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func (h *InitiativeHandler) UnreadCounts(w http.ResponseWriter, r *http.Request) {
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

	counts, err := h.initiatives.UnreadCounts(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get unread counts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"unread": counts})
}

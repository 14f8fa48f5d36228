package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dogtuna/thoughtify/internal/api/middleware"
	"github.com/dogtuna/thoughtify/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AnswerHandler struct {
	svc *service.AnswerService
}

func NewAnswerHandler(svc *service.AnswerService) *AnswerHandler {
	return &AnswerHandler{svc: svc}
}

type processAnswerRequest struct {
	QuestionID   string `json:"question_id,omitempty"`
	MessageID    string `json:"message_id,omitempty"`
	QuestionText string `json:"question_text,omitempty"`
	AnswerText   string `json:"answer_text"`
	ExtraText    string `json:"extra_text,omitempty"`
	Respondent   string `json:"respondent,omitempty"`
	Subject      string `json:"subject,omitempty"`
}

// Process runs the answer pipeline. The response always carries the analysis
// result; enrichment failures degrade to an empty one rather than erroring.
func (h *AnswerHandler) Process(w http.ResponseWriter, r *http.Request) {
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

	var req processAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.AnswerText) == "" {
		writeError(w, http.StatusBadRequest, "answer_text is required")
		return
	}

	result := h.svc.ProcessAnswer(r.Context(), service.AnswerInput{
		UserID:       user.ID,
		InitiativeID: initiativeID,
		QuestionID:   req.QuestionID,
		MessageID:    req.MessageID,
		QuestionText: req.QuestionText,
		AnswerText:   req.AnswerText,
		ExtraText:    req.ExtraText,
		Respondent:   req.Respondent,
		Subject:      req.Subject,
	})

	writeJSON(w, http.StatusOK, result)
}

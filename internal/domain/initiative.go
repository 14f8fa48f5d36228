package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a known stakeholder on an initiative.
type Contact struct {
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

// QAEntry is one prior question/answer pair from the discovery process.
type QAEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Recommendation is a system-generated advisory attached to the initiative,
// e.g. a reconciliation meeting when high-authority evidence conflicts.
type Recommendation struct {
	Text         string    `json:"text"`
	HypothesisID string    `json:"hypothesisId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Initiative is the project document: discovery context plus the working
// hypothesis collection. The hypothesis collection is read and written as a
// whole; Version guards against lost updates.
type Initiative struct {
	ID                  uuid.UUID             `json:"id"`
	UserID              uuid.UUID             `json:"user_id"`
	Name                string                `json:"name"`
	BusinessGoal        string                `json:"business_goal"`
	AudienceProfile     string                `json:"audience_profile"`
	ProjectConstraints  string                `json:"project_constraints"`
	Contacts            []Contact             `json:"contacts"`
	PriorQA             []QAEntry             `json:"prior_qa"`
	SourceMaterials     []string              `json:"source_materials"`
	Hypotheses          []Hypothesis          `json:"hypotheses"`
	SuggestedHypotheses []SuggestedHypothesis `json:"suggested_hypotheses"`
	Recommendations     []Recommendation      `json:"recommendations"`
	Version             int64                 `json:"version"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// Task is a pending follow-up action persisted from a task-like suggestion.
type Task struct {
	ID           uuid.UUID `json:"id"`
	InitiativeID uuid.UUID `json:"initiative_id"`
	Message      string    `json:"message"`
	Category     string    `json:"category"`
	Who          string    `json:"who"`
	HypothesisID string    `json:"hypothesis_id,omitempty"`
	TaskType     string    `json:"task_type"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

const TaskStatusPending = "pending"

// Question is a suggested discovery question persisted from a question-like
// suggestion.
type Question struct {
	ID           uuid.UUID `json:"id"`
	InitiativeID uuid.UUID `json:"initiative_id"`
	Text         string    `json:"text"`
	Who          string    `json:"who"`
	HypothesisID string    `json:"hypothesis_id,omitempty"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

const QuestionSourceSuggested = "suggested"

// MessageRecord is the persisted answer message, enriched with the
// classifier's analysis and suggestions.
type MessageRecord struct {
	ID           uuid.UUID    `json:"id"`
	InitiativeID uuid.UUID    `json:"initiative_id"`
	QuestionID   string       `json:"question_id,omitempty"`
	Subject      string       `json:"subject"`
	Respondent   string       `json:"respondent"`
	QuestionText string       `json:"question_text"`
	AnswerText   string       `json:"answer_text"`
	Analysis     string       `json:"analysis"`
	Suggestions  []Suggestion `json:"suggestions"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Notification is a downstream-UI signal. Count is additive: it is only
// incremented here, never reset.
type Notification struct {
	ID           uuid.UUID `json:"id"`
	InitiativeID uuid.UUID `json:"initiative_id"`
	Type         string    `json:"type"`
	Count        int       `json:"count"`
	Href         string    `json:"href"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	NotificationAnswerReceived       = "answer-received"
	NotificationHypothesisConfidence = "hypothesis-confidence"
)

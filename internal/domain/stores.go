package domain

import (
	"context"

	"github.com/google/uuid"
)

type UserStore interface {
	Create(ctx context.Context, u *User) error
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*User, error)
}

// InitiativeStore is the document-store contract: whole-document reads, a
// versioned whole-collection write for the hypothesis state, and atomic
// counter increments.
type InitiativeStore interface {
	Create(ctx context.Context, in *Initiative) error
	Get(ctx context.Context, userID, id uuid.UUID) (*Initiative, error)
	// UpdateHypotheses writes the hypothesis state back in one update,
	// conditioned on expectedVersion. Returns false (and no error) when
	// another writer got there first.
	UpdateHypotheses(ctx context.Context, userID, id uuid.UUID, hyps []Hypothesis, suggested []SuggestedHypothesis, recs []Recommendation, expectedVersion int64) (bool, error)
	// IncrementUnread atomically adds n to the per-category unread counter.
	IncrementUnread(ctx context.Context, id uuid.UUID, category string, n int) error
	UnreadCounts(ctx context.Context, id uuid.UUID) (map[string]int, error)
}

type TaskStore interface {
	Create(ctx context.Context, t *Task) error
	ListByInitiative(ctx context.Context, initiativeID uuid.UUID) ([]Task, error)
}

type QuestionStore interface {
	Create(ctx context.Context, q *Question) error
	ListByInitiative(ctx context.Context, initiativeID uuid.UUID) ([]Question, error)
}

type MessageStore interface {
	Create(ctx context.Context, m *MessageRecord) error
	AttachAnalysis(ctx context.Context, id uuid.UUID, analysis string, suggestions []Suggestion) error
	GetByID(ctx context.Context, id uuid.UUID) (*MessageRecord, error)
}

type NotificationStore interface {
	// Upsert adds n.Count to the existing notification for
	// (initiative, type, href), creating it when absent.
	Upsert(ctx context.Context, n *Notification) error
	ListByInitiative(ctx context.Context, initiativeID uuid.UUID) ([]Notification, error)
}

// SimilarStatement is a hypothesis statement scored by embedding similarity.
type SimilarStatement struct {
	HypothesisID string
	Statement    string
	Score        float32
}

// HypothesisEmbeddingStore indexes hypothesis statements for duplicate
// detection on suggested hypotheses.
type HypothesisEmbeddingStore interface {
	Add(ctx context.Context, initiativeID uuid.UUID, hypothesisID, statement string, embedding []float32) error
	FindSimilar(ctx context.Context, initiativeID uuid.UUID, embedding []float32, threshold float32) ([]SimilarStatement, error)
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LLMClient is the classifier collaborator. Transports return raw generated
// text internally; implementations recover structure with the shared parser
// and surface it through these typed calls.
type LLMClient interface {
	AnalyzeAnswer(ctx context.Context, req AnalysisRequest) (*AnswerAnalysis, error)
	TriageEvidence(ctx context.Context, req TriageRequest) (*TriageResult, error)
}

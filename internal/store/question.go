package store

import (
	"context"

	"github.com/dogtuna/thoughtify/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuestionStore struct {
	db *pgxpool.Pool
}

func NewQuestionStore(db *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{db: db}
}

func (s *QuestionStore) Create(ctx context.Context, q *domain.Question) error {
	if q.Source == "" {
		q.Source = domain.QuestionSourceSuggested
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO questions (initiative_id, text, who, hypothesis_id, source)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		q.InitiativeID, q.Text, q.Who, q.HypothesisID, q.Source,
	).Scan(&q.ID, &q.CreatedAt)
}

func (s *QuestionStore) ListByInitiative(ctx context.Context, initiativeID uuid.UUID) ([]domain.Question, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, initiative_id, text, who, hypothesis_id, source, created_at
		 FROM questions WHERE initiative_id = $1
		 ORDER BY created_at DESC`,
		initiativeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.InitiativeID, &q.Text, &q.Who, &q.HypothesisID, &q.Source, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

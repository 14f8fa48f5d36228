package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dogtuna/thoughtify/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageStore struct {
	db *pgxpool.Pool
}

func NewMessageStore(db *pgxpool.Pool) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) Create(ctx context.Context, m *domain.MessageRecord) error {
	suggestions, err := json.Marshal(emptySlice(m.Suggestions))
	if err != nil {
		return fmt.Errorf("marshal suggestions: %w", err)
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO messages (initiative_id, question_id, subject, respondent, question_text, answer_text, analysis, suggestions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		m.InitiativeID, m.QuestionID, m.Subject, m.Respondent, m.QuestionText, m.AnswerText, m.Analysis, suggestions,
	).Scan(&m.ID, &m.CreatedAt)
}

func (s *MessageStore) AttachAnalysis(ctx context.Context, id uuid.UUID, analysis string, suggestions []domain.Suggestion) error {
	payload, err := json.Marshal(emptySlice(suggestions))
	if err != nil {
		return fmt.Errorf("marshal suggestions: %w", err)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE messages SET analysis = $1, suggestions = $2 WHERE id = $3`,
		analysis, payload, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MessageStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.MessageRecord, error) {
	m := &domain.MessageRecord{}
	var suggestions []byte
	err := s.db.QueryRow(ctx,
		`SELECT id, initiative_id, question_id, subject, respondent, question_text, answer_text, analysis, suggestions, created_at
		 FROM messages WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.InitiativeID, &m.QuestionID, &m.Subject, &m.Respondent, &m.QuestionText, &m.AnswerText, &m.Analysis, &suggestions, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(suggestions, &m.Suggestions); err != nil {
		return nil, fmt.Errorf("unmarshal suggestions: %w", err)
	}
	return m, nil
}

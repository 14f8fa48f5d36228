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

// InitiativeStore keeps the initiative as a document row: scalar context
// columns plus JSONB for the nested collections. The hypothesis state
// (hypotheses, suggestions, recommendations) is written back as a whole
// under a version check.
type InitiativeStore struct {
	db *pgxpool.Pool
}

func NewInitiativeStore(db *pgxpool.Pool) *InitiativeStore {
	return &InitiativeStore{db: db}
}

func (s *InitiativeStore) Create(ctx context.Context, in *domain.Initiative) error {
	contacts, err := json.Marshal(emptySlice(in.Contacts))
	if err != nil {
		return fmt.Errorf("marshal contacts: %w", err)
	}
	priorQA, err := json.Marshal(emptySlice(in.PriorQA))
	if err != nil {
		return fmt.Errorf("marshal prior qa: %w", err)
	}
	materials, err := json.Marshal(emptySlice(in.SourceMaterials))
	if err != nil {
		return fmt.Errorf("marshal source materials: %w", err)
	}
	hyps, err := json.Marshal(emptySlice(in.Hypotheses))
	if err != nil {
		return fmt.Errorf("marshal hypotheses: %w", err)
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO initiatives (user_id, name, business_goal, audience_profile, project_constraints, contacts, prior_qa, source_materials, hypotheses, suggested_hypotheses, recommendations)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '[]', '[]')
		 RETURNING id, version, created_at, updated_at`,
		in.UserID, in.Name, in.BusinessGoal, in.AudienceProfile, in.ProjectConstraints,
		contacts, priorQA, materials, hyps,
	).Scan(&in.ID, &in.Version, &in.CreatedAt, &in.UpdatedAt)
}

func (s *InitiativeStore) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Initiative, error) {
	in := &domain.Initiative{}
	var contacts, priorQA, materials, hyps, suggested, recs []byte
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, name, business_goal, audience_profile, project_constraints, contacts, prior_qa, source_materials, hypotheses, suggested_hypotheses, recommendations, version, created_at, updated_at
		 FROM initiatives WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&in.ID, &in.UserID, &in.Name, &in.BusinessGoal, &in.AudienceProfile, &in.ProjectConstraints,
		&contacts, &priorQA, &materials, &hyps, &suggested, &recs,
		&in.Version, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(contacts, &in.Contacts); err != nil {
		return nil, fmt.Errorf("unmarshal contacts: %w", err)
	}
	if err := json.Unmarshal(priorQA, &in.PriorQA); err != nil {
		return nil, fmt.Errorf("unmarshal prior qa: %w", err)
	}
	if err := json.Unmarshal(materials, &in.SourceMaterials); err != nil {
		return nil, fmt.Errorf("unmarshal source materials: %w", err)
	}
	if err := json.Unmarshal(hyps, &in.Hypotheses); err != nil {
		return nil, fmt.Errorf("unmarshal hypotheses: %w", err)
	}
	if err := json.Unmarshal(suggested, &in.SuggestedHypotheses); err != nil {
		return nil, fmt.Errorf("unmarshal suggested hypotheses: %w", err)
	}
	if err := json.Unmarshal(recs, &in.Recommendations); err != nil {
		return nil, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	return in, nil
}

// UpdateHypotheses writes the hypothesis state in one statement conditioned
// on the version column. A zero-row update means another writer bumped the
// version first; the caller re-reads and replays.
func (s *InitiativeStore) UpdateHypotheses(ctx context.Context, userID, id uuid.UUID, hyps []domain.Hypothesis, suggested []domain.SuggestedHypothesis, recs []domain.Recommendation, expectedVersion int64) (bool, error) {
	hypsJSON, err := json.Marshal(emptySlice(hyps))
	if err != nil {
		return false, fmt.Errorf("marshal hypotheses: %w", err)
	}
	suggestedJSON, err := json.Marshal(emptySlice(suggested))
	if err != nil {
		return false, fmt.Errorf("marshal suggested hypotheses: %w", err)
	}
	recsJSON, err := json.Marshal(emptySlice(recs))
	if err != nil {
		return false, fmt.Errorf("marshal recommendations: %w", err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE initiatives
		 SET hypotheses = $1, suggested_hypotheses = $2, recommendations = $3,
		     version = version + 1, updated_at = NOW()
		 WHERE id = $4 AND user_id = $5 AND version = $6`,
		hypsJSON, suggestedJSON, recsJSON, id, userID, expectedVersion,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *InitiativeStore) IncrementUnread(ctx context.Context, id uuid.UUID, category string, n int) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO unread_counters (initiative_id, category, count)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (initiative_id, category)
		 DO UPDATE SET count = unread_counters.count + EXCLUDED.count, updated_at = NOW()`,
		id, category, n,
	)
	return err
}

func (s *InitiativeStore) UnreadCounts(ctx context.Context, id uuid.UUID) (map[string]int, error) {
	rows, err := s.db.Query(ctx,
		`SELECT category, count FROM unread_counters WHERE initiative_id = $1`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

// emptySlice keeps JSONB columns as [] instead of null for nil slices.
func emptySlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

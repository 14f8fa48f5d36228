package store

import (
	"context"

	"github.com/dogtuna/thoughtify/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// HypothesisEmbeddingStore indexes hypothesis statements per initiative so
// classifier-proposed hypotheses can be matched against what already exists.
type HypothesisEmbeddingStore struct {
	db *pgxpool.Pool
}

func NewHypothesisEmbeddingStore(db *pgxpool.Pool) *HypothesisEmbeddingStore {
	return &HypothesisEmbeddingStore{db: db}
}

func (s *HypothesisEmbeddingStore) Add(ctx context.Context, initiativeID uuid.UUID, hypothesisID, statement string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	_, err := s.db.Exec(ctx,
		`INSERT INTO hypothesis_embeddings (initiative_id, hypothesis_id, statement, embedding)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (initiative_id, hypothesis_id)
		 DO UPDATE SET statement = EXCLUDED.statement, embedding = EXCLUDED.embedding`,
		initiativeID, hypothesisID, statement, vec,
	)
	return err
}

func (s *HypothesisEmbeddingStore) FindSimilar(ctx context.Context, initiativeID uuid.UUID, embedding []float32, threshold float32) ([]domain.SimilarStatement, error) {
	vec := pgvector.NewVector(embedding)
	rows, err := s.db.Query(ctx,
		`SELECT hypothesis_id, statement, 1 - (embedding <=> $1) AS score
		 FROM hypothesis_embeddings
		 WHERE initiative_id = $2 AND 1 - (embedding <=> $1) >= $3
		 ORDER BY score DESC`,
		vec, initiativeID, threshold,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.SimilarStatement
	for rows.Next() {
		var m domain.SimilarStatement
		if err := rows.Scan(&m.HypothesisID, &m.Statement, &m.Score); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

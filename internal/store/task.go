package store

import (
	"context"

	"github.com/dogtuna/thoughtify/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskStore struct {
	db *pgxpool.Pool
}

func NewTaskStore(db *pgxpool.Pool) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) Create(ctx context.Context, t *domain.Task) error {
	if t.Status == "" {
		t.Status = domain.TaskStatusPending
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO tasks (initiative_id, message, category, who, hypothesis_id, task_type, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		t.InitiativeID, t.Message, t.Category, t.Who, t.HypothesisID, t.TaskType, t.Status,
	).Scan(&t.ID, &t.CreatedAt)
}

func (s *TaskStore) ListByInitiative(ctx context.Context, initiativeID uuid.UUID) ([]domain.Task, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, initiative_id, message, category, who, hypothesis_id, task_type, status, created_at
		 FROM tasks WHERE initiative_id = $1
		 ORDER BY created_at DESC`,
		initiativeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.InitiativeID, &t.Message, &t.Category, &t.Who, &t.HypothesisID, &t.TaskType, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

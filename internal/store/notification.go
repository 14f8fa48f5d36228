package store

import (
	"context"

	"github.com/dogtuna/thoughtify/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationStore struct {
	db *pgxpool.Pool
}

func NewNotificationStore(db *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{db: db}
}

// Upsert adds n.Count to the notification for (initiative, type, href).
// Counts only grow; readers reset nothing here.
func (s *NotificationStore) Upsert(ctx context.Context, n *domain.Notification) error {
	if n.Count == 0 {
		n.Count = 1
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO notifications (initiative_id, type, count, href)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (initiative_id, type, href)
		 DO UPDATE SET count = notifications.count + EXCLUDED.count, updated_at = NOW()
		 RETURNING id, count, created_at, updated_at`,
		n.InitiativeID, n.Type, n.Count, n.Href,
	).Scan(&n.ID, &n.Count, &n.CreatedAt, &n.UpdatedAt)
}

func (s *NotificationStore) ListByInitiative(ctx context.Context, initiativeID uuid.UUID) ([]domain.Notification, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, initiative_id, type, count, href, created_at, updated_at
		 FROM notifications WHERE initiative_id = $1
		 ORDER BY updated_at DESC`,
		initiativeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.InitiativeID, &n.Type, &n.Count, &n.Href, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

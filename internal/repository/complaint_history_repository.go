package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wardwatch/grievance-service/internal/domain"
)

// ComplaintHistoryRepository stores status-change audit entries.
type ComplaintHistoryRepository interface {
	Create(ctx context.Context, history *domain.ComplaintHistory) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintHistory, error)
}

type complaintHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintHistoryRepository builds repository.
func NewComplaintHistoryRepository(pool *pgxpool.Pool) ComplaintHistoryRepository {
	return &complaintHistoryRepository{pool: pool}
}

func (r *complaintHistoryRepository) Create(ctx context.Context, history *domain.ComplaintHistory) error {
	const query = `
        INSERT INTO complaint_history (complaint_id, changed_by_id, changed_by, old_status, new_status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		history.ComplaintID,
		history.ChangedByID,
		history.ChangedBy,
		history.OldStatus,
		history.NewStatus,
	).Scan(&history.ID, &history.CreatedAt)
}

func (r *complaintHistoryRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintHistory, error) {
	const query = `
        SELECT id, complaint_id, changed_by_id, changed_by, old_status, new_status, created_at
        FROM complaint_history WHERE complaint_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ComplaintHistory
	for rows.Next() {
		var history domain.ComplaintHistory
		if err := rows.Scan(
			&history.ID,
			&history.ComplaintID,
			&history.ChangedByID,
			&history.ChangedBy,
			&history.OldStatus,
			&history.NewStatus,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}

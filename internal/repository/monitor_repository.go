package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/recruit-backend/internal/model"
)

// MonitorRepository provides persisted activity for the live proctoring monitor.
type MonitorRepository struct {
	pool *pgxpool.Pool
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(pool *pgxpool.Pool) *MonitorRepository {
	return &MonitorRepository{pool: pool}
}

// ApplicantActivity is an applicant's persisted answer and violation totals.
type ApplicantActivity struct {
	ApplicantID    uuid.UUID             `json:"applicant_id"`
	Name           string                `json:"name"`
	Status         model.ApplicantStatus `json:"status"`
	AnsweredCount  int64                 `json:"answered_count"`
	ViolationCount int64                 `json:"violation_count"`
	LastActivity   time.Time             `json:"last_activity"`
}

// GetRecentActivity returns applicants with answers or violations recorded since the given time.
func (r *MonitorRepository) GetRecentActivity(ctx context.Context, since time.Time, limit int) ([]ApplicantActivity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.name, a.status,
		        COALESCE(ans.cnt, 0), COALESCE(v.cnt, 0),
		        GREATEST(ans.last_at, v.last_at) AS last_activity
		 FROM applicants a
		 LEFT JOIN (
			SELECT applicant_id, COUNT(*) AS cnt, MAX(updated_at) AS last_at
			FROM test_answers GROUP BY applicant_id
		 ) ans ON ans.applicant_id = a.id
		 LEFT JOIN (
			SELECT applicant_id, COUNT(*) AS cnt, MAX(recorded_at) AS last_at
			FROM session_violations GROUP BY applicant_id
		 ) v ON v.applicant_id = a.id
		 WHERE GREATEST(ans.last_at, v.last_at) >= $1
		 ORDER BY last_activity DESC
		 LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activity := []ApplicantActivity{}
	for rows.Next() {
		var a ApplicantActivity
		if err := rows.Scan(&a.ApplicantID, &a.Name, &a.Status, &a.AnsweredCount, &a.ViolationCount, &a.LastActivity); err != nil {
			return nil, err
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

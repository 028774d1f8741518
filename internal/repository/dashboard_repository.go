package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/recruit-backend/internal/model"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// DashboardSummary holds the headline recruitment metrics.
type DashboardSummary struct {
	TotalApplicants   int      `json:"total_applicants"`
	TotalResults      int      `json:"total_results"`
	TotalFeedback     int      `json:"total_feedback"`
	AveragePercentage *float64 `json:"average_percentage"`
	AverageRating     *float64 `json:"average_rating"`
}

// GetSummary retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummary(ctx context.Context) (*DashboardSummary, error) {
	s := &DashboardSummary{}
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM applicants),
			(SELECT COUNT(*) FROM test_results),
			(SELECT COUNT(*) FROM feedback),
			(SELECT AVG(percentage) FROM test_results WHERE NOT disqualified),
			(SELECT AVG(rating)::float8 FROM feedback)`,
	).Scan(&s.TotalApplicants, &s.TotalResults, &s.TotalFeedback, &s.AveragePercentage, &s.AverageRating)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetStatusCounts retrieves the distribution of applicants by status.
func (r *DashboardRepository) GetStatusCounts(ctx context.Context) (map[model.ApplicantStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM applicants GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.ApplicantStatus]int)
	for rows.Next() {
		var status model.ApplicantStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// DashboardRecentResult is a minimal row for the most recent submissions.
type DashboardRecentResult struct {
	ApplicantID  uuid.UUID `json:"applicant_id"`
	Name         string    `json:"name"`
	Position     string    `json:"position"`
	Percentage   float64   `json:"percentage"`
	Disqualified bool      `json:"disqualified"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// GetRecentResults retrieves the last N submitted results.
func (r *DashboardRepository) GetRecentResults(ctx context.Context, limit int) ([]DashboardRecentResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.applicant_id, a.name, a.position, t.percentage, t.disqualified, t.submitted_at
		 FROM test_results t
		 JOIN applicants a ON a.id = t.applicant_id
		 ORDER BY t.submitted_at DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DashboardRecentResult
	for rows.Next() {
		var res DashboardRecentResult
		if err := rows.Scan(&res.ApplicantID, &res.Name, &res.Position, &res.Percentage, &res.Disqualified, &res.SubmittedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if results == nil {
		results = []DashboardRecentResult{}
	}
	return results, rows.Err()
}

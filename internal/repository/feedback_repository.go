package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/recruit-backend/internal/model"
)

// FeedbackRepository handles candidate feedback data access.
type FeedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{pool: pool}
}

// Create inserts feedback.
func (r *FeedbackRepository) Create(ctx context.Context, f *model.Feedback) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO feedback (applicant_id, rating, comments)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		f.ApplicantID, f.Rating, f.Comments,
	).Scan(&f.ID, &f.CreatedAt)
}

// ListByApplicant retrieves an applicant's feedback, newest first.
func (r *FeedbackRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]model.Feedback, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, applicant_id, rating, comments, created_at
		 FROM feedback WHERE applicant_id = $1
		 ORDER BY created_at DESC`, applicantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Feedback{}
	for rows.Next() {
		var f model.Feedback
		if err := rows.Scan(&f.ID, &f.ApplicantID, &f.Rating, &f.Comments, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

// FeedbackEntry is feedback joined with the applicant it came from.
type FeedbackEntry struct {
	ID            uuid.UUID `json:"id"`
	ApplicantID   uuid.UUID `json:"applicant_id"`
	ApplicantName string    `json:"applicant_name"`
	Position      string    `json:"position"`
	Rating        int       `json:"rating"`
	Comments      string    `json:"comments"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListPaginated retrieves all feedback newest first.
func (r *FeedbackRepository) ListPaginated(ctx context.Context, limit, offset int) ([]FeedbackEntry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT f.id, f.applicant_id, a.name, a.position, f.rating, f.comments, f.created_at
		 FROM feedback f
		 JOIN applicants a ON a.id = f.applicant_id
		 ORDER BY f.created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []FeedbackEntry{}
	for rows.Next() {
		var e FeedbackEntry
		if err := rows.Scan(&e.ID, &e.ApplicantID, &e.ApplicantName, &e.Position, &e.Rating, &e.Comments, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

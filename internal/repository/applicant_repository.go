package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/recruit-backend/internal/model"
)

var ErrDuplicateEmail = errors.New("applicant with this email already exists")

const applicantColumns = `id, name, email, phone, position, experience_years, status, created_at, updated_at`

// ApplicantRepository handles applicant data access.
type ApplicantRepository struct {
	pool *pgxpool.Pool
}

// NewApplicantRepository creates a new ApplicantRepository.
func NewApplicantRepository(pool *pgxpool.Pool) *ApplicantRepository {
	return &ApplicantRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplicant(row rowScanner, a *model.Applicant) error {
	return row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Position, &a.ExperienceYears, &a.Status, &a.CreatedAt, &a.UpdatedAt)
}

// GetByID retrieves an applicant by ID.
func (r *ApplicantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Applicant, error) {
	a := &model.Applicant{}
	row := r.pool.QueryRow(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id = $1`, id)
	if err := scanApplicant(row, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListPaginated retrieves applicants newest first, optionally filtered by status.
func (r *ApplicantRepository) ListPaginated(ctx context.Context, status *model.ApplicantStatus, limit, offset int) ([]model.Applicant, int, error) {
	countQuery := `SELECT COUNT(*) FROM applicants`
	var countArgs []interface{}
	if status != nil {
		countQuery += ` WHERE status = $1`
		countArgs = append(countArgs, *status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + applicantColumns + ` FROM applicants`
	var args []interface{}
	argIdx := 1

	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
		argIdx++
	}

	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	applicants := []model.Applicant{}
	for rows.Next() {
		var a model.Applicant
		if err := scanApplicant(rows, &a); err != nil {
			return nil, 0, err
		}
		applicants = append(applicants, a)
	}
	return applicants, total, rows.Err()
}

// Create inserts a new applicant.
func (r *ApplicantRepository) Create(ctx context.Context, a *model.Applicant) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO applicants (name, email, phone, position, experience_years)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, status, created_at, updated_at`,
		a.Name, a.Email, a.Phone, a.Position, a.ExperienceYears,
	).Scan(&a.ID, &a.Status, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

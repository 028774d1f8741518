package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/recruit-backend/internal/model"
)

// TestResultRepository reads submitted results and autosaved answers.
// Writes happen in the result and autosave workers.
type TestResultRepository struct {
	pool *pgxpool.Pool
}

// NewTestResultRepository creates a new TestResultRepository.
func NewTestResultRepository(pool *pgxpool.Pool) *TestResultRepository {
	return &TestResultRepository{pool: pool}
}

// GetByApplicant retrieves the stored result for an applicant.
func (r *TestResultRepository) GetByApplicant(ctx context.Context, applicantID uuid.UUID) (*model.TestResult, error) {
	t := &model.TestResult{}
	var data []byte
	err := r.pool.QueryRow(ctx,
		`SELECT applicant_id, correct_answers, total_questions, percentage, time_spent,
		        tab_switch_count, copy_attempts, disqualified, reason, test_data, submitted_at
		 FROM test_results WHERE applicant_id = $1`, applicantID,
	).Scan(&t.ApplicantID, &t.CorrectAnswers, &t.TotalQuestions, &t.Percentage, &t.TimeSpent,
		&t.TabSwitchCount, &t.CopyAttempts, &t.Disqualified, &t.Reason, &data, &t.SubmittedAt)
	if err != nil {
		return nil, err
	}
	t.TestData = json.RawMessage(data)
	return t, nil
}

// Exists reports whether an applicant already has a stored result.
func (r *TestResultRepository) Exists(ctx context.Context, applicantID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM test_results WHERE applicant_id = $1)`, applicantID,
	).Scan(&exists)
	return exists, err
}

// ListAnswers retrieves the autosaved answers for an applicant.
func (r *TestResultRepository) ListAnswers(ctx context.Context, applicantID uuid.UUID) (model.AnswerRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, answer FROM test_answers WHERE applicant_id = $1`, applicantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make(model.AnswerRecord)
	for rows.Next() {
		var (
			qid int
			raw []byte
			v   model.AnswerValue
		)
		if err := rows.Scan(&qid, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("answer %d: %w", qid, err)
		}
		answers[qid] = v
	}
	return answers, rows.Err()
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/recruit-backend/internal/model"
)

// QuestionRepository handles the stored question bank used when reviewing results.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListAll retrieves every question ordered by id.
func (r *QuestionRepository) ListAll(ctx context.Context) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, prompt, options, correct_answer, category FROM questions ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var (
			q       model.Question
			options []byte
			correct []byte
		)
		if err := rows.Scan(&q.ID, &q.Prompt, &options, &correct, &q.Category); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("question %d options: %w", q.ID, err)
		}
		if err := json.Unmarshal(correct, &q.CorrectAnswer); err != nil {
			return nil, fmt.Errorf("question %d correct answer: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Upsert inserts or replaces questions in a single batch round trip.
func (r *QuestionRepository) Upsert(ctx context.Context, questions []model.Question) error {
	batch := &pgx.Batch{}
	for _, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		correct, err := json.Marshal(q.CorrectAnswer)
		if err != nil {
			return err
		}
		batch.Queue(
			`INSERT INTO questions (id, prompt, options, correct_answer, category)
			 VALUES ($1, $2, $3::jsonb, $4::jsonb, $5)
			 ON CONFLICT (id) DO UPDATE
			 SET prompt = EXCLUDED.prompt,
			     options = EXCLUDED.options,
			     correct_answer = EXCLUDED.correct_answer,
			     category = EXCLUDED.category,
			     updated_at = NOW()`,
			q.ID, q.Prompt, string(options), string(correct), q.Category,
		)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

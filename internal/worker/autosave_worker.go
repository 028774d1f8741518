package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/recruit-backend/internal/config"
	"github.com/stemsi/recruit-backend/internal/model"
)

// AutosaveWorker upserts every answer selection into test_answers, so a
// crashed or abandoned session still leaves its answers behind for review.
type AutosaveWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewAutosaveWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AutosaveWorker {
	return &AutosaveWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "autosave_worker").Logger(),
	}
}

func (w *AutosaveWorker) Start(ctx context.Context) {
	loop := &batchLoop[model.AnswerJob]{
		rdb:    w.rdb,
		queue:  config.WorkerKey.PersistAnswersQueue,
		log:    w.log,
		bulk:   w.bulkUpsert,
		single: w.upsertSingle,
	}
	loop.run(ctx)
}

type answerColumns struct {
	ApplicantIDs []uuid.UUID
	QuestionIDs  []int
	Answers      []string
	AnsweredAt   []time.Time
}

type answerKey struct {
	applicant uuid.UUID
	question  int
}

// buildAnswerColumns keeps the latest selection per applicant and question.
// A single upsert statement cannot touch the same row twice.
func buildAnswerColumns(batch []model.AnswerJob) (answerColumns, error) {
	latest := make(map[answerKey]model.AnswerJob, len(batch))
	order := make([]answerKey, 0, len(batch))
	for _, job := range batch {
		id, err := uuid.Parse(job.ApplicantID)
		if err != nil || job.Answer.IsZero() {
			continue
		}
		k := answerKey{id, job.QuestionID}
		prev, ok := latest[k]
		if !ok {
			order = append(order, k)
		}
		if !ok || !job.AnsweredAt.Before(prev.AnsweredAt) {
			latest[k] = job
		}
	}

	var cols answerColumns
	for _, k := range order {
		job := latest[k]
		raw, err := json.Marshal(job.Answer)
		if err != nil {
			return answerColumns{}, fmt.Errorf("encode answer: %w", err)
		}
		cols.ApplicantIDs = append(cols.ApplicantIDs, k.applicant)
		cols.QuestionIDs = append(cols.QuestionIDs, k.question)
		cols.Answers = append(cols.Answers, string(raw))
		cols.AnsweredAt = append(cols.AnsweredAt, job.AnsweredAt)
	}
	return cols, nil
}

const upsertAnswersSQL = `
	INSERT INTO test_answers (applicant_id, question_id, answer, updated_at)
	SELECT u.applicant_id, u.question_id, u.answer::jsonb, u.answered_at
	FROM UNNEST($1::uuid[], $2::int[], $3::text[], $4::timestamptz[])
		AS u (applicant_id, question_id, answer, answered_at)
	ON CONFLICT (applicant_id, question_id) DO UPDATE
	SET answer = EXCLUDED.answer, updated_at = EXCLUDED.updated_at
	WHERE test_answers.updated_at <= EXCLUDED.updated_at
`

func (w *AutosaveWorker) bulkUpsert(ctx context.Context, batch []model.AnswerJob) error {
	cols, err := buildAnswerColumns(batch)
	if err != nil {
		return err
	}
	if len(cols.ApplicantIDs) == 0 {
		return nil
	}
	_, err = w.pool.Exec(ctx, upsertAnswersSQL, cols.ApplicantIDs, cols.QuestionIDs, cols.Answers, cols.AnsweredAt)
	return err
}

func (w *AutosaveWorker) upsertSingle(ctx context.Context, job model.AnswerJob) error {
	return w.bulkUpsert(ctx, []model.AnswerJob{job})
}

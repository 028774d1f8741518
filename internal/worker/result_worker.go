package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/recruit-backend/internal/config"
	"github.com/stemsi/recruit-backend/internal/model"
)

// ResultWorker stores submitted test results and moves applicants out of
// REGISTERED. The first stored result per applicant wins.
type ResultWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewResultWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "result_worker").Logger(),
	}
}

func (w *ResultWorker) Start(ctx context.Context) {
	loop := &batchLoop[model.ResultJob]{
		rdb:    w.rdb,
		queue:  config.WorkerKey.PersistResultsQueue,
		log:    w.log,
		bulk:   w.bulkInsert,
		single: w.persistSingle,
		after:  w.clearLiveState,
	}
	loop.run(ctx)
}

// resultColumns holds one UNNEST array per inserted column.
type resultColumns struct {
	ApplicantIDs []uuid.UUID
	Correct      []int
	Totals       []int
	Percentages  []float64
	TimeSpent    []int
	TabSwitches  []int
	CopyAttempts []int
	Disqualified []bool
	Reasons      []string
	TestData     []string
	SubmittedAt  []time.Time
	Statuses     []string
}

func (c *resultColumns) args() []any {
	return []any{
		c.ApplicantIDs, c.Correct, c.Totals, c.Percentages, c.TimeSpent, c.TabSwitches,
		c.CopyAttempts, c.Disqualified, c.Reasons, c.TestData, c.SubmittedAt,
	}
}

// buildResultColumns flattens jobs into column arrays. Jobs with a
// malformed applicant id are returned separately and never stored.
func buildResultColumns(batch []model.ResultJob) (cols resultColumns, invalid []model.ResultJob, err error) {
	seen := make(map[uuid.UUID]bool, len(batch))
	for _, job := range batch {
		id, perr := uuid.Parse(job.ApplicantID)
		if perr != nil {
			invalid = append(invalid, job)
			continue
		}
		// Only the first result per applicant is kept.
		if seen[id] {
			continue
		}
		seen[id] = true

		raw, merr := json.Marshal(job.TestData)
		if merr != nil {
			return resultColumns{}, nil, fmt.Errorf("encode test data for %s: %w", id, merr)
		}

		submittedAt := job.SubmittedAt
		if submittedAt.IsZero() {
			submittedAt = time.Now()
		}

		cols.ApplicantIDs = append(cols.ApplicantIDs, id)
		cols.Correct = append(cols.Correct, job.TestData.Score)
		cols.Totals = append(cols.Totals, job.TestData.TotalQuestions)
		cols.Percentages = append(cols.Percentages, job.TestData.Percentage)
		cols.TimeSpent = append(cols.TimeSpent, job.TestData.TimeSpent)
		cols.TabSwitches = append(cols.TabSwitches, job.TestData.TabSwitchCount)
		cols.CopyAttempts = append(cols.CopyAttempts, job.TestData.CopyAttempts)
		cols.Disqualified = append(cols.Disqualified, job.TestData.Disqualified)
		cols.Reasons = append(cols.Reasons, string(job.Reason))
		cols.TestData = append(cols.TestData, string(raw))
		cols.SubmittedAt = append(cols.SubmittedAt, submittedAt)
		cols.Statuses = append(cols.Statuses, string(finalStatus(job.TestData)))
	}
	return cols, invalid, nil
}

func finalStatus(data model.TestData) model.ApplicantStatus {
	if data.Disqualified {
		return model.ApplicantStatusDisqualified
	}
	return model.ApplicantStatusTested
}

const insertResultsSQL = `
	INSERT INTO test_results (
		applicant_id, correct_answers, total_questions, percentage, time_spent,
		tab_switch_count, copy_attempts, disqualified, reason, test_data, submitted_at
	)
	SELECT
		u.applicant_id, u.correct_answers, u.total_questions, u.percentage, u.time_spent,
		u.tab_switch_count, u.copy_attempts, u.disqualified, u.reason, u.test_data::jsonb, u.submitted_at
	FROM UNNEST(
		$1::uuid[],
		$2::int[],
		$3::int[],
		$4::float8[],
		$5::int[],
		$6::int[],
		$7::int[],
		$8::bool[],
		$9::text[],
		$10::text[],
		$11::timestamptz[]
	) AS u (
		applicant_id, correct_answers, total_questions, percentage, time_spent,
		tab_switch_count, copy_attempts, disqualified, reason, test_data, submitted_at
	)
	ON CONFLICT (applicant_id) DO NOTHING
`

// Only applicants still REGISTERED move, so a replayed job cannot flip
// a stored outcome.
const updateStatusesSQL = `
	UPDATE applicants AS a
	SET status = t.status,
	    updated_at = NOW()
	FROM UNNEST($1::uuid[], $2::text[]) AS t (id, status)
	WHERE a.id = t.id
	  AND a.status = 'REGISTERED'
`

func (w *ResultWorker) bulkInsert(ctx context.Context, batch []model.ResultJob) error {
	cols, invalid, err := buildResultColumns(batch)
	if err != nil {
		return err
	}
	for _, job := range invalid {
		w.log.Error().Str("applicant_id", job.ApplicantID).Msg("Dropping result with invalid applicant id")
	}
	if len(cols.ApplicantIDs) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, w.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertResultsSQL, cols.args()...); err != nil {
			return fmt.Errorf("insert results: %w", err)
		}
		if _, err := tx.Exec(ctx, updateStatusesSQL, cols.ApplicantIDs, cols.Statuses); err != nil {
			return fmt.Errorf("update statuses: %w", err)
		}
		return nil
	})
}

func (w *ResultWorker) persistSingle(ctx context.Context, job model.ResultJob) error {
	return w.bulkInsert(ctx, []model.ResultJob{job})
}

// clearLiveState drops the Redis answer mirrors of finished sessions.
func (w *ResultWorker) clearLiveState(ctx context.Context, batch []model.ResultJob) {
	pipe := w.rdb.Pipeline()
	for _, job := range batch {
		pipe.Del(ctx, config.CacheKey.ApplicantAnswersKey(job.ApplicantID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Warn().Err(err).Msg("Failed to clear live answer mirrors")
	}
	w.log.Info().Int("count", len(batch)).Msg("Stored test results")
}

package worker

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/recruit-backend/internal/config"
	"github.com/stemsi/recruit-backend/internal/model"
)

// ViolationWorker appends integrity events to session_violations.
type ViolationWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewViolationWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ViolationWorker {
	return &ViolationWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "violation_worker").Logger(),
	}
}

func (w *ViolationWorker) Start(ctx context.Context) {
	loop := &batchLoop[model.ViolationEvent]{
		rdb:    w.rdb,
		queue:  config.WorkerKey.PersistViolationsQueue,
		log:    w.log,
		bulk:   w.copyInsert,
		single: w.insertSingle,
	}
	loop.run(ctx)
}

var violationColumns = []string{"applicant_id", "kind", "tab_switch_count", "copy_attempt_count", "recorded_at"}

// violationRows converts events to COPY rows, skipping malformed applicant ids.
func violationRows(batch []model.ViolationEvent) (rows [][]any, skipped int) {
	rows = make([][]any, 0, len(batch))
	for _, ev := range batch {
		id, err := uuid.Parse(ev.ApplicantID)
		if err != nil || !ev.Kind.Valid() {
			skipped++
			continue
		}
		rows = append(rows, []any{id, string(ev.Kind), ev.TabSwitchCount, ev.CopyAttemptCount, ev.RecordedAt})
	}
	return rows, skipped
}

func (w *ViolationWorker) copyInsert(ctx context.Context, batch []model.ViolationEvent) error {
	rows, skipped := violationRows(batch)
	if skipped > 0 {
		w.log.Error().Int("count", skipped).Msg("Dropping malformed violation events")
	}
	if len(rows) == 0 {
		return nil
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"session_violations"},
		violationColumns,
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *ViolationWorker) insertSingle(ctx context.Context, ev model.ViolationEvent) error {
	rows, _ := violationRows([]model.ViolationEvent{ev})
	if len(rows) == 0 {
		return nil
	}
	_, err := w.pool.Exec(ctx,
		`INSERT INTO session_violations (applicant_id, kind, tab_switch_count, copy_attempt_count, recorded_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rows[0]...,
	)
	return err
}

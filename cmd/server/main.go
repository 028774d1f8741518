package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/recruit-backend/internal/config"
	"github.com/stemsi/recruit-backend/internal/database"
	"github.com/stemsi/recruit-backend/internal/handler"
	"github.com/stemsi/recruit-backend/internal/logger"
	"github.com/stemsi/recruit-backend/internal/middleware"
	"github.com/stemsi/recruit-backend/internal/proctor"
	"github.com/stemsi/recruit-backend/internal/questionset"
	"github.com/stemsi/recruit-backend/internal/queue"
	"github.com/stemsi/recruit-backend/internal/repository"
	"github.com/stemsi/recruit-backend/internal/router"
	"github.com/stemsi/recruit-backend/internal/service"
	"github.com/stemsi/recruit-backend/internal/validator"
	"github.com/stemsi/recruit-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Dur("test_duration", cfg.Proctor.TestDuration).
		Int("tab_switch_limit", cfg.Proctor.TabSwitchLimit).
		Msg("Starting Recruit Backend")

	if cfg.AdminAPIKey == "" {
		log.Warn().Msg("ADMIN_API_KEY is empty, admin routes are open")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Question Set ─────────────────────────────────────────────
	questions, err := questionset.Load(cfg.QuestionSetPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.QuestionSetPath).Msg("Failed to load question set")
	}
	log.Info().Int("questions", questions.Len()).Msg("Question set loaded")

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	jobs := queue.New(rdb)

	// ─── Initialize Repositories ───────────────────────────────────────
	applicantRepo := repository.NewApplicantRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	resultRepo := repository.NewTestResultRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)
	monitorRepo := repository.NewMonitorRepository(pool)

	// ─── Sync Question Bank ────────────────────────────────────────────
	// Reviews score against the stored bank, so it must match the live set.
	if err := questionRepo.Upsert(ctx, questions.Questions()); err != nil {
		log.Warn().Err(err).Msg("Question bank sync failed")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	sessionService := service.NewTestSessionService(
		applicantRepo, resultRepo, jobs, questions, cfg.Proctor, proctor.SystemClock, log,
	)
	applicantService := service.NewApplicantService(applicantRepo)
	feedbackService := service.NewFeedbackService(feedbackRepo, applicantRepo)
	reviewService := service.NewReviewService(applicantRepo, resultRepo, questionRepo, feedbackRepo)
	dashboardService := service.NewDashboardService(dashboardRepo, sessionService)
	monitorService := service.NewMonitorService(monitorRepo, sessionService)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Applicant: handler.NewApplicantHandler(applicantService, log),
		Test:      handler.NewTestHandler(sessionService, log),
		WS:        handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
		Feedback:  handler.NewFeedbackHandler(feedbackService, log),
		Review:    handler.NewReviewHandler(reviewService, log),
		Dashboard: handler.NewDashboardHandler(dashboardService, log),
		Monitor:   handler.NewMonitorHandler(rdb, monitorService, log),
		System:    handler.NewSystemHandler(jobs, sessionService, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	for _, w := range []interface{ Start(context.Context) }{
		worker.NewResultWorker(pool, rdb, log),
		worker.NewViolationWorker(pool, rdb, log),
		worker.NewAutosaveWorker(pool, rdb, log),
	} {
		workers.Add(1)
		go func(w interface{ Start(context.Context) }) {
			defer workers.Done()
			w.Start(workerCtx)
		}(w)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	registerLimiter := middleware.NewRateLimiter(cfg.RegisterRatePerMinute, time.Minute)
	defer registerLimiter.Stop()

	r := router.SetupRouter(handlers, registerLimiter, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Discard live sessions. Their answers are already queued for autosave.
	sessionService.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/stemsi/recruit-backend/internal/config"
	"github.com/stemsi/recruit-backend/internal/database"
	"github.com/stemsi/recruit-backend/internal/logger"
	"github.com/stemsi/recruit-backend/internal/model"
	"github.com/stemsi/recruit-backend/internal/questionset"
	"github.com/stemsi/recruit-backend/internal/repository"
	"github.com/stemsi/recruit-backend/internal/service"
)

var positions = []string{"Backend Engineer", "Frontend Engineer", "QA Engineer", "Data Analyst", "Product Designer"}

var names = []string{
	"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo",
	"Ayu Lestari", "Dodi Kusuma", "Eka Putri", "Fahri Hamzah", "Gita Savitri",
	"Hendra Gunawan", "Ika Sari", "Lukman Hakim", "Maya Septiana", "Nanda Pratama",
	"Oki Setiana", "Putri Dian", "Rafi Ahmad", "Siska Saraswati", "Toni Setiawan",
}

func main() {
	var (
		questionsPath string
		applicants    int
	)
	flag.StringVar(&questionsPath, "questions", "", "Question set JSON file (default: embedded set)")
	flag.IntVar(&applicants, "applicants", 0, "Number of demo applicants to register")
	flag.Parse()

	cfg := config.Load()
	log := logger.Component(logger.Setup(cfg.LogLevel, cfg.LogFormat), "seed")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	set, err := questionset.Load(questionsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load question set")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	if err := repository.NewQuestionRepository(pool).Upsert(ctx, set.Questions()); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed question bank")
	}
	log.Info().Int("count", set.Len()).Msg("Question bank seeded")

	if applicants <= 0 {
		return
	}
	if applicants > len(names) {
		applicants = len(names)
	}

	applicantService := service.NewApplicantService(repository.NewApplicantRepository(pool))

	created := 0
	for i := 0; i < applicants; i++ {
		_, err := applicantService.Register(ctx, model.RegisterApplicantRequest{
			Name:            names[i],
			Email:           fmt.Sprintf("applicant%02d@example.com", i+1),
			Phone:           fmt.Sprintf("0812000%04d", i+1),
			Position:        positions[i%len(positions)],
			ExperienceYears: i % 8,
		})
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			log.Debug().Str("name", names[i]).Msg("Applicant already exists")
		case err != nil:
			log.Error().Err(err).Str("name", names[i]).Msg("Failed to register applicant")
		default:
			created++
		}
	}

	log.Info().Int("created", created).Int("requested", applicants).Msg("Demo applicants seeded")
}

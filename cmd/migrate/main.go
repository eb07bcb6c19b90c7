// Command migrate applies the database migrations outside the server.
//
//	go run ./cmd/migrate [up|down|status]
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/careerops-api/internal/config"
	"github.com/yourusername/careerops-api/internal/repository"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := repository.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool, direction); err != nil {
		log.Fatal().Err(err).Str("direction", direction).Msg("Migration failed")
	}

	if direction == "up" {
		n, err := repository.NewJobRepo(pool).Seed(ctx, repository.SampleJobs())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed job catalog")
		}
		log.Info().Int("jobs", n).Msg("Job catalog seeded")
	}
	log.Info().Str("direction", direction).Msg("Migrations done")
}

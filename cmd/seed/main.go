package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"

	"notes_service/internal/auth"
	"notes_service/internal/config"
	"notes_service/internal/database"
	"notes_service/internal/repositories"
	"notes_service/internal/services"
	"notes_service/internal/slug"
	"notes_service/pkg/logger"
)

func main() {
	file := flag.String("file", "seeds/demo.yaml", "fixture to load")
	fakeCount := flag.Int("fake", 0, "extra generated notes for the first fixture user")
	flag.Parse()

	log := logger.New(os.Stdout, zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.StoreDriver != config.StorePostgres {
		log.Fatal().Str("store", cfg.StoreDriver).Msg("seeding needs the postgres store")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open fixture")
	}
	defer f.Close()
	fixture, err := ParseFixture(f)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse fixture")
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate")
		}
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}

	// Seeding never hands out tokens; any non-empty secret will do.
	secret := cfg.AccessTokenSecret
	if secret == "" {
		secret = "seed"
	}
	tokens, err := auth.NewTokenManager(secret, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure tokens")
	}

	notes, comments, users := repositories.NewNoteRepository(db), repositories.NewCommentRepository(db), repositories.NewUserRepository(db)
	seeder := NewSeeder(
		services.NewUserService(users, tokens, log),
		services.NewNoteService(notes, users, slug.NewGenerator(), services.WithLogger(log)),
		services.NewCommentService(notes, comments, users, nil, log),
		log,
	)

	ctx := context.Background()
	if err := seeder.Apply(ctx, fixture); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	if *fakeCount > 0 && len(fixture.Users) > 0 {
		if err := seeder.Fake(ctx, fixture.Users[0].Email, *fakeCount); err != nil {
			log.Fatal().Err(err).Msg("fake seeding failed")
		}
	}
	log.Info().Int("users", len(fixture.Users)).Int("notes", len(fixture.Notes)).Msg("seed complete")
}

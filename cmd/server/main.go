package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"notes_service/internal/auth"
	"notes_service/internal/config"
	"notes_service/internal/database"
	"notes_service/internal/handlers"
	"notes_service/internal/kafka"
	"notes_service/internal/middleware"
	"notes_service/internal/redis"
	"notes_service/internal/repositories"
	"notes_service/internal/router"
	"notes_service/internal/services"
	"notes_service/internal/slug"
	"notes_service/pkg/logger"
)

type stores struct {
	notes    repositories.NoteRepository
	comments repositories.CommentRepository
	users    repositories.UserRepository
	close    func() error
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Log.Warn().Msg("using in-memory store; data is lost on exit")
		mem := repositories.NewMemoryStore()
		return &stores{notes: mem.Notes(), comments: mem.Comments(), users: mem.Users(), close: func() error { return nil }}, nil
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		logger.Log.Info().Msg("database migrations applied")
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &stores{
		notes:    repositories.NewNoteRepository(db),
		comments: repositories.NewCommentRepository(db),
		users:    repositories.NewUserRepository(db),
		close:    sqlDB.Close,
	}, nil
}

func main() {
	boot := logger.New(os.Stderr, zerolog.InfoLevel)
	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logFile, err := logger.InitLogger(cfg.LogFile, level)
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to initialise logger")
	}
	defer logFile.Close()
	log := logger.Log

	gin.SetMode(cfg.GinMode)

	st, err := openStores(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.close()

	tokens, err := auth.NewTokenManager(cfg.AccessTokenSecret, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure tokens")
	}

	noteOpts := []services.NoteOption{services.WithLogger(logger.Component("notes"))}
	var publisher services.EventPublisher

	if cfg.RedisAddr != "" {
		cache, err := redis.NewService(cfg.RedisAddr, cfg.RedisPassword, 0, cfg.PublicPageTTL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable; public page cache and activity log disabled")
		} else {
			defer cache.Close()
			noteOpts = append(noteOpts, services.WithPageCache(cache), services.WithActivityLog(cache))
			log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
		}
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, logger.Component("kafka"))
		defer producer.Close()
		publisher = producer
		noteOpts = append(noteOpts, services.WithPublisher(producer))
	}

	userService := services.NewUserService(st.users, tokens, logger.Component("users"))
	noteService := services.NewNoteService(st.notes, st.users, slug.NewGenerator(), noteOpts...)
	commentService := services.NewCommentService(st.notes, st.comments, st.users, publisher, logger.Component("comments"))

	r := router.New(router.Handlers{
		Users:    handlers.NewUserHandler(userService),
		Notes:    handlers.NewNoteHandler(noteService),
		Comments: handlers.NewCommentHandler(commentService),
		Public:   handlers.NewPublicHandler(noteService),
	}, router.Auth{
		Required: middleware.AuthMiddleware(tokens, userService),
		Optional: middleware.OptionalAuth(tokens, userService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

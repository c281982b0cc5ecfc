package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizroom-backend/internal/config"
	"github.com/stemsi/quizroom-backend/internal/database"
	"github.com/stemsi/quizroom-backend/internal/handler"
	"github.com/stemsi/quizroom-backend/internal/logger"
	"github.com/stemsi/quizroom-backend/internal/repository"
	"github.com/stemsi/quizroom-backend/internal/repository/memory"
	"github.com/stemsi/quizroom-backend/internal/router"
	"github.com/stemsi/quizroom-backend/internal/service"
	"github.com/stemsi/quizroom-backend/internal/validator"
	"golang.org/x/sync/errgroup"
)

// stores bundles the storage backends selected by STORAGE_DRIVER.
type stores struct {
	users     service.UserDirectory
	questions service.QuestionBank
	rooms     service.RoomStore
	results   service.ResultStore
	pinger    handler.Pinger
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("storage", cfg.StorageDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting QuizRoom Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL and Redis ───────────────────────────────
	var (
		pool *pgxpool.Pool
		rdb  *redis.Client
	)
	g, gctx := errgroup.WithContext(ctx)
	if cfg.StorageDriver == config.StorageDriverPostgres {
		g.Go(func() error {
			if cfg.AutoMigrate {
				if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
					return err
				}
				log.Info().Msg("Migrations applied")
			}
			p, err := database.NewPostgresPool(gctx, cfg, log)
			pool = p
			return err
		})
	}
	g.Go(func() error {
		c, err := database.NewRedisClient(gctx, cfg, log)
		rdb = c
		return err
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to backing services")
	}
	if pool != nil {
		defer pool.Close()
	}
	defer rdb.Close()

	// ─── Initialize Stores ─────────────────────────────────────────────
	st, err := newStores(cfg, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(st.users, st.rooms, authService, log)
	questionService := service.NewQuestionService(st.questions, log)
	quizService := service.NewQuizService(st.questions, st.results, cfg, log)
	roomCache := service.NewRoomCache(rdb, cfg.RoomCacheTTL, log)
	roomService := service.NewRoomService(st.rooms, st.questions, st.users, roomCache, cfg, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, userService, cfg, log),
		User:     handler.NewUserHandler(userService, log),
		Question: handler.NewQuestionHandler(questionService, log),
		Quiz:     handler.NewQuizHandler(quizService, log),
		Room:     handler.NewRoomHandler(roomService, log),
		Health:   handler.NewHealthHandler(st.pinger, rdb, cfg.StorageDriver, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

func newStores(cfg *config.Config, pool *pgxpool.Pool) (*stores, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		return &stores{
			users:     repository.NewUserRepository(pool),
			questions: repository.NewQuestionRepository(pool),
			rooms:     repository.NewRoomRepository(pool),
			results:   repository.NewResultRepository(pool),
			pinger:    pool,
		}, nil
	case config.StorageDriverMemory:
		db := memory.NewDB()
		return &stores{
			users:     db.Users(),
			questions: db.Questions(),
			rooms:     db.Rooms(),
			results:   db.Results(),
		}, nil
	}
	return nil, errors.New("unknown STORAGE_DRIVER " + cfg.StorageDriver)
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

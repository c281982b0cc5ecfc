package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/quizroom-backend/internal/config"
	"github.com/stemsi/quizroom-backend/internal/database"
	"github.com/stemsi/quizroom-backend/internal/logger"
	"github.com/stemsi/quizroom-backend/internal/model"
	"github.com/stemsi/quizroom-backend/internal/repository"
	"github.com/stemsi/quizroom-backend/internal/service"
)

func main() {
	var file string
	flag.StringVar(&file, "file", "seed/questions.json", "JSON file with an array of questions")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	data, err := os.ReadFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read seed file")
	}

	var questions []model.CreateQuestionRequest
	if err := json.Unmarshal(data, &questions); err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to decode seed file")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionService := service.NewQuestionService(repository.NewQuestionRepository(pool), log)

	fmt.Printf("=== Seeding %d Questions ===\n", len(questions))

	created, skipped := 0, 0
	for i, req := range questions {
		_, err := questionService.Create(ctx, req, uuid.Nil)
		switch {
		case err == nil:
			created++
		case errors.Is(err, model.ErrConflict):
			skipped++
		default:
			fmt.Printf("Error creating question #%d (%q): %v\n", i+1, req.QuestionText, err)
		}
	}

	fmt.Printf("\nSeed completed! Added %d, skipped %d existing, %d failed.\n",
		created, skipped, len(questions)-created-skipped)
}

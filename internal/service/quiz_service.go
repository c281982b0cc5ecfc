package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizroom-backend/internal/config"
	"github.com/stemsi/quizroom-backend/internal/model"
)

// QuizService runs the individual (single-player) quiz.
type QuizService struct {
	bank          QuestionBank
	results       ResultStore
	questionCount int
	maxAttempts   int
	log           zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(bank QuestionBank, results ResultStore, cfg *config.Config, log zerolog.Logger) *QuizService {
	return &QuizService{
		bank:          bank,
		results:       results,
		questionCount: cfg.QuizQuestionCount,
		maxAttempts:   cfg.QuizMaxAttempts,
		log:           log.With().Str("component", "quiz_service").Logger(),
	}
}

// Start samples a fresh question set for the user's next attempt.
func (s *QuizService) Start(ctx context.Context, userID uuid.UUID) (*model.QuizAttempt, error) {
	count, err := s.results.CountByUser(ctx, userID)
	if err != nil {
		return nil, storageErr(err, "count attempts")
	}
	if count >= s.maxAttempts {
		return nil, fmt.Errorf("%w: %d of %d used", model.ErrAttemptLimit, count, s.maxAttempts)
	}

	questions, err := s.bank.Sample(ctx, s.questionCount)
	if err != nil {
		return nil, storageErr(err, "sample questions")
	}
	if len(questions) < s.questionCount {
		return nil, fmt.Errorf("%w: need %d, bank has %d", model.ErrInsufficientData, s.questionCount, len(questions))
	}

	attempt := &model.QuizAttempt{
		AttemptNumber: count + 1,
		Questions:     make([]model.QuestionForPlayer, len(questions)),
	}
	for i, q := range questions {
		attempt.Questions[i] = q.ForPlayer()
	}
	return attempt, nil
}

// Submit scores answers against the bank and records the attempt. The attempt
// cap is enforced by the store at write time.
func (s *QuizService) Submit(ctx context.Context, userID uuid.UUID, answers []model.QuizAnswer) (*model.QuizSubmission, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: answers must not be empty", model.ErrValidation)
	}

	ids := make([]uuid.UUID, 0, len(answers))
	seen := make(map[uuid.UUID]struct{}, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.QuizID]; !dup {
			seen[a.QuizID] = struct{}{}
			ids = append(ids, a.QuizID)
		}
	}

	questions, err := s.bank.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storageErr(err, "load questions")
	}

	res := &model.QuizResult{UserID: userID, Answers: make([]model.CheckedAnswer, 0, len(ids))}
	scored := make(map[uuid.UUID]struct{}, len(ids))
	for _, a := range answers {
		q, ok := questions[a.QuizID]
		if !ok {
			continue
		}
		if _, dup := scored[a.QuizID]; dup {
			continue
		}
		scored[a.QuizID] = struct{}{}

		correct := model.AnswersMatch(a.SelectedAnswer, q.CorrectOption)
		if correct {
			res.Score++
		}
		res.Answers = append(res.Answers, model.CheckedAnswer{
			QuizID:         a.QuizID,
			SelectedAnswer: a.SelectedAnswer,
			IsCorrect:      correct,
		})
	}

	if err := s.results.CreateCapped(ctx, res, s.maxAttempts); err != nil {
		return nil, storageErr(err, "record attempt")
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Int("attempt", res.AttemptNumber).
		Int("score", res.Score).
		Msg("Quiz submitted")

	return &model.QuizSubmission{Score: res.Score, AttemptNumber: res.AttemptNumber, Result: res}, nil
}

// Results lists the user's attempts, newest first.
func (s *QuizService) Results(ctx context.Context, userID uuid.UUID) ([]model.QuizResult, error) {
	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageErr(err, "list results")
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no quiz results yet", model.ErrNotFound)
	}
	return results, nil
}

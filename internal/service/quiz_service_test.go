package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/quizroom-backend/internal/model"
)

func quizAnswers(t *testing.T, f *fixture, attempt *model.QuizAttempt) []model.QuizAnswer {
	t.Helper()
	answers := make([]model.QuizAnswer, len(attempt.Questions))
	for i, q := range attempt.Questions {
		full, err := f.db.Questions().GetByID(context.Background(), q.ID)
		require.NoError(t, err)
		answers[i] = model.QuizAnswer{QuizID: q.ID, SelectedAnswer: full.CorrectOption}
	}
	return answers
}

func TestQuizServiceStart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("insufficient questions", func(t *testing.T) {
		f := newFixture(t)
		f.seedQuestions(t, 1)
		u := f.register(t, "solo")
		_, err := f.quiz.Start(ctx, u.ID)
		assert.ErrorIs(t, err, model.ErrInsufficientData)
	})

	t.Run("questions carry no answers", func(t *testing.T) {
		f := newFixture(t)
		f.seedQuestions(t, 5)
		u := f.register(t, "solo")

		attempt, err := f.quiz.Start(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, attempt.AttemptNumber)
		assert.Len(t, attempt.Questions, f.cfg.QuizQuestionCount)
		assert.NotEqual(t, attempt.Questions[0].ID, attempt.Questions[1].ID)
	})
}

func TestQuizServiceSubmit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.seedQuestions(t, 5)
	u := f.register(t, "solo")

	_, err := f.quiz.Results(ctx, u.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.quiz.Submit(ctx, u.ID, nil)
	assert.ErrorIs(t, err, model.ErrValidation)

	attempt, err := f.quiz.Start(ctx, u.ID)
	require.NoError(t, err)
	answers := quizAnswers(t, f, attempt)

	// a repeated id and an unknown id change nothing
	answers = append(answers, answers[0], model.QuizAnswer{QuizID: uuid.New(), SelectedAnswer: "x"})
	answers[0].SelectedAnswer = "  " + answers[0].SelectedAnswer + " "

	sub, err := f.quiz.Submit(ctx, u.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, len(attempt.Questions), sub.Score)
	assert.Equal(t, 1, sub.AttemptNumber)
	assert.Len(t, sub.Result.Answers, len(attempt.Questions))

	sub, err = f.quiz.Submit(ctx, u.ID, []model.QuizAnswer{{QuizID: attempt.Questions[0].ID, SelectedAnswer: "wrong"}})
	require.NoError(t, err)
	assert.Zero(t, sub.Score)
	assert.Equal(t, 2, sub.AttemptNumber)

	results, err := f.quiz.Results(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].AttemptNumber)
	assert.Empty(t, results[0].Answers)
}

func TestQuizServiceAttemptLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.seedQuestions(t, 5)
	u := f.register(t, "eager")

	attempt, err := f.quiz.Start(ctx, u.ID)
	require.NoError(t, err)
	answers := quizAnswers(t, f, attempt)

	const tries = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		limited int
	)
	for range tries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.quiz.Submit(ctx, u.ID, answers)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			if assert.ErrorIs(t, err, model.ErrAttemptLimit) {
				limited++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, f.cfg.QuizMaxAttempts, ok)
	assert.Equal(t, tries-f.cfg.QuizMaxAttempts, limited)

	_, err = f.quiz.Start(ctx, u.ID)
	assert.ErrorIs(t, err, model.ErrAttemptLimit)

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Len(t, users[0].Results, f.cfg.QuizMaxAttempts)
}

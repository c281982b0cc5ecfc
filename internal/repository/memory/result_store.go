package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/quizroom-backend/internal/model"
	"github.com/stemsi/quizroom-backend/internal/repository"
)

// ResultStore is the in-memory table of individual quiz attempts.
type ResultStore struct {
	db *DB
}

func (s *ResultStore) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return len(s.db.quizResults[userID]), nil
}

func (s *ResultStore) CreateCapped(_ context.Context, res *model.QuizResult, maxAttempts int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[res.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	existing := s.db.quizResults[res.UserID]
	if len(existing) >= maxAttempts {
		return repository.ErrAttemptLimit
	}

	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	res.AttemptNumber = len(existing) + 1
	res.UserName = u.Name
	res.CreatedAt = s.db.now()

	stored := *res
	stored.Answers = append([]model.CheckedAnswer(nil), res.Answers...)
	s.db.quizResults[res.UserID] = append(existing, stored)
	return nil
}

// ListByUser returns the user's attempts, newest first, without answers.
func (s *ResultStore) ListByUser(_ context.Context, userID uuid.UUID) ([]model.QuizResult, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	stored := s.db.quizResults[userID]
	results := make([]model.QuizResult, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		res := stored[i]
		res.Answers = nil
		results = append(results, res)
	}
	return results, nil
}

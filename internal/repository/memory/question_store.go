package memory

import (
	"context"
	"math/rand/v2"
	"sort"

	"github.com/google/uuid"
	"github.com/stemsi/quizroom-backend/internal/model"
	"github.com/stemsi/quizroom-backend/internal/repository"
)

// QuestionStore is the in-memory question bank.
type QuestionStore struct {
	db *DB
}

func copyQuestion(q model.Question) model.Question {
	q.Options = append([]string(nil), q.Options...)
	if q.CreatedBy != nil {
		author := *q.CreatedBy
		q.CreatedBy = &author
	}
	return q
}

func (s *QuestionStore) Create(_ context.Context, q *model.Question) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, taken := s.db.texts[q.QuestionText]; taken {
		return repository.ErrDuplicate
	}
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	now := s.db.now()
	q.CreatedAt, q.UpdatedAt = now, now

	s.db.questions[q.ID] = &questionRow{question: copyQuestion(*q), seq: s.db.next()}
	s.db.texts[q.QuestionText] = q.ID
	return nil
}

func (s *QuestionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Question, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	row, ok := s.db.questions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	q := copyQuestion(row.question)
	return &q, nil
}

func (s *QuestionStore) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	found := make(map[uuid.UUID]model.Question, len(ids))
	for _, id := range ids {
		if row, ok := s.db.questions[id]; ok {
			found[id] = copyQuestion(row.question)
		}
	}
	return found, nil
}

// Sample draws up to n distinct questions uniformly at random.
func (s *QuestionStore) Sample(_ context.Context, n int) ([]model.Question, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	all := make([]model.Question, 0, len(s.db.questions))
	for _, row := range s.db.questions {
		all = append(all, row.question)
	}
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if n > len(all) {
		n = len(all)
	}

	sample := make([]model.Question, n)
	for i := range sample {
		sample[i] = copyQuestion(all[i])
	}
	return sample, nil
}

func (s *QuestionStore) ListPaginated(_ context.Context, limit, offset int) ([]model.Question, int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rows := make([]*questionRow, 0, len(s.db.questions))
	for _, row := range s.db.questions {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	questions := make([]model.Question, 0, len(rows))
	for _, row := range page(rows, limit, offset) {
		questions = append(questions, copyQuestion(row.question))
	}
	return questions, len(rows), nil
}

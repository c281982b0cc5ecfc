package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/stemsi/quizroom-backend/internal/model"
	"github.com/stemsi/quizroom-backend/internal/repository"
)

// UserStore is the in-memory user table.
type UserStore struct {
	db *DB
}

func (s *UserStore) Create(_ context.Context, u *model.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, taken := s.db.emails[u.Email]; taken {
		return repository.ErrDuplicate
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := s.db.now()
	u.CreatedAt, u.UpdatedAt = now, now

	cp := *u
	s.db.users[u.ID] = &cp
	s.db.emails[u.Email] = u.ID
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	id, ok := s.db.emails[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s.db.users[id]
	return &cp, nil
}

func (s *UserStore) GetNames(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if u, ok := s.db.users[id]; ok {
			names[id] = u.Name
		}
	}
	return names, nil
}

func (s *UserStore) ListWithResults(_ context.Context) ([]model.UserWithResults, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	users := make([]model.UserWithResults, 0, len(s.db.users))
	for _, u := range s.db.users {
		row := model.UserWithResults{ID: u.ID, Name: u.Name, Results: []model.ResultSummary{}}
		for _, res := range s.db.quizResults[u.ID] {
			row.Results = append(row.Results, model.ResultSummary{Score: res.Score, AttemptNumber: res.AttemptNumber})
		}
		users = append(users, row)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID.String() < users[j].ID.String()
	})
	return users, nil
}

func (s *UserStore) AppendRoomReference(_ context.Context, userID, roomID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[userID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.db.rooms[roomID]; !ok {
		return repository.ErrNotFound
	}
	for _, ref := range s.db.userRooms[userID] {
		if ref.roomID == roomID {
			return nil
		}
	}
	s.db.userRooms[userID] = append(s.db.userRooms[userID], roomRef{roomID: roomID, seq: s.db.next()})
	return nil
}

// ListRoomIDs returns the user's room list, most recently added first.
func (s *UserStore) ListRoomIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	refs := s.db.userRooms[userID]
	ids := make([]uuid.UUID, 0, len(refs))
	for i := len(refs) - 1; i >= 0; i-- {
		ids = append(ids, refs[i].roomID)
	}
	return ids, nil
}

package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/quizroom-backend/internal/model"
)

// Storage contracts. Implemented by internal/repository (Postgres) and
// internal/repository/memory. Implementations report missing rows with
// repository.ErrNotFound and unique violations with repository.ErrDuplicate.

// UserDirectory stores accounts and each user's room list.
type UserDirectory interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	ListWithResults(ctx context.Context) ([]model.UserWithResults, error)
	AppendRoomReference(ctx context.Context, userID, roomID uuid.UUID) error
	ListRoomIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// QuestionBank stores quiz questions.
type QuestionBank interface {
	Create(ctx context.Context, q *model.Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error)
	Sample(ctx context.Context, n int) ([]model.Question, error)
	ListPaginated(ctx context.Context, limit, offset int) ([]model.Question, int, error)
}

// RoomStore stores rooms. Update must run fn and persist its result
// atomically with respect to every other Update or Delete of the same room.
type RoomStore interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*model.Room) error) (*model.Room, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListPaginated(ctx context.Context, limit, offset int) ([]model.RoomSummary, int, error)
	ListSummaries(ctx context.Context, ids []uuid.UUID) ([]model.RoomSummary, error)
}

// ResultStore stores individual quiz attempts. CreateCapped must refuse with
// repository.ErrAttemptLimit once maxAttempts results exist for the user.
type ResultStore interface {
	CreateCapped(ctx context.Context, res *model.QuizResult, maxAttempts int) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.QuizResult, error)
}

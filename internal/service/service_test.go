package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/quizroom-backend/internal/config"
	"github.com/stemsi/quizroom-backend/internal/model"
	"github.com/stemsi/quizroom-backend/internal/repository/memory"
)

type fixture struct {
	db   *memory.DB
	mr   *miniredis.Miniredis
	rdb  *redis.Client
	cfg  *config.Config
	auth *AuthService
	// clock drives RoomService timestamps.
	clock *testClock

	users     *UserService
	rooms     *RoomService
	questions *QuestionService
	quiz      *QuizService
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

// Now returns the current time and advances the clock by a second.
func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		JWTExpiry:         time.Hour,
		BcryptCost:        bcrypt.MinCost,
		RoomQuestionCount: 3,
		QuizQuestionCount: 2,
		QuizMaxAttempts:   3,
		RoomCacheTTL:      time.Minute,
	}
	log := zerolog.Nop()
	db := memory.NewDB()
	clock := &testClock{now: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}

	auth := NewAuthService(cfg, rdb)
	rooms := NewRoomService(db.Rooms(), db.Questions(), db.Users(), NewRoomCache(rdb, cfg.RoomCacheTTL, log), cfg, log)
	rooms.now = clock.Now

	return &fixture{
		db:        db,
		mr:        mr,
		rdb:       rdb,
		cfg:       cfg,
		auth:      auth,
		clock:     clock,
		users:     NewUserService(db.Users(), db.Rooms(), auth, log),
		rooms:     rooms,
		questions: NewQuestionService(db.Questions(), log),
		quiz:      NewQuizService(db.Questions(), db.Results(), cfg, log),
	}
}

func (f *fixture) seedQuestions(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.questions.Create(context.Background(), model.CreateQuestionRequest{
			QuestionText:  fmt.Sprintf("What is %d + %d?", i, i),
			Options:       []byte(fmt.Sprintf(`["%d", "%d", "%d"]`, 2*i, 2*i+1, 2*i+2)),
			CorrectOption: fmt.Sprint(2 * i),
		}, uuid.Nil)
		require.NoError(t, err)
	}
}

func (f *fixture) register(t *testing.T, name string) *model.User {
	t.Helper()
	res, err := f.users.Register(context.Background(), model.RegisterRequest{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return &res.User
}

// answersFor returns the correct answers of a room as seen by its creator.
func (f *fixture) answersFor(t *testing.T, roomID uuid.UUID) []model.SubmittedAnswer {
	t.Helper()
	room, err := f.db.Rooms().GetByID(context.Background(), roomID)
	require.NoError(t, err)
	answers := make([]model.SubmittedAnswer, len(room.Questions))
	for i, q := range room.Questions {
		answers[i] = model.SubmittedAnswer{QuizID: q.QuestionID, AnswerText: q.CorrectOption}
	}
	return answers
}

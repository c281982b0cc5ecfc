package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/quizroom-backend/internal/model"
)

func TestUserServiceRegisterAndLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.users.Register(ctx, model.RegisterRequest{Name: " Alice ", Email: "Alice@Example.com ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", res.User.Name)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.NotEqual(t, "secret123", res.User.PasswordHash)
	assert.NotEmpty(t, res.Token)

	_, err = f.users.Register(ctx, model.RegisterRequest{Name: "Alice again", Email: "ALICE@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = f.users.Register(ctx, model.RegisterRequest{Name: "  ", Email: "blank@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, model.ErrValidation)

	login, err := f.users.Login(ctx, model.LoginRequest{Email: "alice@EXAMPLE.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	claims, err := f.auth.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "Alice", claims.Name)

	_, err = f.users.Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = f.users.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = f.users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserServiceMyRoomsNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.seedQuestions(t, 5)
	host := f.register(t, "host")
	guest := f.register(t, "guest")

	first, err := f.rooms.Create(ctx, model.CreateRoomRequest{RoomName: "First"}, host.ID)
	require.NoError(t, err)
	second, err := f.rooms.Create(ctx, model.CreateRoomRequest{RoomName: "Second"}, guest.ID)
	require.NoError(t, err)
	_, err = f.rooms.Join(ctx, first.ID, guest.ID)
	require.NoError(t, err)

	mine, err := f.users.MyRooms(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
	assert.Equal(t, 2, mine[1].PlayerCount)

	none, err := f.users.MyRooms(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAuthServiceRevoke(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "leaving")

	token, err := f.auth.GenerateToken(u)
	require.NoError(t, err)
	claims, err := f.auth.ValidateToken(token)
	require.NoError(t, err)

	revoked, err := f.auth.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, f.auth.Revoke(ctx, claims))
	revoked, err = f.auth.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	// the deny list entry lives as long as the token would have
	f.mr.FastForward(f.cfg.JWTExpiry + time.Second)
	revoked, err = f.auth.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestAuthServiceValidateToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	u := &model.User{ID: uuid.New(), Name: "n", Email: "n@example.com"}

	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.auth.now = func() time.Time { return issued }
	token, err := f.auth.GenerateToken(u)
	require.NoError(t, err)

	_, err = f.auth.ValidateToken(token)
	assert.NoError(t, err)

	f.auth.now = func() time.Time { return issued.Add(f.cfg.JWTExpiry + time.Minute) }
	_, err = f.auth.ValidateToken(token)
	assert.Error(t, err, "expired token")

	_, err = f.auth.ValidateToken(token + "x")
	assert.Error(t, err)
	_, err = f.auth.ValidateToken("not-a-token")
	assert.Error(t, err)

	hash, err := f.auth.HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, f.auth.CheckPassword(hash, "pw"))
	assert.ErrorIs(t, f.auth.CheckPassword(hash, "PW"), model.ErrInvalidCredentials)
}

func TestQuestionServiceCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	author, player := uuid.New(), uuid.New()

	q, err := f.questions.Create(ctx, model.CreateQuestionRequest{
		QuestionText:  "Capital of France?",
		Options:       json.RawMessage(`"Paris, Lyon, Nice"`),
		CorrectOption: " paris",
	}, author)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris", "Lyon", "Nice"}, q.Options)
	assert.Equal(t, "Paris", q.CorrectOption)
	assert.True(t, q.AuthoredBy(author))

	_, err = f.questions.Create(ctx, model.CreateQuestionRequest{
		QuestionText:  "Capital of France?",
		Options:       json.RawMessage(`["Paris", "Rome"]`),
		CorrectOption: "Paris",
	}, author)
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = f.questions.Create(ctx, model.CreateQuestionRequest{
		QuestionText:  "Capital of Italy?",
		Options:       json.RawMessage(`["Paris", "Lyon"]`),
		CorrectOption: "Rome",
	}, author)
	assert.ErrorIs(t, err, model.ErrValidation)

	got, err := f.questions.GetByID(ctx, q.ID, author)
	require.NoError(t, err)
	assert.Equal(t, q.QuestionText, got.QuestionText)
	assert.Equal(t, "Paris", got.CorrectOption)

	got, err = f.questions.GetByID(ctx, q.ID, player)
	require.NoError(t, err)
	assert.Equal(t, q.Options, got.Options)
	assert.Empty(t, got.CorrectOption, "only the author sees the answer")

	list, pagination, err := f.questions.List(ctx, 0, 0, author)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Paris", list[0].CorrectOption)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, defaultPerPage, pagination.PerPage)

	list, _, err = f.questions.List(ctx, 0, 0, player)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].CorrectOption)

	// the stored copy keeps its answer
	stored, err := f.db.Questions().GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paris", stored.CorrectOption)
}

func TestQuestionServiceImportedQuestionsHideAnswers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.seedQuestions(t, 1)

	list, _, err := f.questions.List(ctx, 1, 10, uuid.New())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].CreatedBy)
	assert.Empty(t, list[0].CorrectOption)
}

package model_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/quizroom-backend/internal/model"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func bank(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:            uuid.New(),
			QuestionText:  fmt.Sprintf("What is %d + %d?", i, i),
			Options:       []string{fmt.Sprint(i), fmt.Sprint(2 * i), fmt.Sprint(3 * i)},
			CorrectOption: fmt.Sprint(2 * i),
		}
	}
	return qs
}

func correctAnswers(r *model.Room) []model.SubmittedAnswer {
	answers := make([]model.SubmittedAnswer, len(r.Questions))
	for i, q := range r.Questions {
		answers[i] = model.SubmittedAnswer{QuizID: q.QuestionID, AnswerText: q.CorrectOption}
	}
	return answers
}

func TestTransition(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		from    model.RoomStatus
		event   model.RoomEvent
		want    model.RoomStatus
		wantErr bool
	}{
		{model.RoomStatusWaiting, model.EventStart, model.RoomStatusInProgress, false},
		{model.RoomStatusWaiting, model.EventFinish, model.RoomStatusFinished, false},
		{model.RoomStatusWaiting, model.EventComplete, model.RoomStatusWaiting, true},
		{model.RoomStatusWaiting, model.EventRestart, model.RoomStatusWaiting, true},
		{model.RoomStatusInProgress, model.EventStart, model.RoomStatusInProgress, true},
		{model.RoomStatusInProgress, model.EventComplete, model.RoomStatusCompleted, false},
		{model.RoomStatusInProgress, model.EventFinish, model.RoomStatusFinished, false},
		{model.RoomStatusCompleted, model.EventReopen, model.RoomStatusInProgress, false},
		{model.RoomStatusCompleted, model.EventRestart, model.RoomStatusInProgress, false},
		{model.RoomStatusCompleted, model.EventStart, model.RoomStatusCompleted, true},
		{model.RoomStatusFinished, model.EventFinish, model.RoomStatusFinished, false},
		{model.RoomStatusFinished, model.EventRestart, model.RoomStatusInProgress, false},
		{model.RoomStatusFinished, model.EventStart, model.RoomStatusFinished, true},
		{model.RoomStatusFinished, model.EventReopen, model.RoomStatusFinished, true},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s on %s", tc.event, tc.from), func(t *testing.T) {
			got, err := model.Transition(tc.from, tc.event)
			if tc.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidState)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, !tc.wantErr, model.CanTransition(tc.from, tc.event))
		})
	}
}

func TestNewRoom(t *testing.T) {
	t.Parallel()

	creator := uuid.New()
	questions := bank(3)
	r := model.NewRoom("Friday quiz", creator, questions, t0)

	assert.Equal(t, model.RoomStatusWaiting, r.Status)
	require.Len(t, r.Players, 1)
	p, ok := r.Player(creator)
	require.True(t, ok)
	assert.Zero(t, p.Score)
	assert.Zero(t, p.AttemptNumber)
	assert.False(t, p.Completed)
	assert.Empty(t, p.Answers)

	// later bank edits never reach the snapshot
	questions[0].Options[0] = "changed"
	questions[0].CorrectOption = "changed"
	assert.NotEqual(t, "changed", r.Questions[0].Options[0])
	assert.NotEqual(t, "changed", r.Questions[0].CorrectOption)
}

func TestRoomStart(t *testing.T) {
	t.Parallel()

	creator, guest := uuid.New(), uuid.New()

	t.Run("non creator is rejected and status unchanged", func(t *testing.T) {
		r := model.NewRoom("room", creator, bank(2), t0)
		err := r.Start(guest, t0)
		assert.ErrorIs(t, err, model.ErrUnauthorized)
		assert.Equal(t, model.RoomStatusWaiting, r.Status)
	})

	t.Run("already in progress", func(t *testing.T) {
		r := model.NewRoom("room", creator, bank(2), t0)
		require.NoError(t, r.Start(creator, t0))
		assert.ErrorIs(t, r.Start(creator, t0), model.ErrInvalidState)
		assert.Equal(t, model.RoomStatusInProgress, r.Status)
	})

	t.Run("creator is enrolled when missing", func(t *testing.T) {
		r := model.NewRoom("room", creator, bank(2), t0)
		delete(r.Players, creator)
		require.NoError(t, r.Start(creator, t0))
		_, ok := r.Player(creator)
		assert.True(t, ok)
	})

	t.Run("start on completed restarts", func(t *testing.T) {
		r := model.NewRoom("room", creator, bank(2), t0)
		require.NoError(t, r.Start(creator, t0))
		_, err := r.Submit(creator, correctAnswers(r), t0)
		require.NoError(t, err)
		require.Equal(t, model.RoomStatusCompleted, r.Status)

		require.NoError(t, r.Start(creator, t0.Add(time.Minute)))
		assert.Equal(t, model.RoomStatusInProgress, r.Status)
		p, _ := r.Player(creator)
		assert.False(t, p.Completed)
		assert.Zero(t, p.Score)
		assert.Empty(t, p.Answers)
		assert.Equal(t, 1, p.AttemptNumber)
	})

	t.Run("start on finished is rejected", func(t *testing.T) {
		r := model.NewRoom("room", creator, bank(2), t0)
		require.NoError(t, r.Finish(creator, t0))
		assert.ErrorIs(t, r.Start(creator, t0), model.ErrInvalidState)
	})
}

func TestRoomJoin(t *testing.T) {
	t.Parallel()

	creator, guest, late := uuid.New(), uuid.New(), uuid.New()
	r := model.NewRoom("room", creator, bank(2), t0)

	require.NoError(t, r.Join(guest, t0.Add(time.Second)))
	assert.ErrorIs(t, r.Join(guest, t0), model.ErrDuplicateJoin)
	assert.ErrorIs(t, r.Join(creator, t0), model.ErrDuplicateJoin)
	assert.Len(t, r.Players, 2)

	require.NoError(t, r.Start(creator, t0))
	for _, id := range []uuid.UUID{creator, guest} {
		_, err := r.Submit(id, correctAnswers(r), t0)
		require.NoError(t, err)
	}
	require.Equal(t, model.RoomStatusCompleted, r.Status)

	require.NoError(t, r.Join(late, t0.Add(time.Minute)))
	assert.Equal(t, model.RoomStatusInProgress, r.Status)

	roster := r.Roster()
	require.Len(t, roster, 3)
	assert.Equal(t, creator, roster[0].UserID)
	assert.Equal(t, late, roster[2].UserID)
}

func TestRoomSubmit(t *testing.T) {
	t.Parallel()

	creator, guest, stranger := uuid.New(), uuid.New(), uuid.New()

	newStarted := func(t *testing.T) *model.Room {
		r := model.NewRoom("room", creator, bank(4), t0)
		require.NoError(t, r.Join(guest, t0))
		require.NoError(t, r.Start(creator, t0))
		return r
	}

	t.Run("empty answers", func(t *testing.T) {
		r := newStarted(t)
		_, err := r.Submit(creator, nil, t0)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("not a member", func(t *testing.T) {
		r := newStarted(t)
		_, err := r.Submit(stranger, correctAnswers(r), t0)
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("waiting room", func(t *testing.T) {
		r := model.NewRoom("room", creator, bank(2), t0)
		_, err := r.Submit(creator, correctAnswers(r), t0)
		assert.ErrorIs(t, err, model.ErrInvalidState)
	})

	t.Run("finished room", func(t *testing.T) {
		r := newStarted(t)
		require.NoError(t, r.Finish(creator, t0))
		_, err := r.Submit(creator, correctAnswers(r), t0)
		assert.ErrorIs(t, err, model.ErrInvalidState)
	})

	t.Run("full score equals question count", func(t *testing.T) {
		r := newStarted(t)
		res, err := r.Submit(guest, correctAnswers(r), t0)
		require.NoError(t, err)
		assert.Equal(t, len(r.Questions), res.Score)
		assert.Equal(t, len(r.Questions), res.Total)
		assert.Equal(t, 1, res.AttemptNumber)
		assert.Equal(t, model.RoomStatusInProgress, res.RoomStatus)
		for _, d := range res.Details {
			assert.True(t, d.IsCorrect)
		}
	})

	t.Run("case and whitespace are ignored", func(t *testing.T) {
		r := model.NewRoom("room", creator, []model.Question{{
			ID:            uuid.New(),
			QuestionText:  "Capital of France?",
			Options:       []string{"Paris", "Lyon"},
			CorrectOption: "Paris",
		}}, t0)
		require.NoError(t, r.Start(creator, t0))
		res, err := r.Submit(creator, []model.SubmittedAnswer{
			{QuizID: r.Questions[0].QuestionID, AnswerText: "  pARIS "},
		}, t0)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Score)
	})

	t.Run("unknown and repeated ids", func(t *testing.T) {
		r := newStarted(t)
		q := r.Questions[0]
		res, err := r.Submit(guest, []model.SubmittedAnswer{
			{QuizID: q.QuestionID, AnswerText: q.CorrectOption},
			{QuizID: q.QuestionID, AnswerText: q.CorrectOption},
			{QuizID: uuid.New(), AnswerText: "whatever"},
		}, t0)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Score)
		require.Len(t, res.Details, 1)
		p, _ := r.Player(guest)
		assert.Len(t, p.Answers, 1)
	})

	t.Run("resubmission overwrites", func(t *testing.T) {
		r := newStarted(t)
		_, err := r.Submit(guest, correctAnswers(r), t0)
		require.NoError(t, err)

		res, err := r.Submit(guest, []model.SubmittedAnswer{
			{QuizID: r.Questions[0].QuestionID, AnswerText: "wrong"},
		}, t0.Add(time.Minute))
		require.NoError(t, err)
		assert.Zero(t, res.Score)
		assert.Equal(t, 2, res.AttemptNumber)
		p, _ := r.Player(guest)
		assert.Zero(t, p.Score)
		assert.Len(t, p.Answers, 1)
	})

	t.Run("room completes when every player completed", func(t *testing.T) {
		r := newStarted(t)
		_, err := r.Submit(creator, correctAnswers(r), t0)
		require.NoError(t, err)
		assert.Equal(t, model.RoomStatusInProgress, r.Status)

		res, err := r.Submit(guest, correctAnswers(r), t0)
		require.NoError(t, err)
		assert.Equal(t, model.RoomStatusCompleted, res.RoomStatus)
		assert.True(t, r.AllCompleted())

		// resubmitting in a completed room keeps it completed
		_, err = r.Submit(guest, correctAnswers(r), t0)
		require.NoError(t, err)
		assert.Equal(t, model.RoomStatusCompleted, r.Status)
	})
}

func TestRoomRestartAndFinish(t *testing.T) {
	t.Parallel()

	creator, guest := uuid.New(), uuid.New()
	r := model.NewRoom("room", creator, bank(2), t0)
	require.NoError(t, r.Join(guest, t0))

	assert.ErrorIs(t, r.Restart(creator, t0), model.ErrInvalidState)
	assert.ErrorIs(t, r.Finish(guest, t0), model.ErrUnauthorized)

	require.NoError(t, r.Start(creator, t0))
	_, err := r.Submit(guest, correctAnswers(r), t0)
	require.NoError(t, err)

	require.NoError(t, r.Finish(creator, t0))
	assert.Equal(t, model.RoomStatusFinished, r.Status)
	require.NoError(t, r.Finish(creator, t0))
	assert.Equal(t, model.RoomStatusFinished, r.Status)

	assert.ErrorIs(t, r.Restart(guest, t0), model.ErrUnauthorized)
	require.NoError(t, r.Restart(creator, t0))
	assert.Equal(t, model.RoomStatusInProgress, r.Status)

	p, _ := r.Player(guest)
	assert.False(t, p.Completed)
	assert.Zero(t, p.Score)
	assert.Nil(t, p.CompletedAt)
	assert.Equal(t, 1, p.AttemptNumber)
}

func TestLeaderboard(t *testing.T) {
	t.Parallel()

	a, b, c, idle := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	r := model.NewRoom("room", a, bank(3), t0)
	for _, id := range []uuid.UUID{b, c, idle} {
		require.NoError(t, r.Join(id, t0))
	}
	require.NoError(t, r.Start(a, t0))

	all := correctAnswers(r)
	_, err := r.Submit(b, all, t0.Add(1*time.Second))
	require.NoError(t, err)
	_, err = r.Submit(a, all[:1], t0.Add(2*time.Second))
	require.NoError(t, err)
	_, err = r.Submit(c, all, t0.Add(3*time.Second))
	require.NoError(t, err)

	board := r.Leaderboard()
	require.Len(t, board, 3)

	assert.Equal(t, b, board[0].UserID)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, c, board[1].UserID)
	assert.Equal(t, 1, board[1].Rank)
	assert.Equal(t, a, board[2].UserID)
	assert.Equal(t, 3, board[2].Rank)
	assert.Equal(t, 1, board[2].Score)
}

func TestViewFor(t *testing.T) {
	t.Parallel()

	creator, guest, stranger := uuid.New(), uuid.New(), uuid.New()
	r := model.NewRoom("room", creator, bank(2), t0)
	require.NoError(t, r.Join(guest, t0))
	require.NoError(t, r.Start(creator, t0))
	assert.False(t, r.CanReveal(creator), "the creator plays like everyone else")
	assert.Empty(t, r.ViewFor(creator).Questions[0].CorrectOption)

	_, err := r.Submit(creator, correctAnswers(r), t0)
	require.NoError(t, err)

	creatorView := r.ViewFor(creator)
	assert.True(t, creatorView.IsCreator)
	assert.NotEmpty(t, creatorView.Questions[0].CorrectOption)

	guestView := r.ViewFor(guest)
	assert.True(t, guestView.Joined)
	assert.Empty(t, guestView.Questions[0].CorrectOption)
	for _, p := range guestView.Players {
		assert.Empty(t, p.Answers)
	}

	strangerView := r.ViewFor(stranger)
	assert.False(t, strangerView.Joined)
	assert.Equal(t, 2, strangerView.PlayerCount)

	_, err = r.Submit(guest, correctAnswers(r), t0)
	require.NoError(t, err)
	assert.NotEmpty(t, r.ViewFor(guest).Questions[0].CorrectOption)

	// the stored room is never redacted
	assert.NotEmpty(t, r.Questions[0].CorrectOption)

	// a creator who is not on the roster is only watching
	watched := model.NewRoom("watched", creator, bank(2), t0)
	delete(watched.Players, creator)
	assert.True(t, watched.CanReveal(creator))
	assert.False(t, watched.CanReveal(stranger))

	require.NoError(t, r.Restart(creator, t0))
	assert.False(t, r.CanReveal(guest), "restarting hides the answers again")
}

func TestClone(t *testing.T) {
	t.Parallel()

	creator := uuid.New()
	r := model.NewRoom("room", creator, bank(2), t0)
	require.NoError(t, r.Start(creator, t0))
	_, err := r.Submit(creator, correctAnswers(r), t0)
	require.NoError(t, err)

	c := r.Clone()
	c.Players[creator].Score = 99
	c.Players[creator].Answers[0].AnswerText = "mutated"
	c.Questions[0].Options[0] = "mutated"
	c.Status = model.RoomStatusFinished

	p, _ := r.Player(creator)
	assert.Equal(t, 2, p.Score)
	assert.NotEqual(t, "mutated", p.Answers[0].AnswerText)
	assert.NotEqual(t, "mutated", r.Questions[0].Options[0])
	assert.Equal(t, model.RoomStatusCompleted, r.Status)
}

func TestParseOptions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		description string
		raw         string
		want        []string
		wantErr     bool
	}{
		{"array", `["a", " b ", "c"]`, []string{"a", "b", "c"}, false},
		{"comma separated string", `"Paris, Lyon ,Nice"`, []string{"Paris", "Lyon", "Nice"}, false},
		{"blank entries dropped", `["a", "  ", "b"]`, []string{"a", "b"}, false},
		{"single option", `["only"]`, nil, true},
		{"wrong type", `42`, nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got, err := model.ParseOptions(json.RawMessage(tc.raw))
			if tc.wantErr {
				assert.ErrorIs(t, err, model.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAnswersMatch(t *testing.T) {
	t.Parallel()

	assert.True(t, model.AnswersMatch(" Paris", "paris "))
	assert.True(t, model.AnswersMatch("ÉTÉ", "été"))
	assert.False(t, model.AnswersMatch("Pari", "Paris"))
	assert.False(t, model.AnswersMatch("", "Paris"))
}

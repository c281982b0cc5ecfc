package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// QuestionSnapshot is a copy of a bank question taken when the room was
// created. Later edits to the bank never reach it.
type QuestionSnapshot struct {
	QuestionID    uuid.UUID `json:"question_id"`
	QuestionText  string    `json:"question_text"`
	Options       []string  `json:"options"`
	CorrectOption string    `json:"correct_option,omitempty"`
}

// PlayerAnswer is one stored answer of a player.
type PlayerAnswer struct {
	QuestionID uuid.UUID `json:"question_id"`
	AnswerText string    `json:"answer"`
}

// Player is the per-user state inside a room.
type Player struct {
	UserID        uuid.UUID      `json:"user_id"`
	Score         int            `json:"score"`
	AttemptNumber int            `json:"attempt_number"`
	Completed     bool           `json:"completed"`
	Answers       []PlayerAnswer `json:"answers"`
	JoinedAt      time.Time      `json:"joined_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
}

func newPlayer(userID uuid.UUID, now time.Time) *Player {
	return &Player{UserID: userID, Answers: []PlayerAnswer{}, JoinedAt: now}
}

func (p *Player) reset() {
	p.Score = 0
	p.Completed = false
	p.Answers = []PlayerAnswer{}
	p.CompletedAt = nil
}

// Room is the aggregate root of a shared quiz session.
type Room struct {
	ID        uuid.UUID             `json:"id"`
	RoomName  string                `json:"room_name"`
	CreatedBy uuid.UUID             `json:"created_by"`
	Questions []QuestionSnapshot    `json:"questions"`
	Players   map[uuid.UUID]*Player `json:"players"`
	Status    RoomStatus            `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`

	byID map[uuid.UUID]int // question id -> index in Questions
}

// NewRoom snapshots questions and registers the creator as the first player.
func NewRoom(name string, creatorID uuid.UUID, questions []Question, now time.Time) *Room {
	snapshots := make([]QuestionSnapshot, len(questions))
	for i, q := range questions {
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		snapshots[i] = QuestionSnapshot{
			QuestionID:    q.ID,
			QuestionText:  q.QuestionText,
			Options:       options,
			CorrectOption: q.CorrectOption,
		}
	}

	return &Room{
		ID:        uuid.New(),
		RoomName:  name,
		CreatedBy: creatorID,
		Questions: snapshots,
		Players:   map[uuid.UUID]*Player{creatorID: newPlayer(creatorID, now)},
		Status:    RoomStatusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsCreator reports whether userID created the room.
func (r *Room) IsCreator(userID uuid.UUID) bool {
	return r.CreatedBy == userID
}

// Player returns the record of userID, if any.
func (r *Room) Player(userID uuid.UUID) (*Player, bool) {
	p, ok := r.Players[userID]
	return p, ok
}

// Question returns the snapshot with the given id.
func (r *Room) Question(id uuid.UUID) (QuestionSnapshot, bool) {
	if r.byID == nil || len(r.byID) != len(r.Questions) {
		r.byID = make(map[uuid.UUID]int, len(r.Questions))
		for i, q := range r.Questions {
			r.byID[q.QuestionID] = i
		}
	}
	i, ok := r.byID[id]
	if !ok {
		return QuestionSnapshot{}, false
	}
	return r.Questions[i], true
}

// Roster returns the players ordered by join time.
func (r *Room) Roster() []*Player {
	players := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if !players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].JoinedAt.Before(players[j].JoinedAt)
		}
		return players[i].UserID.String() < players[j].UserID.String()
	})
	return players
}

func (r *Room) apply(event RoomEvent, now time.Time) error {
	next, err := Transition(r.Status, event)
	if err != nil {
		return err
	}
	r.Status = next
	r.UpdatedAt = now
	return nil
}

func (r *Room) enroll(userID uuid.UUID, now time.Time) *Player {
	if p, ok := r.Players[userID]; ok {
		return p
	}
	p := newPlayer(userID, now)
	r.Players[userID] = p
	return p
}

// Join adds userID to the roster. A completed room is reopened so the late
// joiner can play.
func (r *Room) Join(userID uuid.UUID, now time.Time) error {
	if _, ok := r.Players[userID]; ok {
		return fmt.Errorf("%w: room %s", ErrDuplicateJoin, r.ID)
	}
	r.enroll(userID, now)
	r.UpdatedAt = now
	if r.Status == RoomStatusCompleted {
		return r.apply(EventReopen, now)
	}
	return nil
}

// Start moves a waiting room into play. On a completed room it performs a
// restart. The creator is enrolled if missing.
func (r *Room) Start(requesterID uuid.UUID, now time.Time) error {
	if !r.IsCreator(requesterID) {
		return fmt.Errorf("%w: only the creator can start room %s", ErrUnauthorized, r.ID)
	}
	if r.Status == RoomStatusCompleted {
		return r.restart(now)
	}
	if err := r.apply(EventStart, now); err != nil {
		return err
	}
	r.enroll(r.CreatedBy, now)
	return nil
}

// Restart begins a new round: every player record is reset and the room is
// back in play. Attempt numbers are kept.
func (r *Room) Restart(requesterID uuid.UUID, now time.Time) error {
	if !r.IsCreator(requesterID) {
		return fmt.Errorf("%w: only the creator can restart room %s", ErrUnauthorized, r.ID)
	}
	return r.restart(now)
}

func (r *Room) restart(now time.Time) error {
	if err := r.apply(EventRestart, now); err != nil {
		return err
	}
	for _, p := range r.Players {
		p.reset()
	}
	r.enroll(r.CreatedBy, now)
	return nil
}

// Finish closes the room to submissions regardless of individual completion.
func (r *Room) Finish(requesterID uuid.UUID, now time.Time) error {
	if !r.IsCreator(requesterID) {
		return fmt.Errorf("%w: only the creator can finish room %s", ErrUnauthorized, r.ID)
	}
	return r.apply(EventFinish, now)
}

// SubmittedAnswer is one entry of a room submission.
type SubmittedAnswer struct {
	QuizID     uuid.UUID `json:"quiz_id" binding:"required"`
	AnswerText string    `json:"answer" binding:"max=500"`
}

// AnswerCheck is the per-question feedback returned after a submission.
type AnswerCheck struct {
	QuizID    uuid.UUID `json:"quiz_id"`
	Submitted string    `json:"submitted"`
	Correct   string    `json:"correct"`
	IsCorrect bool      `json:"is_correct"`
}

// SubmitResult is the outcome of Room.Submit.
type SubmitResult struct {
	Score         int           `json:"score"`
	Total         int           `json:"total"`
	AttemptNumber int           `json:"attempt_number"`
	RoomStatus    RoomStatus    `json:"room_status"`
	Details       []AnswerCheck `json:"checked_answers"`
}

// Submit scores answers for userID against the snapshot, replaces that
// player's record and recomputes the room status. Answers referencing unknown
// questions are skipped; repeated question ids only count once.
func (r *Room) Submit(userID uuid.UUID, answers []SubmittedAnswer, now time.Time) (*SubmitResult, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: answers must not be empty", ErrValidation)
	}
	player, ok := r.Players[userID]
	if !ok {
		return nil, fmt.Errorf("%w: join room %s before submitting", ErrForbidden, r.ID)
	}
	if !r.Status.AcceptsSubmissions() {
		return nil, fmt.Errorf("%w: room %s is %s and does not accept submissions", ErrInvalidState, r.ID, r.Status)
	}

	seen := make(map[uuid.UUID]struct{}, len(answers))
	stored := make([]PlayerAnswer, 0, len(answers))
	details := make([]AnswerCheck, 0, len(answers))
	score := 0

	for _, ans := range answers {
		if _, dup := seen[ans.QuizID]; dup {
			continue
		}
		seen[ans.QuizID] = struct{}{}

		q, ok := r.Question(ans.QuizID)
		if !ok {
			continue
		}

		correct := AnswersMatch(ans.AnswerText, q.CorrectOption)
		if correct {
			score++
		}
		stored = append(stored, PlayerAnswer{QuestionID: ans.QuizID, AnswerText: ans.AnswerText})
		details = append(details, AnswerCheck{
			QuizID:    ans.QuizID,
			Submitted: ans.AnswerText,
			Correct:   q.CorrectOption,
			IsCorrect: correct,
		})
	}

	completedAt := now
	player.Score = score
	player.Completed = true
	player.AttemptNumber++
	player.Answers = stored
	player.CompletedAt = &completedAt
	r.UpdatedAt = now

	if err := r.recomputeStatus(now); err != nil {
		return nil, err
	}

	return &SubmitResult{
		Score:         score,
		Total:         len(r.Questions),
		AttemptNumber: player.AttemptNumber,
		RoomStatus:    r.Status,
		Details:       details,
	}, nil
}

// AllCompleted reports whether every registered player has completed.
func (r *Room) AllCompleted() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if !p.Completed {
			return false
		}
	}
	return true
}

func (r *Room) recomputeStatus(now time.Time) error {
	switch {
	case r.AllCompleted() && CanTransition(r.Status, EventComplete):
		return r.apply(EventComplete, now)
	case !r.AllCompleted() && r.Status == RoomStatusCompleted:
		return r.apply(EventReopen, now)
	}
	return nil
}

// RoomSummary is the list view of a room.
type RoomSummary struct {
	ID          uuid.UUID  `json:"id"`
	RoomName    string     `json:"room_name"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	Status      RoomStatus `json:"status"`
	PlayerCount int        `json:"player_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Summary returns the list view of r.
func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:          r.ID,
		RoomName:    r.RoomName,
		CreatedBy:   r.CreatedBy,
		Status:      r.Status,
		PlayerCount: len(r.Players),
		CreatedAt:   r.CreatedAt,
	}
}

// Clone returns a deep copy of r.
func (r *Room) Clone() *Room {
	c := *r
	c.byID = nil
	c.Questions = make([]QuestionSnapshot, len(r.Questions))
	for i, q := range r.Questions {
		q.Options = append([]string(nil), q.Options...)
		c.Questions[i] = q
	}
	c.Players = make(map[uuid.UUID]*Player, len(r.Players))
	for id, p := range r.Players {
		cp := *p
		cp.Answers = append([]PlayerAnswer{}, p.Answers...)
		if p.CompletedAt != nil {
			t := *p.CompletedAt
			cp.CompletedAt = &t
		}
		c.Players[id] = &cp
	}
	return &c
}

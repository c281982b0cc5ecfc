package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizroom-backend/internal/config"
	"github.com/stemsi/quizroom-backend/internal/model"
	"github.com/stemsi/quizroom-backend/internal/repository"
	"github.com/stemsi/quizroom-backend/internal/response"
)

const (
	referenceAttempts = 3
	referenceBackoff  = 50 * time.Millisecond
)

// RoomService runs the room registry and the session state machine. Every
// mutation goes through RoomStore.Update, so concurrent requests against one
// room are applied one after another.
type RoomService struct {
	rooms         RoomStore
	bank          QuestionBank
	users         UserDirectory
	cache         *RoomCache
	questionCount int
	log           zerolog.Logger
	now           func() time.Time
}

// NewRoomService creates a new RoomService. cache may be nil.
func NewRoomService(
	rooms RoomStore,
	bank QuestionBank,
	users UserDirectory,
	cache *RoomCache,
	cfg *config.Config,
	log zerolog.Logger,
) *RoomService {
	return &RoomService{
		rooms:         rooms,
		bank:          bank,
		users:         users,
		cache:         cache,
		questionCount: cfg.RoomQuestionCount,
		log:           log.With().Str("component", "room_service").Logger(),
		now:           time.Now,
	}
}

// ─── Registry ───────────────────────────────────────────────────────────────

// Create samples the room's questions, registers the creator as the first
// player and records the room on the creator's room list.
func (s *RoomService) Create(ctx context.Context, req model.CreateRoomRequest, creatorID uuid.UUID) (*model.RoomView, error) {
	name := strings.TrimSpace(req.RoomName)
	if name == "" {
		return nil, fmt.Errorf("%w: room name must not be blank", model.ErrValidation)
	}

	questions, err := s.bank.Sample(ctx, s.questionCount)
	if err != nil {
		return nil, storageErr(err, "sample questions")
	}
	if len(questions) < s.questionCount {
		return nil, fmt.Errorf("%w: need %d, bank has %d", model.ErrInsufficientData, s.questionCount, len(questions))
	}

	room := model.NewRoom(name, creatorID, questions, s.now().UTC())
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, storageErr(err, fmt.Sprintf("room name %q already taken", name))
	}
	s.appendReference(ctx, creatorID, room.ID)

	s.log.Info().
		Str("room_id", room.ID.String()).
		Str("creator_id", creatorID.String()).
		Int("questions", len(room.Questions)).
		Msg("Room created")

	return s.render(ctx, room, creatorID), nil
}

// Delete removes a room. Only its creator may do so.
func (s *RoomService) Delete(ctx context.Context, roomID, requesterID uuid.UUID) error {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return storageErr(err, "room "+roomID.String())
	}
	if !room.IsCreator(requesterID) {
		return fmt.Errorf("%w: only the creator can delete room %s", model.ErrUnauthorized, roomID)
	}

	if err := s.rooms.Delete(ctx, roomID); err != nil {
		return storageErr(err, "room "+roomID.String())
	}
	s.cache.Invalidate(ctx, roomID)

	s.log.Info().Str("room_id", roomID.String()).Msg("Room deleted")
	return nil
}

// List returns one page of room summaries, newest first.
func (s *RoomService) List(ctx context.Context, page, perPage int) (*model.RoomPage, *response.Pagination, error) {
	page, perPage, limit, offset := normalizePage(page, perPage)

	rooms, total, err := s.rooms.ListPaginated(ctx, limit, offset)
	if err != nil {
		return nil, nil, storageErr(err, "list rooms")
	}
	if rooms == nil {
		rooms = []model.RoomSummary{}
	}

	pagination := response.NewPagination(page, perPage, total)
	return &model.RoomPage{
		Rooms:      rooms,
		TotalPages: pagination.TotalPages,
		TotalRooms: total,
	}, pagination, nil
}

// ─── Session ────────────────────────────────────────────────────────────────

// Get returns the room as seen by requesterID. Non-members may only look at
// rooms that are still open.
func (s *RoomService) Get(ctx context.Context, roomID, requesterID uuid.UUID) (*model.RoomView, error) {
	room, err := s.visible(ctx, roomID, requesterID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, room, requesterID), nil
}

// Leaderboard returns the ranked, completed players of a room.
func (s *RoomService) Leaderboard(ctx context.Context, roomID, requesterID uuid.UUID) ([]model.LeaderboardEntry, error) {
	room, err := s.visible(ctx, roomID, requesterID)
	if err != nil {
		return nil, err
	}
	entries := room.Leaderboard()
	s.fillNames(ctx, entries)
	return entries, nil
}

// Join adds userID to the room's roster.
func (s *RoomService) Join(ctx context.Context, roomID, userID uuid.UUID) (*model.RoomView, error) {
	room, err := s.mutate(ctx, roomID, func(r *model.Room) error {
		return r.Join(userID, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	s.appendReference(ctx, userID, roomID)

	s.log.Info().Str("room_id", roomID.String()).Str("user_id", userID.String()).Msg("Player joined")
	return s.render(ctx, room, userID), nil
}

// Start moves the room into play.
func (s *RoomService) Start(ctx context.Context, roomID, requesterID uuid.UUID) (*model.RoomView, error) {
	return s.transition(ctx, roomID, requesterID, "started", func(r *model.Room, now time.Time) error {
		return r.Start(requesterID, now)
	})
}

// Restart resets every player record and puts the room back in play.
func (s *RoomService) Restart(ctx context.Context, roomID, requesterID uuid.UUID) (*model.RoomView, error) {
	return s.transition(ctx, roomID, requesterID, "restarted", func(r *model.Room, now time.Time) error {
		return r.Restart(requesterID, now)
	})
}

// Finish closes the room to further submissions.
func (s *RoomService) Finish(ctx context.Context, roomID, requesterID uuid.UUID) (*model.RoomView, error) {
	return s.transition(ctx, roomID, requesterID, "finished", func(r *model.Room, now time.Time) error {
		return r.Finish(requesterID, now)
	})
}

// Submit scores userID's answers against the room's question snapshot.
func (s *RoomService) Submit(ctx context.Context, roomID, userID uuid.UUID, answers []model.SubmittedAnswer) (*model.SubmitResult, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: answers must not be empty", model.ErrValidation)
	}

	var result *model.SubmitResult
	_, err := s.mutate(ctx, roomID, func(r *model.Room) error {
		res, err := r.Submit(userID, answers, s.now().UTC())
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("room_id", roomID.String()).
		Str("user_id", userID.String()).
		Int("score", result.Score).
		Str("status", string(result.RoomStatus)).
		Msg("Room answers submitted")
	return result, nil
}

// ─── Internal helpers ───────────────────────────────────────────────────────

func (s *RoomService) transition(
	ctx context.Context,
	roomID, requesterID uuid.UUID,
	verb string,
	fn func(*model.Room, time.Time) error,
) (*model.RoomView, error) {
	room, err := s.mutate(ctx, roomID, func(r *model.Room) error {
		return fn(r, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("room_id", roomID.String()).Str("status", string(room.Status)).Msgf("Room %s", verb)
	return s.render(ctx, room, requesterID), nil
}

// mutate applies fn under the store's per-room serialisation and invalidates
// the cached document afterwards.
func (s *RoomService) mutate(ctx context.Context, roomID uuid.UUID, fn func(*model.Room) error) (*model.Room, error) {
	room, err := s.rooms.Update(ctx, roomID, fn)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, storageErr(err, "room "+roomID.String())
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, roomID)
	return room, nil
}

func (s *RoomService) load(ctx context.Context, roomID uuid.UUID) (*model.Room, error) {
	if room, ok := s.cache.Get(ctx, roomID); ok {
		return room, nil
	}
	gen := s.cache.Generation(ctx, roomID)
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, storageErr(err, "room "+roomID.String())
	}
	s.cache.Set(ctx, room, gen)
	return room, nil
}

func (s *RoomService) visible(ctx context.Context, roomID, requesterID uuid.UUID) (*model.Room, error) {
	room, err := s.load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if _, member := room.Player(requesterID); !member && !room.Status.Open() {
		return nil, fmt.Errorf("%w: room %s is %s", model.ErrForbidden, roomID, room.Status)
	}
	return room, nil
}

func (s *RoomService) render(ctx context.Context, room *model.Room, requesterID uuid.UUID) *model.RoomView {
	view := room.ViewFor(requesterID)
	s.fillNames(ctx, view.Leaderboard)
	return &view
}

func (s *RoomService) fillNames(ctx context.Context, entries []model.LeaderboardEntry) {
	if len(entries) == 0 {
		return
	}
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	names, err := s.users.GetNames(ctx, ids)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to resolve leaderboard names")
		return
	}
	for i := range entries {
		entries[i].Name = names[entries[i].UserID]
	}
}

// appendReference records roomID on the user's room list after the room write
// has succeeded, retrying transient failures. A room that vanished in the
// meantime is not retried.
func (s *RoomService) appendReference(ctx context.Context, userID, roomID uuid.UUID) {
	err := s.tryAppendReference(ctx, userID, roomID)
	if err == nil {
		return
	}
	s.log.Error().Err(err).
		Str("room_id", roomID.String()).
		Str("user_id", userID.String()).
		Msg("Failed to record room on user's room list")
}

func (s *RoomService) tryAppendReference(ctx context.Context, userID, roomID uuid.UUID) error {
	var err error
	for attempt := 1; attempt <= referenceAttempts; attempt++ {
		if err = s.users.AppendRoomReference(ctx, userID, roomID); err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrNotFound) || attempt == referenceAttempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(referenceBackoff * time.Duration(attempt)):
		}
	}
	return err
}

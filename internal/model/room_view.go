package model

import (
	"time"

	"github.com/google/uuid"
)

// RoomView is the room document as shown to one requester.
type RoomView struct {
	ID          uuid.UUID          `json:"id"`
	RoomName    string             `json:"room_name"`
	CreatedBy   uuid.UUID          `json:"created_by"`
	Status      RoomStatus         `json:"status"`
	Questions   []QuestionSnapshot `json:"questions"`
	Players     []Player           `json:"players"`
	PlayerCount int                `json:"player_count"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	IsCreator   bool               `json:"is_creator"`
	Joined      bool               `json:"joined"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CanReveal reports whether requesterID may see correct options and other
// players' answers. Players, the creator included, must complete the room
// first; a creator missing from the roster is not playing and may look.
func (r *Room) CanReveal(requesterID uuid.UUID) bool {
	p, ok := r.Players[requesterID]
	if !ok {
		return r.IsCreator(requesterID)
	}
	return p.Completed
}

// ViewFor renders r for requesterID, redacting answers it may not see yet.
func (r *Room) ViewFor(requesterID uuid.UUID) RoomView {
	reveal := r.CanReveal(requesterID)

	questions := make([]QuestionSnapshot, len(r.Questions))
	for i, q := range r.Questions {
		if !reveal {
			q.CorrectOption = ""
		}
		questions[i] = q
	}

	roster := r.Roster()
	players := make([]Player, len(roster))
	for i, p := range roster {
		players[i] = *p
		if !reveal && p.UserID != requesterID {
			players[i].Answers = []PlayerAnswer{}
		}
	}

	_, joined := r.Players[requesterID]

	return RoomView{
		ID:          r.ID,
		RoomName:    r.RoomName,
		CreatedBy:   r.CreatedBy,
		Status:      r.Status,
		Questions:   questions,
		Players:     players,
		PlayerCount: len(r.Players),
		Leaderboard: r.Leaderboard(),
		IsCreator:   r.IsCreator(requesterID),
		Joined:      joined,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// CreateRoomRequest is the payload for creating a room.
type CreateRoomRequest struct {
	RoomName string `json:"room_name" binding:"required,notblank,min=3,max=100"`
}

// SubmitRoomAnswersRequest is the payload for a room submission.
type SubmitRoomAnswersRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"required,min=1,max=100,dive"`
}

// RoomPage is one page of the room listing.
type RoomPage struct {
	Rooms      []RoomSummary `json:"rooms"`
	TotalPages int           `json:"total_pages"`
	TotalRooms int           `json:"total_rooms"`
}

package model

import "fmt"

// RoomStatus enumerates the lifecycle states of a room.
type RoomStatus string

const (
	RoomStatusWaiting    RoomStatus = "waiting"
	RoomStatusInProgress RoomStatus = "inprogress"
	RoomStatusCompleted  RoomStatus = "completed"
	RoomStatusFinished   RoomStatus = "finished"
)

// Valid reports whether s is a known status.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomStatusWaiting, RoomStatusInProgress, RoomStatusCompleted, RoomStatusFinished:
		return true
	}
	return false
}

// RoomEvent is a trigger that may move a room to another status.
type RoomEvent string

const (
	// EventStart is the creator starting a waiting room.
	EventStart RoomEvent = "start"
	// EventComplete is derived: every player of the roster completed.
	EventComplete RoomEvent = "complete"
	// EventReopen is derived: a late joiner or an incomplete roster reopens a completed room.
	EventReopen RoomEvent = "reopen"
	// EventFinish is the creator closing the room to submissions.
	EventFinish RoomEvent = "finish"
	// EventRestart is the creator starting a new round; player records are reset.
	EventRestart RoomEvent = "restart"
)

// roomTransitions is the single source of truth for legal status changes.
var roomTransitions = map[RoomStatus]map[RoomEvent]RoomStatus{
	RoomStatusWaiting: {
		EventStart:  RoomStatusInProgress,
		EventFinish: RoomStatusFinished,
	},
	RoomStatusInProgress: {
		EventComplete: RoomStatusCompleted,
		EventFinish:   RoomStatusFinished,
	},
	RoomStatusCompleted: {
		EventComplete: RoomStatusCompleted,
		EventReopen:   RoomStatusInProgress,
		EventRestart:  RoomStatusInProgress,
		EventFinish:   RoomStatusFinished,
	},
	RoomStatusFinished: {
		EventFinish:  RoomStatusFinished,
		EventRestart: RoomStatusInProgress,
	},
}

// Transition returns the status reached from `from` on event, or an
// ErrInvalidState error when the table has no such edge.
func Transition(from RoomStatus, event RoomEvent) (RoomStatus, error) {
	if next, ok := roomTransitions[from][event]; ok {
		return next, nil
	}
	return from, fmt.Errorf("%w: cannot %s a %s room", ErrInvalidState, event, from)
}

// CanTransition reports whether event is legal from status from.
func CanTransition(from RoomStatus, event RoomEvent) bool {
	_, ok := roomTransitions[from][event]
	return ok
}

// AcceptsSubmissions reports whether players may submit answers in status s.
func (s RoomStatus) AcceptsSubmissions() bool {
	return s == RoomStatusInProgress || s == RoomStatusCompleted
}

// Open reports whether non-members may view a room in status s.
func (s RoomStatus) Open() bool {
	return s == RoomStatusWaiting || s == RoomStatusInProgress
}

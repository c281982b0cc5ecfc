// Package memory is an in-process implementation of the stores used by the
// services. One mutex guards every table so multi-table changes, like a room
// delete removing user references, are atomic to readers.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/quizroom-backend/internal/model"
)

// DB holds all tables.
type DB struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	users       map[uuid.UUID]*model.User
	emails      map[string]uuid.UUID
	userRooms   map[uuid.UUID][]roomRef
	questions   map[uuid.UUID]*questionRow
	texts       map[string]uuid.UUID
	rooms       map[uuid.UUID]*roomRow
	roomNames   map[string]uuid.UUID
	quizResults map[uuid.UUID][]model.QuizResult
}

type roomRef struct {
	roomID uuid.UUID
	seq    int64
}

type questionRow struct {
	question model.Question
	seq      int64
}

type roomRow struct {
	room *model.Room
	seq  int64
}

// NewDB returns an empty database.
func NewDB() *DB {
	return &DB{
		now:         time.Now,
		users:       make(map[uuid.UUID]*model.User),
		emails:      make(map[string]uuid.UUID),
		userRooms:   make(map[uuid.UUID][]roomRef),
		questions:   make(map[uuid.UUID]*questionRow),
		texts:       make(map[string]uuid.UUID),
		rooms:       make(map[uuid.UUID]*roomRow),
		roomNames:   make(map[string]uuid.UUID),
		quizResults: make(map[uuid.UUID][]model.QuizResult),
	}
}

// Users returns the user table.
func (db *DB) Users() *UserStore { return &UserStore{db: db} }

// Questions returns the question bank.
func (db *DB) Questions() *QuestionStore { return &QuestionStore{db: db} }

// Rooms returns the room table.
func (db *DB) Rooms() *RoomStore { return &RoomStore{db: db} }

// Results returns the individual quiz results table.
func (db *DB) Results() *ResultStore { return &ResultStore{db: db} }

// next must be called with mu held for writing.
func (db *DB) next() int64 {
	db.seq++
	return db.seq
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

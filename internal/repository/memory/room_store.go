package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/stemsi/quizroom-backend/internal/model"
	"github.com/stemsi/quizroom-backend/internal/repository"
)

// RoomStore is the in-memory room table. Rooms are stored as private copies;
// callers never share a pointer with the table.
type RoomStore struct {
	db *DB
}

func (s *RoomStore) Create(_ context.Context, room *model.Room) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, taken := s.db.roomNames[room.RoomName]; taken {
		return repository.ErrDuplicate
	}
	if _, ok := s.db.rooms[room.ID]; ok {
		return repository.ErrDuplicate
	}
	s.db.rooms[room.ID] = &roomRow{room: room.Clone(), seq: s.db.next()}
	s.db.roomNames[room.RoomName] = room.ID
	return nil
}

func (s *RoomStore) GetByID(_ context.Context, id uuid.UUID) (*model.Room, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	row, ok := s.db.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return row.room.Clone(), nil
}

// Update applies fn to a copy of the room under the write lock and stores the
// copy only if fn succeeds.
func (s *RoomStore) Update(_ context.Context, id uuid.UUID, fn func(*model.Room) error) (*model.Room, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	row, ok := s.db.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	room := row.room.Clone()
	if err := fn(room); err != nil {
		return nil, err
	}
	row.room = room.Clone()
	return room, nil
}

// Delete removes the room and strips it from every user's room list.
func (s *RoomStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	row, ok := s.db.rooms[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(s.db.roomNames, row.room.RoomName)
	delete(s.db.rooms, id)

	for userID, refs := range s.db.userRooms {
		kept := refs[:0]
		for _, ref := range refs {
			if ref.roomID != id {
				kept = append(kept, ref)
			}
		}
		s.db.userRooms[userID] = kept
	}
	return nil
}

func (s *RoomStore) sortedRows() []*roomRow {
	rows := make([]*roomRow, 0, len(s.db.rooms))
	for _, row := range s.db.rooms {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].room.CreatedAt, rows[j].room.CreatedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return rows[i].seq > rows[j].seq
	})
	return rows
}

func (s *RoomStore) ListPaginated(_ context.Context, limit, offset int) ([]model.RoomSummary, int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rows := s.sortedRows()
	rooms := make([]model.RoomSummary, 0, limit)
	for _, row := range page(rows, limit, offset) {
		rooms = append(rooms, row.room.Summary())
	}
	return rooms, len(rows), nil
}

func (s *RoomStore) ListSummaries(_ context.Context, ids []uuid.UUID) ([]model.RoomSummary, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	rooms := []model.RoomSummary{}
	for _, row := range s.sortedRows() {
		if _, ok := wanted[row.room.ID]; ok {
			rooms = append(rooms, row.room.Summary())
		}
	}
	return rooms, nil
}

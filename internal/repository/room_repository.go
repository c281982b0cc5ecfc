package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/quizroom-backend/internal/model"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RoomRepository stores rooms and their player records.
type RoomRepository struct {
	pool *pgxpool.Pool
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// Create persists a new room with its initial roster.
// Returns ErrDuplicate if the room name is taken.
func (r *RoomRepository) Create(ctx context.Context, room *model.Room) error {
	questions, err := json.Marshal(room.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}

	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO rooms (id, room_name, created_by, questions, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			room.ID, room.RoomName, room.CreatedBy, questions, room.Status, room.CreatedAt, room.UpdatedAt)
		if err != nil {
			return translate(err)
		}
		return upsertPlayers(ctx, tx, room)
	})
}

// GetByID loads a room with its full roster.
func (r *RoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	return loadRoom(ctx, r.pool, id, false)
}

// Update runs fn against the locked room and writes the result back in the
// same transaction. Concurrent updates of one room are serialised by the row
// lock. If fn returns an error nothing is written.
func (r *RoomRepository) Update(ctx context.Context, id uuid.UUID, fn func(*model.Room) error) (*model.Room, error) {
	var updated *model.Room
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		room, err := loadRoom(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := fn(room); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE rooms SET status = $2, updated_at = $3 WHERE id = $1`,
			room.ID, room.Status, room.UpdatedAt)
		if err != nil {
			return err
		}
		if err := upsertPlayers(ctx, tx, room); err != nil {
			return err
		}
		updated = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the room, its roster and every user's reference to it in a
// single transaction.
func (r *RoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_rooms WHERE room_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

const summarySelect = `SELECT r.id, r.room_name, r.created_by, r.status, r.created_at,
	        (SELECT COUNT(*) FROM room_players p WHERE p.room_id = r.id)
	 FROM rooms r`

func collectSummaries(rows pgx.Rows) ([]model.RoomSummary, error) {
	defer rows.Close()
	rooms := []model.RoomSummary{}
	for rows.Next() {
		var s model.RoomSummary
		if err := rows.Scan(&s.ID, &s.RoomName, &s.CreatedBy, &s.Status, &s.CreatedAt, &s.PlayerCount); err != nil {
			return nil, err
		}
		rooms = append(rooms, s)
	}
	return rooms, rows.Err()
}

// ListPaginated retrieves room summaries, newest first, with the total count.
func (r *RoomRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.RoomSummary, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		summarySelect+` ORDER BY r.created_at DESC, r.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	rooms, err := collectSummaries(rows)
	if err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

// ListSummaries retrieves the summaries of the given rooms, newest first.
// Unknown IDs are skipped.
func (r *RoomRepository) ListSummaries(ctx context.Context, ids []uuid.UUID) ([]model.RoomSummary, error) {
	if len(ids) == 0 {
		return []model.RoomSummary{}, nil
	}
	rows, err := r.pool.Query(ctx,
		summarySelect+` WHERE r.id = ANY($1) ORDER BY r.created_at DESC, r.id`, ids)
	if err != nil {
		return nil, err
	}
	return collectSummaries(rows)
}

func loadRoom(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*model.Room, error) {
	query := `SELECT id, room_name, created_by, questions, status, created_at, updated_at
	          FROM rooms WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	room := &model.Room{Players: make(map[uuid.UUID]*model.Player)}
	var questions []byte
	err := q.QueryRow(ctx, query, id).Scan(
		&room.ID, &room.RoomName, &room.CreatedBy, &questions, &room.Status, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if err := json.Unmarshal(questions, &room.Questions); err != nil {
		return nil, fmt.Errorf("decode questions of room %s: %w", id, err)
	}

	rows, err := q.Query(ctx,
		`SELECT user_id, score, attempt_number, completed, answers, joined_at, completed_at
		 FROM room_players WHERE room_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p := &model.Player{}
		var answers []byte
		var completedAt *time.Time
		if err := rows.Scan(&p.UserID, &p.Score, &p.AttemptNumber, &p.Completed, &answers, &p.JoinedAt, &completedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answers, &p.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of %s in room %s: %w", p.UserID, id, err)
		}
		if p.Answers == nil {
			p.Answers = []model.PlayerAnswer{}
		}
		p.CompletedAt = completedAt
		room.Players[p.UserID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return room, nil
}

func upsertPlayers(ctx context.Context, tx pgx.Tx, room *model.Room) error {
	batch := &pgx.Batch{}
	for _, p := range room.Players {
		answers, err := json.Marshal(p.Answers)
		if err != nil {
			return fmt.Errorf("encode answers: %w", err)
		}
		batch.Queue(
			`INSERT INTO room_players (room_id, user_id, score, attempt_number, completed, answers, joined_at, completed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (room_id, user_id) DO UPDATE SET
			     score = EXCLUDED.score,
			     attempt_number = EXCLUDED.attempt_number,
			     completed = EXCLUDED.completed,
			     answers = EXCLUDED.answers,
			     completed_at = EXCLUDED.completed_at`,
			room.ID, p.UserID, p.Score, p.AttemptNumber, p.Completed, answers, p.JoinedAt, p.CompletedAt)
	}
	return tx.SendBatch(ctx, batch).Close()
}

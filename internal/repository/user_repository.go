package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/quizroom-backend/internal/model"
)

// UserRepository handles user data access and the per-user room list.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user. Returns ErrDuplicate if the email is taken.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Email, u.PasswordHash,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return translate(err)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// GetByEmail retrieves a user by their unique email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at
		 FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// GetNames returns the display names of the given users.
func (r *UserRepository) GetNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// ListWithResults returns every user with the scores of their individual quiz attempts.
func (r *UserRepository) ListWithResults(ctx context.Context) ([]model.UserWithResults, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, qr.score, qr.attempt_number
		 FROM users u
		 LEFT JOIN quiz_results qr ON qr.user_id = u.id
		 ORDER BY u.name, u.id, qr.attempt_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.UserWithResults
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			id      uuid.UUID
			name    string
			score   *int
			attempt *int
		)
		if err := rows.Scan(&id, &name, &score, &attempt); err != nil {
			return nil, err
		}
		i, ok := index[id]
		if !ok {
			users = append(users, model.UserWithResults{ID: id, Name: name, Results: []model.ResultSummary{}})
			i = len(users) - 1
			index[id] = i
		}
		if score != nil && attempt != nil {
			users[i].Results = append(users[i].Results, model.ResultSummary{Score: *score, AttemptNumber: *attempt})
		}
	}
	return users, rows.Err()
}

// AppendRoomReference adds roomID to the user's room list. Re-adding is a no-op.
func (r *UserRepository) AppendRoomReference(ctx context.Context, userID, roomID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_rooms (user_id, room_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, room_id) DO NOTHING`, userID, roomID)
	if err != nil {
		return fmt.Errorf("append room reference: %w", translate(err))
	}
	return nil
}

// ListRoomIDs returns the user's room list, most recently added first.
func (r *UserRepository) ListRoomIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT room_id FROM user_rooms WHERE user_id = $1 ORDER BY added_at DESC, room_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

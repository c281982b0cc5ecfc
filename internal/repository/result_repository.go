package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/quizroom-backend/internal/model"
)

// ResultRepository stores individual quiz attempts.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// CountByUser returns how many attempts the user has recorded.
func (r *ResultRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quiz_results WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// CreateCapped records res as the user's next attempt. The user row is locked
// so concurrent submissions of one user are counted one at a time; once
// maxAttempts results exist ErrAttemptLimit is returned and nothing is written.
// res.AttemptNumber, res.ID and res.CreatedAt are filled in.
func (r *ResultRepository) CreateCapped(ctx context.Context, res *model.QuizResult, maxAttempts int) error {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var name string
		if err := tx.QueryRow(ctx, `SELECT name FROM users WHERE id = $1 FOR UPDATE`, res.UserID).Scan(&name); err != nil {
			return translate(err)
		}

		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM quiz_results WHERE user_id = $1`, res.UserID).Scan(&count); err != nil {
			return err
		}
		if count >= maxAttempts {
			return ErrAttemptLimit
		}

		if res.ID == uuid.Nil {
			res.ID = uuid.New()
		}
		res.AttemptNumber = count + 1
		res.UserName = name
		err := tx.QueryRow(ctx,
			`INSERT INTO quiz_results (id, user_id, attempt_number, score, answers)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING created_at`,
			res.ID, res.UserID, res.AttemptNumber, res.Score, answers,
		).Scan(&res.CreatedAt)
		return translate(err)
	})
}

// ListByUser returns the user's attempts, newest first, without answers.
// Attempt numbers are assigned in commit order, so they define recency.
func (r *ResultRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.QuizResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT qr.id, qr.user_id, u.name, qr.attempt_number, qr.score, qr.created_at
		 FROM quiz_results qr
		 JOIN users u ON u.id = qr.user_id
		 WHERE qr.user_id = $1
		 ORDER BY qr.attempt_number DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.QuizResult{}
	for rows.Next() {
		var res model.QuizResult
		if err := rows.Scan(&res.ID, &res.UserID, &res.UserName, &res.AttemptNumber, &res.Score, &res.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered quiz player.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserWithResults is one row of the public user listing.
type UserWithResults struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Results []ResultSummary `json:"results"`
}

// ResultSummary is the score of one individual quiz attempt.
type ResultSummary struct {
	Score         int `json:"score"`
	AttemptNumber int `json:"attempt_number"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,notblank,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// AuthResponse is returned after register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

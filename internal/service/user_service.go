package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizroom-backend/internal/model"
	"github.com/stemsi/quizroom-backend/internal/repository"
)

// UserService handles accounts and the per-user room list.
type UserService struct {
	users UserDirectory
	rooms RoomStore
	auth  *AuthService
	log   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserDirectory, rooms RoomStore, auth *AuthService, log zerolog.Logger) *UserService {
	return &UserService{
		users: users,
		rooms: rooms,
		auth:  auth,
		log:   log.With().Str("component", "user_service").Logger(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns a signed token for it.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be blank", model.ErrValidation)
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{Name: name, Email: normalizeEmail(req.Email), PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, storageErr(err, "email already registered")
	}

	token, err := s.auth.GenerateToken(u)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", u.ID.String()).Msg("User registered")
	return &model.AuthResponse{Token: token, User: *u}, nil
}

// Login checks credentials and returns a signed token. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.auth.GenerateToken(u)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{Token: token, User: *u}, nil
}

// GetByID retrieves a user.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "user "+id.String())
	}
	return u, nil
}

// List returns every user with their individual quiz scores.
func (s *UserService) List(ctx context.Context) ([]model.UserWithResults, error) {
	users, err := s.users.ListWithResults(ctx)
	if err != nil {
		return nil, storageErr(err, "list users")
	}
	if users == nil {
		users = []model.UserWithResults{}
	}
	return users, nil
}

// MyRooms returns the summaries of the rooms on the user's room list.
func (s *UserService) MyRooms(ctx context.Context, userID uuid.UUID) ([]model.RoomSummary, error) {
	ids, err := s.users.ListRoomIDs(ctx, userID)
	if err != nil {
		return nil, storageErr(err, "list room references")
	}
	rooms, err := s.rooms.ListSummaries(ctx, ids)
	if err != nil {
		return nil, storageErr(err, "list rooms")
	}
	return rooms, nil
}

package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizroom-backend/internal/model"
	"github.com/stemsi/quizroom-backend/internal/response"
	"github.com/stemsi/quizroom-backend/internal/service"
	"github.com/stemsi/quizroom-backend/internal/validator"
)

// RoomHandler handles multiplayer room endpoints.
type RoomHandler struct {
	roomService *service.RoomService
	log         zerolog.Logger
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(roomService *service.RoomService, log zerolog.Logger) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
		log:         log.With().Str("component", "room_handler").Logger(),
	}
}

// CreateRoom godoc
// POST /api/v1/rooms
// Creates a room with a fresh question sample; the caller becomes its creator.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}

	var req model.CreateRoomRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	room, err := h.roomService.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Created(c, room.ID.String(), gin.H{"room": room})
}

// ListRooms godoc
// GET /api/v1/rooms?page=1&per_page=10
func (h *RoomHandler) ListRooms(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	rooms, pagination, err := h.roomService.List(c.Request.Context(), page, perPage)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, rooms, pagination)
}

// GetRoom godoc
// GET /api/v1/rooms/:id
// Polled by clients; correct options stay hidden until the caller has completed.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	h.withRoom(c, func(ctx context.Context, roomID, userID uuid.UUID) (any, int, error) {
		room, err := h.roomService.Get(ctx, roomID, userID)
		return gin.H{"room": room}, http.StatusOK, err
	})
}

// DeleteRoom godoc
// DELETE /api/v1/rooms/:id
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	h.withRoom(c, func(ctx context.Context, roomID, userID uuid.UUID) (any, int, error) {
		return gin.H{}, http.StatusOK, h.roomService.Delete(ctx, roomID, userID)
	})
}

// JoinRoom godoc
// POST /api/v1/rooms/:id/join
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	h.withRoom(c, func(ctx context.Context, roomID, userID uuid.UUID) (any, int, error) {
		room, err := h.roomService.Join(ctx, roomID, userID)
		return gin.H{"room": room}, http.StatusOK, err
	})
}

// StartRoom godoc
// POST /api/v1/rooms/:id/start
func (h *RoomHandler) StartRoom(c *gin.Context) {
	h.withRoom(c, func(ctx context.Context, roomID, userID uuid.UUID) (any, int, error) {
		room, err := h.roomService.Start(ctx, roomID, userID)
		return gin.H{"room": room}, http.StatusOK, err
	})
}

// RestartRoom godoc
// POST /api/v1/rooms/:id/restart
func (h *RoomHandler) RestartRoom(c *gin.Context) {
	h.withRoom(c, func(ctx context.Context, roomID, userID uuid.UUID) (any, int, error) {
		room, err := h.roomService.Restart(ctx, roomID, userID)
		return gin.H{"room": room}, http.StatusOK, err
	})
}

// FinishRoom godoc
// POST /api/v1/rooms/:id/finish
func (h *RoomHandler) FinishRoom(c *gin.Context) {
	h.withRoom(c, func(ctx context.Context, roomID, userID uuid.UUID) (any, int, error) {
		room, err := h.roomService.Finish(ctx, roomID, userID)
		return gin.H{"room": room}, http.StatusOK, err
	})
}

// SubmitAnswers godoc
// POST /api/v1/rooms/:id/submit
// Scores the caller's answers against the room's question snapshot.
// Returns 409 INVALID_ROOM_STATE while the room is waiting or after it finished.
func (h *RoomHandler) SubmitAnswers(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	roomID, ok := paramID(c)
	if !ok {
		return
	}

	var req model.SubmitRoomAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.roomService.Submit(c.Request.Context(), roomID, claims.UserID, req.Answers)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Leaderboard godoc
// GET /api/v1/rooms/:id/leaderboard
func (h *RoomHandler) Leaderboard(c *gin.Context) {
	h.withRoom(c, func(ctx context.Context, roomID, userID uuid.UUID) (any, int, error) {
		entries, err := h.roomService.Leaderboard(ctx, roomID, userID)
		return gin.H{"leaderboard": entries}, http.StatusOK, err
	})
}

// withRoom resolves the caller and the :id room before running fn.
func (h *RoomHandler) withRoom(c *gin.Context, fn func(ctx context.Context, roomID, userID uuid.UUID) (any, int, error)) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	roomID, ok := paramID(c)
	if !ok {
		return
	}

	data, status, err := fn(c.Request.Context(), roomID, claims.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, status, data)
}

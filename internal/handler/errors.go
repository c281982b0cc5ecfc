package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizroom-backend/internal/middleware"
	"github.com/stemsi/quizroom-backend/internal/model"
	"github.com/stemsi/quizroom-backend/internal/response"
	"github.com/stemsi/quizroom-backend/internal/service"
)

type errorMapping struct {
	target error
	status int
	code   response.ErrCode
}

// Order matters: the first match wins.
var errorMappings = []errorMapping{
	{model.ErrValidation, http.StatusBadRequest, response.ErrValidation},
	{model.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{model.ErrUnauthorized, http.StatusForbidden, response.ErrNotRoomCreator},
	{model.ErrForbidden, http.StatusForbidden, response.ErrForbidden},
	{model.ErrAttemptLimit, http.StatusForbidden, response.ErrAttemptLimit},
	{model.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
	{model.ErrDuplicateJoin, http.StatusConflict, response.ErrDuplicateJoin},
	{model.ErrConflict, http.StatusConflict, response.ErrConflict},
	{model.ErrInvalidState, http.StatusConflict, response.ErrInvalidState},
	{model.ErrInsufficientData, http.StatusUnprocessableEntity, response.ErrInsufficientQuestions},
}

// classify returns the HTTP status and error code for err.
func classify(err error) (int, response.ErrCode) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, response.ErrInternal
}

// respondError writes err as an error envelope. Domain errors carry their
// message as detail; anything else is logged and reported as internal.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", response.RequestID(c)).
			Str("path", c.FullPath()).
			Msg("Request failed")
		response.Fail(c, status, code)
		return
	}
	response.FailWithDetail(c, status, code, err.Error())
}

// claimsOrAbort returns the caller's claims or writes 401.
func claimsOrAbort(c *gin.Context) (*service.Claims, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}
	return claims, true
}

// paramID parses the :id path parameter or writes 400.
func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

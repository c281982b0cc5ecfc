package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizroom-backend/internal/model"
	"github.com/stemsi/quizroom-backend/internal/response"
	"github.com/stemsi/quizroom-backend/internal/service"
	"github.com/stemsi/quizroom-backend/internal/validator"
)

// QuizHandler handles the individual quiz endpoints.
type QuizHandler struct {
	quizService *service.QuizService
	log         zerolog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService, log zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		log:         log.With().Str("component", "quiz_handler").Logger(),
	}
}

// StartQuiz godoc
// GET /api/v1/quiz/start
// Hands out a fresh question set without correct options.
func (h *QuizHandler) StartQuiz(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}

	attempt, err := h.quizService.Start(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, attempt)
}

// SubmitQuiz godoc
// POST /api/v1/quiz/submit
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}

	var req model.SubmitQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	submission, err := h.quizService.Submit(c.Request.Context(), claims.UserID, req.Answers)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, submission)
}

// ListResults godoc
// GET /api/v1/quiz/results
// Lists the caller's attempts, newest first.
func (h *QuizHandler) ListResults(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}

	results, err := h.quizService.Results(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

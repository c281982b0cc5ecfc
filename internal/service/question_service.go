package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/quizroom-backend/internal/model"
	"github.com/stemsi/quizroom-backend/internal/response"
)

// QuestionService manages the question bank.
type QuestionService struct {
	bank QuestionBank
	log  zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(bank QuestionBank, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		bank: bank,
		log:  log.With().Str("component", "question_service").Logger(),
	}
}

// Create validates and stores a question written by authorID, which may be
// uuid.Nil for imported questions. The correct option must be one of the
// options; it is stored with the spelling used in the options list.
func (s *QuestionService) Create(ctx context.Context, req model.CreateQuestionRequest, authorID uuid.UUID) (*model.Question, error) {
	text := strings.TrimSpace(req.QuestionText)
	if text == "" {
		return nil, fmt.Errorf("%w: question text must not be blank", model.ErrValidation)
	}

	options, err := model.ParseOptions(req.Options)
	if err != nil {
		return nil, err
	}

	q := &model.Question{QuestionText: text, Options: options}
	if authorID != uuid.Nil {
		q.CreatedBy = &authorID
	}
	for _, opt := range options {
		if model.AnswersMatch(req.CorrectOption, opt) {
			q.CorrectOption = opt
			break
		}
	}
	if q.CorrectOption == "" {
		return nil, fmt.Errorf("%w: correct option must be one of the options", model.ErrValidation)
	}

	if err := s.bank.Create(ctx, q); err != nil {
		return nil, storageErr(err, "question already exists")
	}

	s.log.Info().Str("question_id", q.ID.String()).Msg("Question created")
	return q, nil
}

// GetByID retrieves a question as requesterID may see it.
func (s *QuestionService) GetByID(ctx context.Context, id, requesterID uuid.UUID) (*model.Question, error) {
	q, err := s.bank.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, "question "+id.String())
	}
	visible := q.VisibleTo(requesterID)
	return &visible, nil
}

// List returns one page of the bank, newest first, as requesterID may see it.
func (s *QuestionService) List(ctx context.Context, page, perPage int, requesterID uuid.UUID) ([]model.Question, *response.Pagination, error) {
	page, perPage, limit, offset := normalizePage(page, perPage)

	questions, total, err := s.bank.ListPaginated(ctx, limit, offset)
	if err != nil {
		return nil, nil, storageErr(err, "list questions")
	}
	if questions == nil {
		questions = []model.Question{}
	}
	for i := range questions {
		questions[i] = questions[i].VisibleTo(requesterID)
	}
	return questions, response.NewPagination(page, perPage, total), nil
}

package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Question is an entry of the question bank. CreatedBy is nil for questions
// loaded outside the API, such as seeded ones.
type Question struct {
	ID            uuid.UUID  `json:"id"`
	QuestionText  string     `json:"question_text"`
	Options       []string   `json:"options"`
	CorrectOption string     `json:"correct_option,omitempty"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AuthoredBy reports whether userID added q to the bank.
func (q Question) AuthoredBy(userID uuid.UUID) bool {
	return q.CreatedBy != nil && *q.CreatedBy == userID
}

// VisibleTo returns q as userID may see it. Only the author gets the
// correct option; everyone else could be playing a room that contains q.
func (q Question) VisibleTo(userID uuid.UUID) Question {
	if !q.AuthoredBy(userID) {
		q.CorrectOption = ""
	}
	return q
}

// QuestionForPlayer is a question without the correct answer.
type QuestionForPlayer struct {
	ID           uuid.UUID `json:"id"`
	QuestionText string    `json:"question_text"`
	Options      []string  `json:"options"`
}

// ForPlayer strips the correct option.
func (q Question) ForPlayer() QuestionForPlayer {
	return QuestionForPlayer{ID: q.ID, QuestionText: q.QuestionText, Options: q.Options}
}

// CreateQuestionRequest is the payload for adding a question to the bank.
// Options is either a JSON array of strings or one comma-separated string.
type CreateQuestionRequest struct {
	QuestionText  string          `json:"question_text" binding:"required,notblank,max=2000"`
	Options       json.RawMessage `json:"options" binding:"required"`
	CorrectOption string          `json:"correct_option" binding:"required,max=500"`
}

// ParseOptions decodes the options field of CreateQuestionRequest.
func ParseOptions(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var joined string
		if err := json.Unmarshal(raw, &joined); err != nil {
			return nil, fmt.Errorf("%w: options must be an array of strings or a comma-separated string", ErrValidation)
		}
		list = strings.Split(joined, ",")
	}

	options := make([]string, 0, len(list))
	for _, opt := range list {
		if trimmed := strings.TrimSpace(opt); trimmed != "" {
			options = append(options, trimmed)
		}
	}
	if len(options) < 2 {
		return nil, fmt.Errorf("%w: at least two options are required", ErrValidation)
	}
	return options, nil
}

// HasOption reports whether answer matches one of the options.
func (q Question) HasOption(answer string) bool {
	for _, opt := range q.Options {
		if AnswersMatch(answer, opt) {
			return true
		}
	}
	return false
}

// AnswersMatch compares a submitted answer with a correct option, ignoring
// letter case and surrounding whitespace.
func AnswersMatch(submitted, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correct))
}

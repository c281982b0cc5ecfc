package model

import (
	"time"

	"github.com/google/uuid"
)

// QuizResult is one scored individual quiz attempt.
type QuizResult struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	UserName      string          `json:"user_name,omitempty"`
	AttemptNumber int             `json:"attempt_number"`
	Score         int             `json:"score"`
	Answers       []CheckedAnswer `json:"answers,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CheckedAnswer is a graded answer of an individual quiz.
type CheckedAnswer struct {
	QuizID         uuid.UUID `json:"quiz_id"`
	SelectedAnswer string    `json:"selected_answer"`
	IsCorrect      bool      `json:"is_correct"`
}

// QuizAnswer is a submitted answer of an individual quiz.
type QuizAnswer struct {
	QuizID         uuid.UUID `json:"quiz_id" binding:"required"`
	SelectedAnswer string    `json:"selected_answer" binding:"max=500"`
}

// SubmitQuizRequest is the payload for scoring an individual quiz.
type SubmitQuizRequest struct {
	Answers []QuizAnswer `json:"answers" binding:"required,min=1,max=100,dive"`
}

// QuizAttempt is the sampled question set handed out by StartQuiz.
type QuizAttempt struct {
	AttemptNumber int                 `json:"attempt_number"`
	Questions     []QuestionForPlayer `json:"quiz"`
}

// QuizSubmission is returned after an individual quiz is scored.
type QuizSubmission struct {
	Score         int         `json:"score"`
	AttemptNumber int         `json:"attempt_number"`
	Result        *QuizResult `json:"result"`
}

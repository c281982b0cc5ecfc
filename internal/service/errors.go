package service

import (
	"errors"
	"fmt"

	"github.com/stemsi/quizroom-backend/internal/model"
	"github.com/stemsi/quizroom-backend/internal/repository"
)

// storageErr lifts storage errors into the domain taxonomy, keeping what as context.
func storageErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", model.ErrNotFound, what)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %s", model.ErrConflict, what)
	case errors.Is(err, repository.ErrAttemptLimit):
		return fmt.Errorf("%w: %s", model.ErrAttemptLimit, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

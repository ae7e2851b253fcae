package services

import (
	"errors"

	apperrors "github.com/certprep/quiz-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Bank specific errors
	ErrBankNotFound     = errors.New("question bank not found")
	ErrNoBanksSelected  = errors.New("no question banks selected")
	ErrNoQuestionsMatch = errors.New("no questions match the selected criteria")

	// Session specific errors
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionSubmitted   = errors.New("session already submitted")
	ErrQuestionNotInQuiz  = errors.New("question is not part of this session")
	ErrQuestionChecked    = errors.New("question already checked - answer is locked")
	ErrCheckNotAllowed    = errors.New("checking answers is only available in study mode")
	ErrPersistenceFailed  = errors.New("failed to persist submission - retry submit")
	ErrSubmissionNotFound = errors.New("submission record not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrBankNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrQuestionNotInQuiz) ||
		errors.Is(err, ErrSubmissionNotFound)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSessionSubmitted) ||
		errors.Is(err, ErrQuestionChecked) ||
		errors.Is(err, ErrCheckNotAllowed)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrNoBanksSelected) ||
		errors.Is(err, ErrNoQuestionsMatch) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsRetryable checks if the caller may safely retry the operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistenceFailed)
}

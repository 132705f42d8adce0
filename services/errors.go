package services

import (
	"errors"
	"net/http"
)

var (
	// ErrQuizNotFound is returned when no quiz carries the requested code.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrParticipantNotFound is returned when the submitting participant does not exist.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrSubmissionNotFound is returned when a review is requested for a participant with no attempt.
	ErrSubmissionNotFound = errors.New("no submission found for this participant")
	// ErrQuestionNotFound is returned when a question id does not belong to the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUserNotFound is returned on login for an unknown account.
	ErrUserNotFound = errors.New("user not found")
	// ErrDeadlinePassed rejects submissions after the quiz deadline.
	ErrDeadlinePassed = errors.New("deadline passed")
	// ErrResultsNotVisible gates results from non-owners before the deadline.
	ErrResultsNotVisible = errors.New("results not available until deadline passes")
	// ErrNotAuthorized is returned when a non-owner tries to manage a quiz.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrQuizNotActive rejects joins to a deactivated quiz.
	ErrQuizNotActive = errors.New("quiz not active")
	// ErrNameTaken rejects duplicate participant names within a quiz.
	ErrNameTaken = errors.New("name already taken in this quiz")
	// ErrUserExists rejects signups for an existing username.
	ErrUserExists = errors.New("username already exists")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid password")
	// ErrQuestionLocked protects questions once any submission references the quiz.
	ErrQuestionLocked = errors.New("quiz already has submissions; questions are locked")
	// ErrValidation wraps malformed input caught before any grading runs.
	ErrValidation = errors.New("validation failed")
)

// HTTPStatus maps service errors to response codes so handlers stay thin.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrQuizNotFound),
		errors.Is(err, ErrParticipantNotFound),
		errors.Is(err, ErrSubmissionNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrResultsNotVisible), errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserExists), errors.Is(err, ErrNameTaken), errors.Is(err, ErrQuestionLocked):
		return http.StatusConflict
	case errors.Is(err, ErrDeadlinePassed),
		errors.Is(err, ErrQuizNotActive),
		errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

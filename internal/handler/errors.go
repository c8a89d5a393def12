package handler

import (
	"errors"
	"net/http"

	"github.com/gridstake/gridstake/internal/domain"
)

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	ErrMsgInvalidRequest = "Invalid request body"

	ErrMsgSubmitPredictionFailed = "Failed to submit prediction"
	ErrMsgGetLeaderboardFailed   = "Failed to retrieve leaderboard"
	ErrMsgScoringRunFailed       = "Failed to run scoring"
	ErrMsgSyncEventsFailed       = "Failed to sync events"
	ErrMsgJobTriggerFailed       = "Failed to run job"
)

// Success messages for API responses
const (
	MsgPredictionAccepted = "Prediction accepted"
	MsgJobTriggered       = "Job completed"
)

// statusForError maps domain errors to HTTP status codes. Anything
// unrecognized is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSeasonNotFound),
		errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrLeagueNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionLocked):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCreditsSumMismatch),
		errors.Is(err, domain.ErrUnknownQuestion),
		errors.Is(err, domain.ErrDuplicateAnswer),
		errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, domain.ErrNegativeCredits),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError maps a service error onto a status code, exposing the
// error text only for client-caused failures.
func respondServiceError(w http.ResponseWriter, err error, fallbackMsg string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		respondError(w, status, fallbackMsg)
		return
	}
	respondError(w, status, err.Error())
}

package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Session errors
	ErrMsgSessionNotFound = "session not found"
	ErrMsgSessionLocked   = "session is locked"

	// Season/event errors
	ErrMsgSeasonNotFound = "season not found"
	ErrMsgEventNotFound  = "event not found"

	// League errors
	ErrMsgLeagueNotFound = "league not found"

	// Scoring validation errors
	ErrMsgNegativeCredits    = "credits must be non-negative"
	ErrMsgNegativeBasePoints = "base points must be non-negative"

	// Prediction errors
	ErrMsgCreditsSumMismatch = "confidence credits must sum to the configured total"
	ErrMsgUnknownQuestion    = "unknown question instance"
	ErrMsgDuplicateAnswer    = "duplicate answer for question"
	ErrMsgInvalidOption      = "selected option is not valid for question"

	// Provider errors
	ErrMsgProviderUnavailable = "no data provider available"
	ErrMsgMissingExternalID   = "session has no external id"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Session errors
	ErrSessionNotFound = errors.New(ErrMsgSessionNotFound)
	ErrSessionLocked   = errors.New(ErrMsgSessionLocked)

	// Season/event errors
	ErrSeasonNotFound = errors.New(ErrMsgSeasonNotFound)
	ErrEventNotFound  = errors.New(ErrMsgEventNotFound)

	// League errors
	ErrLeagueNotFound = errors.New(ErrMsgLeagueNotFound)

	// Scoring validation errors
	ErrNegativeCredits    = errors.New(ErrMsgNegativeCredits)
	ErrNegativeBasePoints = errors.New(ErrMsgNegativeBasePoints)

	// Prediction errors
	ErrCreditsSumMismatch = errors.New(ErrMsgCreditsSumMismatch)
	ErrUnknownQuestion    = errors.New(ErrMsgUnknownQuestion)
	ErrDuplicateAnswer    = errors.New(ErrMsgDuplicateAnswer)
	ErrInvalidOption      = errors.New(ErrMsgInvalidOption)

	// Provider errors
	ErrProviderUnavailable = errors.New(ErrMsgProviderUnavailable)

	// Input errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)

package domain

import "errors"

// Error message string constants - single source of truth for error messages.
// Use these in assert.Contains() checks when testing error messages.
const (
	// Game errors
	ErrMsgGameNotFound       = "game not found"
	ErrMsgGameNotActive      = "game is not active"
	ErrMsgGameAlreadyStarted = "game has already started"
	ErrMsgInvalidStatus      = "invalid game status for this operation"
	ErrMsgNoPlayers          = "cannot start a game with no players"
	ErrMsgNumbersExhausted   = "all numbers have been called"

	// Call errors
	ErrMsgNumberAlreadyCalled = "number already called"
	ErrMsgNumberOutOfRange    = "number out of range"
	ErrMsgNumberNotCalled     = "number has not been called"

	// Player errors
	ErrMsgPlayerNotFound = "player not found"
	ErrMsgInvalidPlayer  = "player does not belong to this user"

	// Claim errors
	ErrMsgCategoryAlreadyWon     = "category already won"
	ErrMsgCategoryAlreadyClaimed = "category claim already in progress"
	ErrMsgInvalidClaim           = "ticket does not satisfy the claimed category"

	// Authorization errors
	ErrMsgForbidden    = "only the game organizer may do that"
	ErrMsgUnauthorized = "not authenticated"

	// Prize errors
	ErrMsgPrizeItemNotFound = "prize queue item not found"
	ErrMsgPrizeNotRetryable = "prize queue item is not retryable"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors.
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Game errors
	ErrGameNotFound       = errors.New(ErrMsgGameNotFound)
	ErrGameNotActive      = errors.New(ErrMsgGameNotActive)
	ErrGameAlreadyStarted = errors.New(ErrMsgGameAlreadyStarted)
	ErrInvalidStatus      = errors.New(ErrMsgInvalidStatus)
	ErrNoPlayers          = errors.New(ErrMsgNoPlayers)
	ErrNumbersExhausted   = errors.New(ErrMsgNumbersExhausted)

	// Call errors
	ErrNumberAlreadyCalled = errors.New(ErrMsgNumberAlreadyCalled)
	ErrNumberOutOfRange    = errors.New(ErrMsgNumberOutOfRange)
	ErrNumberNotCalled     = errors.New(ErrMsgNumberNotCalled)

	// Player errors
	ErrPlayerNotFound = errors.New(ErrMsgPlayerNotFound)
	ErrInvalidPlayer  = errors.New(ErrMsgInvalidPlayer)

	// Claim errors
	ErrCategoryAlreadyWon     = errors.New(ErrMsgCategoryAlreadyWon)
	ErrCategoryAlreadyClaimed = errors.New(ErrMsgCategoryAlreadyClaimed)
	ErrInvalidClaim           = errors.New(ErrMsgInvalidClaim)

	// Authorization errors
	ErrForbidden    = errors.New(ErrMsgForbidden)
	ErrUnauthorized = errors.New(ErrMsgUnauthorized)

	// Prize errors
	ErrPrizeItemNotFound = errors.New(ErrMsgPrizeItemNotFound)
	ErrPrizeNotRetryable = errors.New(ErrMsgPrizeNotRetryable)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)

// Wire error codes surfaced to socket clients in error events
const (
	CodeGameNotFound           = "GAME_NOT_FOUND"
	CodeGameNotActive          = "GAME_NOT_ACTIVE"
	CodeGameAlreadyStarted     = "GAME_ALREADY_STARTED"
	CodeInvalidStatus          = "INVALID_STATUS"
	CodeNoPlayers              = "NO_PLAYERS"
	CodeNumberAlreadyCalled    = "NUMBER_ALREADY_CALLED"
	CodeOutOfRange             = "OUT_OF_RANGE"
	CodeNumberNotCalled        = "NUMBER_NOT_CALLED"
	CodePlayerNotFound         = "PLAYER_NOT_FOUND"
	CodeInvalidPlayer          = "INVALID_PLAYER"
	CodeCategoryAlreadyWon     = "CATEGORY_ALREADY_WON"
	CodeCategoryAlreadyClaimed = "CATEGORY_ALREADY_CLAIMED"
	CodeInvalidClaim           = "INVALID_CLAIM"
	CodeForbidden              = "FORBIDDEN"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeValidationError        = "VALIDATION_ERROR"
	CodeHandlerError           = "HANDLER_ERROR"
)

// ErrorCode maps a domain error to its wire code. Unknown errors map to
// HANDLER_ERROR so transient infrastructure failures never leak details.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrGameNotFound):
		return CodeGameNotFound
	case errors.Is(err, ErrGameNotActive):
		return CodeGameNotActive
	case errors.Is(err, ErrGameAlreadyStarted):
		return CodeGameAlreadyStarted
	case errors.Is(err, ErrInvalidStatus):
		return CodeInvalidStatus
	case errors.Is(err, ErrNoPlayers):
		return CodeNoPlayers
	case errors.Is(err, ErrNumberAlreadyCalled):
		return CodeNumberAlreadyCalled
	case errors.Is(err, ErrNumberOutOfRange), errors.Is(err, ErrNumbersExhausted):
		return CodeOutOfRange
	case errors.Is(err, ErrNumberNotCalled):
		return CodeNumberNotCalled
	case errors.Is(err, ErrPlayerNotFound):
		return CodePlayerNotFound
	case errors.Is(err, ErrInvalidPlayer):
		return CodeInvalidPlayer
	case errors.Is(err, ErrCategoryAlreadyWon):
		return CodeCategoryAlreadyWon
	case errors.Is(err, ErrCategoryAlreadyClaimed):
		return CodeCategoryAlreadyClaimed
	case errors.Is(err, ErrInvalidClaim):
		return CodeInvalidClaim
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrInvalidInput):
		return CodeValidationError
	default:
		return CodeHandlerError
	}
}

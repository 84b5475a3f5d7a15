// Package services defines the business logic for accounts, projects,
// chat turns, the gacha, and the store. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages and HTTP status codes is performed
// at the handler layer. The taxonomy:
//
//   - validation errors (empty prompt, empty mode name, invalid theme) are
//     detected before any mutation and never leave partial state;
//   - insufficient-balance errors are admission-check failures, surfaced
//     verbatim and never retried;
//   - not-found errors double as authorization failures: a resource owned
//     by someone else is indistinguishable from a missing one;
//   - ErrWriteConflict surfaces an optimistic-concurrency conflict that
//     survived the single fresh-read retry.
package services

import "errors"

// Validation errors.
var (
	// ErrEmptyPrompt is returned when a chat turn contains an empty prompt.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrTooLong is returned when a prompt exceeds the maximum configured
	// rune length.
	ErrTooLong = errors.New("prompt too long")

	// ErrEmptyModeName is returned when a custom-mode purchase has a blank name.
	ErrEmptyModeName = errors.New("mode name is empty")

	// ErrEmptyModePrompt is returned when a custom-mode purchase has a blank prompt.
	ErrEmptyModePrompt = errors.New("mode prompt is empty")

	// ErrInvalidTheme is returned when a theme id is outside the closed enum.
	ErrInvalidTheme = errors.New("unknown theme")

	// ErrThemeAlreadyUnlocked rejects a duplicate theme purchase. Clients
	// should treat it as a no-op rejection, not a fatal state.
	ErrThemeAlreadyUnlocked = errors.New("theme already unlocked")
)

// Balance admission errors.
var (
	// ErrInsufficientCredits means the credit admission check failed; no
	// debit, no model call, no persistence happened.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInsufficientCoins means the coin admission check failed.
	ErrInsufficientCoins = errors.New("insufficient coins")
)

// Ownership / existence errors.
var (
	// ErrProjectNotFound indicates that the requested project does not
	// exist or is not accessible to the current user.
	ErrProjectNotFound = errors.New("project not found")

	// ErrMessageNotFound indicates that the requested message does not
	// exist within the project.
	ErrMessageNotFound = errors.New("message not found")

	// ErrNotModelMessage is returned when regeneration targets a message
	// that is not model-authored.
	ErrNotModelMessage = errors.New("message is not a model message")

	// ErrNotUserMessage is returned when an edit targets a message that is
	// not user-authored.
	ErrNotUserMessage = errors.New("message is not a user message")
)

// Account errors.
var (
	// ErrEmailTaken is returned when registration hits an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidOTP is returned when a verification code is wrong or expired.
	ErrInvalidOTP = errors.New("invalid or expired verification code")

	// ErrNotVerified is returned when an unactivated account tries to log in.
	ErrNotVerified = errors.New("account not verified")

	// ErrUserNotFound indicates a missing account record.
	ErrUserNotFound = errors.New("user not found")
)

// ErrWriteConflict is returned when an optimistic user write conflicted
// twice in a row. The request can be retried by the client; no partial
// economic state was committed by the failed attempt.
var ErrWriteConflict = errors.New("concurrent update conflict")

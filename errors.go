package session

import (
	"github.com/goliatone/go-errors"
)

// Text codes surfaced alongside structured errors so UI layers can branch
// without string matching.
const (
	TextCodeNetwork         = "NETWORK_ERROR"
	TextCodeValidation      = "VALIDATION_ERROR"
	TextCodeInvalidCreds    = "INVALID_CREDENTIALS"
	TextCodeSessionInvalid  = "SESSION_INVALID"
	TextCodeServer          = "SERVER_ERROR"
	TextCodeTokenMalformed  = "TOKEN_MALFORMED"
	TextCodeTokenExpired    = "TOKEN_EXPIRED"
	TextCodeInvalidState    = "INVALID_SESSION_STATE_TRANSITION"
	TextCodeRefreshDeclined = "REFRESH_DECLINED"
)

// The client builds network, validation, authentication, session-invalid,
// and server errors from the response itself so the envelope's message
// survives; callers branch with the IsXxxError predicates below rather than
// sentinel comparison. Session-invalid is the only kind with a mandated side
// effect: any authenticated-call path that sees it must trigger a full local
// logout.

// ErrTokenMalformed is returned when a token fails the structural
// three-segment base64url check. Edge-gate only; the gate maps it to
// "unauthenticated" rather than surfacing it.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when the unverified expiry claim is in the past.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidTransition is returned when a requested auth state change is not
// in the transition table.
var ErrInvalidTransition = errors.New("invalid session state transition", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidState).
	WithCode(errors.CodeBadRequest)

// ErrNoRefreshToken is returned by Refresh when the store holds no refresh
// token to exchange.
var ErrNoRefreshToken = errors.New("no refresh token available", errors.CategoryAuth).
	WithTextCode(TextCodeRefreshDeclined).
	WithCode(errors.CodeUnauthorized)

// IsNetworkError checks for transport-level failures.
func IsNetworkError(err error) bool {
	return hasTextCode(err, TextCodeNetwork)
}

// IsSessionInvalidError checks for the stale-session condition that mandates
// a local logout.
func IsSessionInvalidError(err error) bool {
	return hasTextCode(err, TextCodeSessionInvalid)
}

// IsAuthenticationError checks for rejected credentials.
func IsAuthenticationError(err error) bool {
	return hasTextCode(err, TextCodeInvalidCreds)
}

// IsValidationError checks for field-level rejections.
func IsValidationError(err error) bool {
	return hasTextCode(err, TextCodeValidation)
}

// IsTokenExpiredError checks for expired tokens.
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsMalformedTokenError checks for structurally invalid tokens.
func IsMalformedTokenError(err error) bool {
	return hasTextCode(err, TextCodeTokenMalformed)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

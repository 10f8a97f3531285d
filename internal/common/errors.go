// Package common defines shared constants and sentinel errors used across
// client and server layers of teamboard. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal  = errors.New("internal error")
	ErrUnavailable = errors.New("service unavailable")

	// Authorization errors.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrProtected        = errors.New("protected administrator")

	// Validation / content errors.
	ErrValidation   = errors.New("validation error")
	ErrEmptyContent = fmt.Errorf("%w: empty content", ErrValidation)
	ErrAlreadyLiked = errors.New("already liked")

	// Identity provider errors.
	ErrNotAllowed               = errors.New("email not allowed")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrAccountDisabled          = errors.New("account disabled")
	ErrInvalidEmail             = errors.New("invalid email")
	ErrEmailInUse               = errors.New("email already in use")
	ErrWeakPassword             = errors.New("weak password")
	ErrReauthenticationRequired = errors.New("reauthentication required")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrTokenRevoked        = errors.New("token revoked")
)

// Sentinels lists every error above in the order the transport layer tries
// to match them. More specific errors come before the ones they wrap.
var Sentinels = []error{
	ErrEmptyContent,
	ErrValidation,
	ErrAlreadyLiked,
	ErrNotAllowed,
	ErrInvalidCredentials,
	ErrAccountDisabled,
	ErrInvalidEmail,
	ErrEmailInUse,
	ErrWeakPassword,
	ErrReauthenticationRequired,
	ErrProtected,
	ErrForbidden,
	ErrNotAuthenticated,
	ErrAlreadyExists,
	ErrorNotFound,
	ErrRefreshTokenExpired,
	ErrTokenExpired,
	ErrTokenRevoked,
	ErrInvalidToken,
	ErrUnavailable,
	ErrorInternal,
}

// FromMessage rebuilds an error from its transported text. The result wraps
// the matching sentinel and keeps any detail that followed it. It returns nil
// when no sentinel matches.
func FromMessage(msg string) error {
	for _, s := range Sentinels {
		text := s.Error()
		if msg == text {
			return s
		}
		if rest, ok := strings.CutPrefix(msg, text+":"); ok {
			return fmt.Errorf("%w:%s", s, rest)
		}
	}
	return nil
}

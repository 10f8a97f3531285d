package common

import "errors"

// GenericMessage is shown for failures the user cannot act on.
const GenericMessage = "Something went wrong. Please try again."

var userMessages = []struct {
	err error
	msg string
}{
	{ErrEmptyContent, "Please enter some text."},
	{ErrValidation, ""},
	{ErrAlreadyLiked, "You have already liked this post."},
	{ErrNotAllowed, "This email address is not allowed to register."},
	{ErrInvalidCredentials, "The email address or password is incorrect."},
	{ErrAccountDisabled, "This account has been disabled."},
	{ErrInvalidEmail, "The email address is not valid."},
	{ErrEmailInUse, "This email address is already registered."},
	{ErrWeakPassword, "The password must be at least 6 characters long."},
	{ErrReauthenticationRequired, "Please confirm your current password to continue."},
	{ErrProtected, "This administrator cannot be removed."},
	{ErrForbidden, "You do not have permission to do that."},
	{ErrNotAuthenticated, "Please log in first."},
	{ErrAlreadyExists, "That entry already exists."},
	{ErrorNotFound, "The requested item no longer exists."},
	{ErrRefreshTokenExpired, "Your session has expired. Please log in again."},
	{ErrTokenExpired, "Your session has expired. Please log in again."},
	{ErrTokenRevoked, "Your session has ended. Please log in again."},
	{ErrInvalidToken, "Please log in again."},
	{ErrUnavailable, "The server is unavailable. Please try again later."},
}

// UserMessage converts err into text suitable for showing to an end user.
// Validation errors keep their detail; unknown errors get GenericMessage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range userMessages {
		if !errors.Is(err, m.err) {
			continue
		}
		if m.msg == "" {
			return err.Error()
		}
		return m.msg
	}
	return GenericMessage
}

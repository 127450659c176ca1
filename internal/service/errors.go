package service

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnsupportedMedia
	KindUnauthorized
	KindForbidden
)

// Error 业务错误：Code 稳定、可供前端判断，Message 面向用户
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrMissingField       = newError(KindValidation, "MISSING_FIELD", "please fill in all fields")
	ErrPasswordMismatch   = newError(KindValidation, "PASSWORD_MISMATCH", "passwords do not match")
	ErrUsernameTooLong    = newError(KindValidation, "USERNAME_TOO_LONG", "username must be 30 characters or fewer")
	ErrInvalidEmail       = newError(KindValidation, "INVALID_EMAIL", "email address is not valid")
	ErrEmptyQuery         = newError(KindValidation, "EMPTY_QUERY", "search query cannot be empty")
	ErrUsernameTaken      = newError(KindConflict, "USERNAME_TAKEN", "username is already taken")
	ErrEmailTaken         = newError(KindConflict, "EMAIL_TAKEN", "email is already registered")
	ErrAlreadyFollowing   = newError(KindConflict, "ALREADY_FOLLOWING", "you already follow this user")
	ErrNotFollowing       = newError(KindConflict, "NOT_FOLLOWING", "you do not follow this user")
	ErrNotFound           = newError(KindNotFound, "NOT_FOUND", "user not found")
	ErrUnsupportedMedia   = newError(KindUnsupportedMedia, "UNSUPPORTED_MEDIA_TYPE", "only png, jpg and jpeg images are allowed")
	ErrInvalidCredentials = newError(KindUnauthorized, "INVALID_CREDENTIALS", "incorrect password")
	ErrUnauthorized       = newError(KindUnauthorized, "UNAUTHORIZED", "please log in")
	ErrSelfFollow         = newError(KindForbidden, "SELF_FOLLOW", "you cannot follow or unfollow yourself")
)

// KindOf 非 *Error 一律视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func wrap(sentinel *Error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// Package apperrors defines the error kinds shared by services and HTTP handlers.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind is a short machine-checkable error category.
type Kind string

const (
	KindUnauthenticated   Kind = "unauthenticated"
	KindExpired           Kind = "expired"
	KindInvalid           Kind = "invalid"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindSelfFollow        Kind = "self_follow"
	KindAlreadyFollowing  Kind = "already_following"
	KindNotFollowing      Kind = "not_following"
	KindAlreadyBookmarked Kind = "already_bookmarked"
	KindNotBookmarked     Kind = "not_bookmarked"
	KindCannotDeleteAdmin Kind = "cannot_delete_admin"
	KindInvalidRecipient  Kind = "invalid_recipient"
	KindValidationFailed  Kind = "validation_failed"
	KindInternal          Kind = "internal"
)

// Error carries a Kind, a human-readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated, Message: "authentication required"}
	ErrExpired           = &Error{Kind: KindExpired, Message: "token expired"}
	ErrInvalid           = &Error{Kind: KindInvalid, Message: "invalid token"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrSelfFollow        = &Error{Kind: KindSelfFollow, Message: "cannot follow yourself"}
	ErrAlreadyFollowing  = &Error{Kind: KindAlreadyFollowing, Message: "already following this user"}
	ErrNotFollowing      = &Error{Kind: KindNotFollowing, Message: "not following this user"}
	ErrAlreadyBookmarked = &Error{Kind: KindAlreadyBookmarked, Message: "post already bookmarked"}
	ErrNotBookmarked     = &Error{Kind: KindNotBookmarked, Message: "post is not bookmarked"}
	ErrCannotDeleteAdmin = &Error{Kind: KindCannotDeleteAdmin, Message: "admin users cannot be deleted"}
	ErrInvalidRecipient  = &Error{Kind: KindInvalidRecipient, Message: "invalid recipient"}
	ErrValidationFailed  = &Error{Kind: KindValidationFailed, Message: "validation failed"}
	ErrInternal          = &Error{Kind: KindInternal, Message: "internal error"}
)

// New creates an Error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return New(KindForbidden, format, args...)
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidationFailed, format, args...)
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

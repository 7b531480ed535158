package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure at the operation boundary.
type Kind int

const (
	KindPersistence Kind = iota
	KindValidation
	KindNotFound
	KindDuplicateName
	KindSelfReference
	KindSelfShare
	KindDuplicateShare
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindDuplicateName:
		return "duplicate_name"
	case KindSelfReference:
		return "self_reference"
	case KindSelfShare:
		return "self_share"
	case KindDuplicateShare:
		return "duplicate_share"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "persistence"
	}
}

// Sentinels for errors.Is matching
var (
	ErrPersistence    = errors.New("persistence failure")
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrDuplicateName  = errors.New("duplicate name")
	ErrSelfReference  = errors.New("self reference")
	ErrSelfShare      = errors.New("self share")
	ErrDuplicateShare = errors.New("duplicate share")
	ErrUnauthorized   = errors.New("unauthorized")
)

var sentinels = map[Kind]error{
	KindPersistence:    ErrPersistence,
	KindValidation:     ErrValidation,
	KindNotFound:       ErrNotFound,
	KindDuplicateName:  ErrDuplicateName,
	KindSelfReference:  ErrSelfReference,
	KindSelfShare:      ErrSelfShare,
	KindDuplicateShare: ErrDuplicateShare,
	KindUnauthorized:   ErrUnauthorized,
}

// Error carries a Kind, a message that is safe to show the user, and an
// optional underlying cause.
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

// Is allows errors.Is() to match against the sentinel for e.Kind
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Validationf(format string, args ...interface{}) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func DuplicateName(name string) *Error {
	return &Error{Kind: KindDuplicateName, Message: fmt.Sprintf("an item named %q already exists in this location", name)}
}

func SelfReference() *Error {
	return &Error{Kind: KindSelfReference, Message: "a directory cannot be moved into itself or one of its subdirectories"}
}

func SelfShare() *Error {
	return &Error{Kind: KindSelfShare, Message: "you cannot share a workbook with yourself"}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Persistence wraps a store failure behind a generic message.
func Persistence(err error) *Error {
	return &Error{Kind: KindPersistence, Message: "the operation could not be completed", Err: err}
}

// KindOf reports the Kind of err. Errors that are not *Error count as persistence failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "the operation could not be completed"
}

// StatusCode maps a Kind to the HTTP status the API answers with.
func StatusCode(kind Kind) int {
	switch kind {
	case KindValidation, KindSelfReference, KindSelfShare:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateName, KindDuplicateShare:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

package api

import (
	"errors"
	"net/http"
)

// Error kinds, matched with errors.Is.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("too many requests")
	ErrInternal     = errors.New("internal error")
	ErrNetwork      = errors.New("network error")
)

// NetworkMessage is shown when the API cannot be reached.
const NetworkMessage = "Cannot connect to server. Make sure the backend server is running."

// Error is a failed API call. Message is safe to show to the user.
type Error struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func kindFor(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrInternal
	default:
		return ErrBadRequest
	}
}

func statusError(status int, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Kind: kindFor(status), Status: status, Message: message}
}

func networkError(err error) *Error {
	return &Error{Kind: ErrNetwork, Message: NetworkMessage, Err: err}
}

// Package apperrors defines the error taxonomy shared by services and
// handlers. Services return these types; the HTTP layer maps them to
// status codes with StatusCode.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when no valid credential is presented.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the caller lacks the admin role.
	ErrForbidden = errors.New("admin role required")
)

// InvalidRequest signals a malformed or incomplete request payload.
type InvalidRequest struct {
	Reason string
}

func (e *InvalidRequest) Error() string {
	return e.Reason
}

func NewInvalidRequest(reason string) error {
	return &InvalidRequest{Reason: reason}
}

// Compliance signals a send attempt to a number in the opt-out registry.
type Compliance struct {
	Phone string
}

func (e *Compliance) Error() string {
	return fmt.Sprintf("recipient %s has opted out", e.Phone)
}

func NewCompliance(phone string) error {
	return &Compliance{Phone: phone}
}

// NotFound signals an unknown record of the given kind.
type NotFound struct {
	Kind string
	ID   string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func NewNotFound(kind, id string) error {
	return &NotFound{Kind: kind, ID: id}
}

// Gateway carries the carrier's reported error code and message for a
// rejected request. HTTPStatus is the status the carrier answered with.
type Gateway struct {
	Code       int
	Message    string
	HTTPStatus int
}

func (e *Gateway) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("gateway error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gateway error: %s", e.Message)
}

// Persistence wraps a failed store operation.
type Persistence struct {
	Op  string
	Err error
}

func (e *Persistence) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *Persistence) Unwrap() error {
	return e.Err
}

func NewPersistence(op string, err error) error {
	return &Persistence{Op: op, Err: err}
}

// StatusCode maps a service error to an HTTP status code. Unknown errors
// map to 500; callers should log the full detail and surface only a
// generic message for those.
func StatusCode(err error) int {
	var (
		invalid    *InvalidRequest
		compliance *Compliance
		notFound   *NotFound
		gateway    *Gateway
	)

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &invalid), errors.As(err, &compliance):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &gateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

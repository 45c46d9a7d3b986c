package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDraft is returned when a session operation needs an open draft
	ErrNoDraft = errors.New("no draft open")
	// ErrSubmitting is returned when a submission is already in flight
	ErrSubmitting = errors.New("submission already in flight")
	// ErrInvalidPageSize is returned for page sizes outside the allowed menu
	ErrInvalidPageSize = errors.New("invalid page size")
)

// ValidationError rejects a draft before it reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NetworkError means no response was obtained from the remote service
// (connectivity failure or timeout). The triggering call may or may not have
// reached the server.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError wraps a non-success response from the remote service.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: status %d", e.Status)
	}
	return fmt.Sprintf("server error: status %d: %s", e.Status, e.Message)
}

// NotFoundError means a mutation targeted an id absent from the collection,
// local or remote. It usually signals a stale local view.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("event %s not found", e.ID)
}

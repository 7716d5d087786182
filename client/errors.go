package client

import (
	"errors"
	"fmt"
)

// ErrAuthRequired is returned by operations that need a signed-in session
// when none exists.
var ErrAuthRequired = errors.New("client: not signed in")

// ValidationError reports input the server (or the client itself) rejected
// as malformed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("client: invalid input: %s", e.Message)
}

// NotFoundError reports a song or playlist the server does not know.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("client: not found: %s", e.Message)
}

// ConflictError reports an operation rejected because it would duplicate
// existing state, such as adding a song a playlist already holds.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("client: conflict: %s", e.Message)
}

// SyncError wraps transport and protocol failures talking to the server.
// Local catalog state is left untouched when one of these is returned.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("client: %s failed: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

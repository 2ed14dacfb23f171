package service

import (
	"errors"
	"fmt"
)

var (
	// ErrRetrieval marks a transient storage failure; callers may retry
	ErrRetrieval = errors.New("retrieval failed")
	// ErrInvalidInput marks a request the service refuses to process
	ErrInvalidInput = errors.New("invalid input")
)

// RetrievalError wraps a failed read of samples, events or checkpoints
type RetrievalError struct {
	Op  string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("failed to retrieve %s: %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRetrieval) match any RetrievalError
func (e *RetrievalError) Is(target error) bool {
	return target == ErrRetrieval
}

func retrievalError(op string, err error) error {
	return &RetrievalError{Op: op, Err: err}
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

package service

import "errors"

// ErrEmptyUpdate is returned by Update when neither title nor content is set.
var ErrEmptyUpdate = errors.New("update has no fields to change")

// StoreError wraps a document store failure, keeping its message.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func newStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

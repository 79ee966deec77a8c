package service

// AuthError wraps a provider or profile store failure. Error returns the
// backend's message unchanged.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func newAuthError(op string, err error) *AuthError {
	return &AuthError{Op: op, Err: err}
}

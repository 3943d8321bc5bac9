package domain

import "errors"

var (
	// ErrInvalidWeight means the input text is not a number.
	ErrInvalidWeight = errors.New("weight is not a number")
	// ErrWeightOutOfRange means the value is numeric but outside [MinWeight, MaxWeight].
	ErrWeightOutOfRange = errors.New("weight out of range")
	// ErrUnknownUser means a measurement referenced a user with no user row.
	ErrUnknownUser = errors.New("unknown user")
	// ErrStoreUnavailable means the record store could not serve the call.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// StoreError reports a failed store call. It matches both ErrStoreUnavailable
// and the underlying cause with errors.Is.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "store: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

// WrapStore wraps a non-nil err from the store as a *StoreError. Errors that
// already carry domain meaning pass through.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.Is(err, ErrUnknownUser) || errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

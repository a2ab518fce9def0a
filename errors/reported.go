package errors

import (
	stderrors "errors"
)

// Reported marks an error whose alert has already been sent.
// The mark travels with the error chain, so every layer that catches
// the error can check it before alerting again.
type Reported struct {
	Err error
}

func (r *Reported) Error() string { return r.Err.Error() }

func (r *Reported) Unwrap() error { return r.Err }

// MarkReported wraps err as already alerted. Nil and already-marked
// errors are returned unchanged.
func MarkReported(err error) error {
	if err == nil || IsReported(err) {
		return err
	}
	return &Reported{Err: err}
}

// IsReported reports whether err or any error it wraps was marked.
func IsReported(err error) bool {
	var r *Reported
	return stderrors.As(err, &r)
}

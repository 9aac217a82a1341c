package api

import (
	"errors"
	"net/http"
)

var ErrInvalidRequest = errors.New("invalid_request")

// invalidRequestError carries the status the client should see: 400 for a
// body that cannot be used at all, 422 for values outside the allowed range.
type invalidRequestError struct {
	status int
	msg    string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newBadRequest(msg string) error {
	return invalidRequestError{status: http.StatusBadRequest, msg: msg}
}

func newUnprocessable(msg string) error {
	return invalidRequestError{status: http.StatusUnprocessableEntity, msg: msg}
}

// requestErrorStatus returns the status for a validation error, or false if
// err is not one.
func requestErrorStatus(err error) (int, bool) {
	var ierr invalidRequestError
	if errors.As(err, &ierr) {
		return ierr.status, true
	}
	return 0, false
}

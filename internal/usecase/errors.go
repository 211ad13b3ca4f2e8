package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is the usecase-level failure the handlers translate 1:1
// into a response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// Recoverable checkout failures the callers branch on. These are
// expected conditions (redirect to cart, re-prompt the form), not
// faults.
var (
	ErrEmptyCart          = &HTTPError{Status: http.StatusBadRequest, Message: "cart empty"}
	ErrIncompleteCheckout = &HTTPError{Status: http.StatusBadRequest, Message: "checkout incomplete"}
)

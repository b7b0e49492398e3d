package fetch

import (
	"errors"
	"fmt"
)

// Content sanity errors.
// These errors mark responses that arrived successfully at the HTTP level
// but do not look like real page content.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances at the failure site. This allows callers to use
// errors.Is() for programmatic handling while still providing human-readable
// messages.
var (
	// ErrContentTooShort is returned when the decoded body is below the
	// minimum content length. Error stubs and empty shells are short.
	ErrContentTooShort = errors.New("response body too short to be page content")

	// ErrNoMarkup is returned when the decoded body contains no markup
	// marker at all. Real pages always carry at least one tag.
	ErrNoMarkup = errors.New("response body contains no markup")
)

// StatusError reports a response status outside the success range.
type StatusError struct {
	// Code is the HTTP status code received.
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// Error wraps the final failure of a fetch call with the URL and the number
// of attempts made. The wrapped error is the LAST failure observed; earlier
// failures are logged but not retained.
type Error struct {
	// URL is the request URL.
	URL string

	// Attempts is how many attempts were made before giving up.
	Attempts int

	// Err is the last failure.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

// Unwrap returns the last underlying failure so callers can use
// errors.Is/errors.As through the wrapper.
func (e *Error) Unwrap() error {
	return e.Err
}

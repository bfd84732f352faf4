package apierr

import (
	"fmt"
)

// Category groups API failures by where they originated.
type Category string

const (
	CategoryTransport Category = "transport" // request never produced a usable response
	CategoryDecode    Category = "decode"    // response body was not a valid envelope
	CategoryAuth      Category = "auth"      // credential rejected or missing
	CategoryNotFound  Category = "not_found" // entity does not exist
	CategoryRemote    Category = "remote"    // server reported a business error
)

// Error is a structured failure from the blog API. The remote envelope
// carries a business code and message; HTTPStatus records the transport
// status the envelope arrived with (0 when the request itself failed).
type Error struct {
	// Code is the envelope business code. 0 means success, so an Error
	// never carries 0 except for transport/decode failures where the
	// envelope was never read.
	Code int

	// Category is where the failure originated.
	Category Category

	// Message is the server's msg field, or a local description for
	// transport and decode failures.
	Message string

	// HTTPStatus is the HTTP status of the response, if one arrived.
	HTTPStatus int

	// Suggestion is a hint on how to recover, filled from the registry
	// for known codes.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion sets a recovery hint on the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Wrap records the underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// FromEnvelope builds an Error from a non-zero envelope code. Known codes
// get their category and suggestion from the registry; unknown codes are
// classified by the HTTP status alone.
func FromEnvelope(code int, msg string, httpStatus int) *Error {
	e := &Error{
		Code:       code,
		Message:    msg,
		HTTPStatus: httpStatus,
		Category:   categorize(httpStatus),
	}
	if t, ok := registry[code]; ok {
		e.Category = t.Category
		e.Suggestion = t.Suggestion
		if e.Message == "" {
			e.Message = t.Message
		}
	}
	return e
}

// Transport wraps a failure that happened before any response envelope
// could be read (dial error, timeout, cancelled context).
func Transport(err error) *Error {
	return &Error{
		Category: CategoryTransport,
		Message:  "request failed",
		Wrapped:  err,
	}
}

// Decode wraps a response body that was not a valid envelope.
func Decode(err error, httpStatus int) *Error {
	return &Error{
		Category:   CategoryDecode,
		Message:    "invalid response body",
		HTTPStatus: httpStatus,
		Wrapped:    err,
	}
}

func categorize(httpStatus int) Category {
	switch {
	case httpStatus == 401 || httpStatus == 403:
		return CategoryAuth
	case httpStatus == 404:
		return CategoryNotFound
	default:
		return CategoryRemote
	}
}

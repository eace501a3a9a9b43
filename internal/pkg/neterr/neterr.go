package neterr

import (
	"errors"
	"fmt"
)

// Kind classifies a network error.
type Kind string

// Constants for the network error taxonomy.
const (
	KindInvalidURL     Kind = "invalid_url"
	KindRequestFailed  Kind = "request_failed"
	KindDecodingFailed Kind = "decoding_failed"
	KindNoData         Kind = "no_data"
	KindNoInternet     Kind = "no_internet"
	KindTimeout        Kind = "timeout"
	KindServerError    Kind = "server_error"
	KindUnknown        Kind = "unknown"
)

// Error is a classified failure from the network layer.
type Error struct {
	Kind       Kind
	StatusCode int    // set when Kind is KindRequestFailed
	Detail     string // free-form detail for decoding/unknown failures
	Err        error  // wrapped cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindRequestFailed:
		return fmt.Sprintf("network error (%s): status %d", e.Kind, e.StatusCode)
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("network error (%s): %s: %v", e.Kind, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("network error (%s): %s", e.Kind, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("network error (%s): %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("network error (%s)", e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the fixed user-facing message for the error kind.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindInvalidURL:
		return "Invalid URL."
	case KindRequestFailed:
		return "The request failed. Please try again."
	case KindDecodingFailed:
		return "Failed to decode the server response."
	case KindNoData:
		return "No data received from the server."
	case KindNoInternet:
		return "No internet connection. Please check your network."
	case KindTimeout:
		return "The request timed out. Please try again."
	case KindServerError:
		return "Server error. Please try again later."
	default:
		return "An unknown error occurred."
	}
}

// Constructors for each kind.

func InvalidURL(rawURL string) *Error {
	return &Error{Kind: KindInvalidURL, Detail: rawURL}
}

func RequestFailed(statusCode int) *Error {
	return &Error{Kind: KindRequestFailed, StatusCode: statusCode}
}

func DecodingFailed(detail string, cause error) *Error {
	return &Error{Kind: KindDecodingFailed, Detail: detail, Err: cause}
}

func NoData() *Error {
	return &Error{Kind: KindNoData}
}

func NoInternet(cause error) *Error {
	return &Error{Kind: KindNoInternet, Err: cause}
}

func Timeout(cause error) *Error {
	return &Error{Kind: KindTimeout, Err: cause}
}

func ServerError(statusCode int) *Error {
	return &Error{Kind: KindServerError, StatusCode: statusCode}
}

func Unknown(detail string, cause error) *Error {
	return &Error{Kind: KindUnknown, Detail: detail, Err: cause}
}

// As extracts a *Error from err, if present.
func As(err error) (*Error, bool) {
	var ne *Error
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// UserMessage maps any error to a user-facing string. Non-network errors get
// the unknown-error message.
func UserMessage(err error) string {
	if ne, ok := As(err); ok {
		return ne.UserMessage()
	}
	return "An unknown error occurred."
}

package calcom

import (
	"fmt"
	"net/url"
)

// ErrorKind classifies a failed call.
type ErrorKind string

const (
	KindHTTPStatus    ErrorKind = "http_status"
	KindNetwork       ErrorKind = "network"
	KindDecode        ErrorKind = "decode"
	KindEncode        ErrorKind = "encode"
	KindInvalidMethod ErrorKind = "invalid_method"
)

// TransportError describes a call that did not produce a usable 200/201 JSON
// body. URL and Params never carry the full API key.
type TransportError struct {
	Kind   ErrorKind
	Method string
	URL    string
	Params url.Values
	Status int
	// Body is the raw response text, truncated.
	Body string
	Err  error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("calcom: %s %s: API request failed: %d: %s", e.Method, e.URL, e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("calcom: %s %s: %s: %v", e.Method, e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("calcom: %s %s: %s", e.Method, e.URL, e.Kind)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

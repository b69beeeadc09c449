package lookup

import "errors"

var (
	// ErrUnexpectedStatus is returned when the endpoint answers with a non-2xx
	// status.
	ErrUnexpectedStatus = errors.New("lookup: unexpected status")
	// ErrMalformedResponse is returned when the body is not a JSON document
	// or its results are not a list of objects carrying an id.
	ErrMalformedResponse = errors.New("lookup: malformed response")
)

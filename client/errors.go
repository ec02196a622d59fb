package client

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is returned when a host's circuit breaker has tripped.
var ErrCircuitOpen = errors.New("circuit breaker open")

// HTTPError represents a non-2xx HTTP response.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error represents a 404 response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == 404
}

// BodyTooLargeError is returned when a response body exceeds the request limit.
type BodyTooLargeError struct {
	URL   string
	Size  int64 // declared size, -1 if the body had no Content-Length
	Limit int64
}

func (e *BodyTooLargeError) Error() string {
	if e.Size < 0 {
		return fmt.Sprintf("%s: body exceeds %d bytes", e.URL, e.Limit)
	}
	return fmt.Sprintf("%s: body of %d bytes exceeds %d bytes", e.URL, e.Size, e.Limit)
}

// TransportError wraps DNS, connection and TLS failures.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolKind classifies a ProtocolError.
type ProtocolKind int

const (
	// MalformedResponse is a JSON or HTML body that could not be decoded.
	MalformedResponse ProtocolKind = iota
	// MalformedPktLine is a Git reference advertisement that could not be decoded.
	MalformedPktLine
)

func (k ProtocolKind) String() string {
	switch k {
	case MalformedPktLine:
		return "malformed pkt-line stream"
	default:
		return "malformed response"
	}
}

// ProtocolError is returned when a response body does not have the expected format.
type ProtocolError struct {
	Kind ProtocolKind
	URL  string
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s from %s: %v", e.Kind, e.URL, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

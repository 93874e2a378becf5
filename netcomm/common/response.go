package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Error Kinds
// --------------------------------------------------------------------------

// ErrorKind classifies the transport-level outcome of a single attempt.
// A non-zero kind means the attempt did not produce a usable response,
// except for ErrCanceled which may still carry the last response received
// (an application-level error surfaced verbatim to the caller).
type ErrorKind uint8

const (
	// ErrNoError indicates a successful attempt
	ErrNoError ErrorKind = iota
	// ErrCouldNotConnect indicates the endpoint refused or dropped the
	// connection. This also covers a node refusing an operation because
	// leadership moved away from it.
	ErrCouldNotConnect
	// ErrTimeout indicates the attempt (or the whole dispatch) ran out of time
	ErrTimeout
	// ErrCanceled indicates the dispatch was aborted locally: resolution
	// failure, pool unavailable, process shutdown, or an application-level
	// error status carried in the response
	ErrCanceled
	// ErrConnectionClosed indicates the connection went away mid-request
	ErrConnectionClosed
	// ErrWriteError indicates the request could not be written to the wire
	ErrWriteError
	// ErrReadError indicates the response could not be read from the wire
	ErrReadError
	// ErrProtocolError indicates a malformed frame was received
	ErrProtocolError
)

// String returns the string representation of an ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case ErrNoError:
		return "no error"
	case ErrCouldNotConnect:
		return "could not connect"
	case ErrTimeout:
		return "timeout"
	case ErrCanceled:
		return "canceled"
	case ErrConnectionClosed:
		return "connection closed"
	case ErrWriteError:
		return "write error"
	case ErrReadError:
		return "read error"
	case ErrProtocolError:
		return "protocol error"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Status Codes
// --------------------------------------------------------------------------

const (
	StatusOK        = 200
	StatusCreated   = 201
	StatusAccepted  = 202
	StatusNoContent = 204
	StatusNotFound  = 404
)

// StatusIsSuccess returns true for the status codes a dispatch treats as a
// successful final outcome.
func StatusIsSuccess(code int) bool {
	switch code {
	case StatusOK, StatusCreated, StatusAccepted, StatusNoContent:
		return true
	default:
		return false
	}
}

// --------------------------------------------------------------------------
// Application error codes
// --------------------------------------------------------------------------

const (
	// ErrCodeDataSourceNotFound is the application error code signalling
	// that the addressed collection/view does not (yet) exist on the target.
	// During shard creation this is a transient condition worth retrying.
	ErrCodeDataSourceNotFound = 1203
)

// errorBody is the subset of a response body the dispatch layer inspects
type errorBody struct {
	ErrorNum int `json:"errorNum"`
}

// ErrorCodeFromBody extracts the application-level error code from a
// response body. It returns 0 if the body is empty or carries no code.
func ErrorCodeFromBody(body []byte) int {
	if len(body) == 0 {
		return 0
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return 0
	}
	return eb.ErrorNum
}

// --------------------------------------------------------------------------
// Response
// --------------------------------------------------------------------------

// Response is the final result of a dispatch, delivered to the caller
// exactly once. Callers must inspect Error before trusting the rest: a
// failed dispatch may still carry the last attempt's status and body.
type Response struct {
	Destination Destination
	Error       ErrorKind
	StatusCode  int
	Body        []byte
}

// Ok returns true if the dispatch succeeded at the transport level
func (r *Response) Ok() bool {
	return r.Error == ErrNoError
}

// String returns a short human-readable summary of the response
func (r *Response) String() string {
	return fmt.Sprintf("Response{dest=%s, error=%s, status=%d, body=%d bytes}",
		r.Destination, r.Error, r.StatusCode, len(r.Body))
}

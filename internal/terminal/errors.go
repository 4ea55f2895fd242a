package terminal

import (
	"errors"
	"fmt"
)

// ErrNetworkUnavailable is returned when no candidate network could be
// joined before a network-dependent operation.
var ErrNetworkUnavailable = errors.New("network unavailable")

// TransportError wraps a failure to complete the HTTP exchange at all.
type TransportError struct {
	err error
}

func (e *TransportError) Error() string { return e.err.Error() }
func (e *TransportError) Unwrap() error { return e.err }

// HTTPError is a completed exchange with a status other than 200.
type HTTPError struct {
	Code int
}

func (e *HTTPError) Error() string { return fmt.Sprintf("HTTP %d", e.Code) }

// ProtocolError is a 200 whose body could not be understood.
type ProtocolError struct {
	Reason string // "Empty body" | "Unexpected body"
}

func (e *ProtocolError) Error() string { return e.Reason }

// ApplicationError is a well-formed reply with status "error".
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return "Script error"
	}
	return e.Message
}

// RosterLoadError means the boot-time roster fetch produced nothing usable.
type RosterLoadError struct {
	err error
}

func (e *RosterLoadError) Error() string { return "no saved records: " + e.err.Error() }
func (e *RosterLoadError) Unwrap() error { return e.err }

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

package types

import (
	"errors"
	"strings"
)

// Actions carried in EndpointRequest.Action.
const (
	ActionScan     = "scan"
	ActionRegister = "register"
)

// Actions carried in EndpointReply.Action.
const (
	ReplyCheckIn           = "checkin"
	ReplyCheckOut          = "checkout"
	ReplyAlreadyCheckedOut = "alreadyCheckedOut"
	ReplyUnregistered      = "unregistered"
	ReplyRegistered        = "registered"
)

// Reply status markers.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var ErrInvalidUID = errors.New("uid must be a non-empty hex string")

// EndpointRequest is the body POSTed by a terminal.  Scan requests carry a
// timestamp; register requests carry the person's names.
type EndpointRequest struct {
	UID       string `json:"uid"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp,omitempty"` // RFC3339 UTC from the device
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// EndpointReply is the remote store's answer to an EndpointRequest.
type EndpointReply struct {
	Status     string `json:"status"`
	Action     string `json:"action,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	FullName   string `json:"fullName,omitempty"`
	Message    string `json:"message,omitempty"`
	DateKey    string `json:"dateKey,omitempty"`
	ServerTime string `json:"serverTime,omitempty"`
}

// HealthReply answers GET <endpoint>?health=1.
type HealthReply struct {
	Status     string `json:"status"`
	ServerTime string `json:"serverTime"`
}

// NormalizeUID turns a reader-supplied card identifier into its canonical
// form: uppercase hex with separators (':', '-', ' ') removed.
func NormalizeUID(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r == ':' || r == '-' || r == ' ':
			continue
		case r >= '0' && r <= '9', r >= 'A' && r <= 'F':
			b.WriteRune(r)
		case r >= 'a' && r <= 'f':
			b.WriteRune(r - 'a' + 'A')
		default:
			return "", ErrInvalidUID
		}
	}
	if b.Len() == 0 {
		return "", ErrInvalidUID
	}
	return b.String(), nil
}

// FullName joins first and last name, tolerating an empty last name.
func FullName(first, last string) string {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if last == "" {
		return first
	}
	if first == "" {
		return last
	}
	return first + " " + last
}

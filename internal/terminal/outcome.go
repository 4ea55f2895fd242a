package terminal

import "time"

// OutcomeKind tags the result of one tap.
type OutcomeKind int

const (
	CheckIn OutcomeKind = iota + 1
	CheckOut
	AlreadyCheckedOut
	Unregistered
	Acknowledged
	Failed
)

var outcomeNames = map[OutcomeKind]string{
	CheckIn:           "checkin",
	CheckOut:          "checkout",
	AlreadyCheckedOut: "alreadyCheckedOut",
	Unregistered:      "unregistered",
	Acknowledged:      "acknowledged",
	Failed:            "failed",
}

func (k OutcomeKind) String() string {
	if s, ok := outcomeNames[k]; ok {
		return s
	}
	return "unknown"
}

// Outcome is the immutable result of one tap.  Names are whatever the
// reply carried; Err is set only for Failed.
type Outcome struct {
	Kind      OutcomeKind
	FirstName string
	LastName  string
	FullName  string
	Err       error

	Attempts int
	Elapsed  time.Duration
}

// Success reports whether the remote store gave a well-formed answer.
func (o Outcome) Success() bool { return o.Kind != Failed && o.Kind != 0 }

// Reason is the failure text shown on the display, or "".
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

func failed(err error) Outcome { return Outcome{Kind: Failed, Err: err} }

package terminal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

// Classify maps one HTTP exchange onto an Outcome.  err is the transport
// error, if any; status and body are ignored when it is set.
func Classify(status int, body []byte, err error) Outcome {
	if err != nil {
		return failed(&TransportError{err: err})
	}
	if status != http.StatusOK {
		return failed(&HTTPError{Code: status})
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return failed(&ProtocolError{Reason: "Empty body"})
	}

	var reply types.EndpointReply
	if json.Unmarshal(body, &reply) == nil {
		switch reply.Status {
		case types.StatusOK:
			return Outcome{
				Kind:      replyKind(reply.Action),
				FirstName: strings.TrimSpace(reply.FirstName),
				LastName:  strings.TrimSpace(reply.LastName),
				FullName:  strings.TrimSpace(reply.FullName),
			}
		case types.StatusError:
			return failed(&ApplicationError{Message: reply.Message})
		}
	}

	// Some deployments answer unknown cards with a bare text page.
	if bytes.Contains(body, []byte(types.ReplyUnregistered)) {
		return Outcome{Kind: Unregistered}
	}
	return failed(&ProtocolError{Reason: "Unexpected body"})
}

func replyKind(action string) OutcomeKind {
	switch action {
	case types.ReplyCheckIn:
		return CheckIn
	case types.ReplyCheckOut:
		return CheckOut
	case types.ReplyAlreadyCheckedOut:
		return AlreadyCheckedOut
	case types.ReplyUnregistered:
		return Unregistered
	default:
		return Acknowledged
	}
}

// ResolveNames picks the names to cache after a successful scan: the
// reply's first name, else the cached one, else the first word of the full
// name; the reply's last name, else the full name minus the first name.
func ResolveNames(o Outcome, cached RosterEntry, found bool) (first, last string) {
	first = o.FirstName
	if first == "" && found {
		first = cached.FirstName
	}
	if first == "" {
		if f := strings.Fields(o.FullName); len(f) > 0 {
			first = f[0]
		}
	}

	last = o.LastName
	if last == "" && first != "" && strings.HasPrefix(o.FullName, first+" ") {
		last = strings.TrimSpace(o.FullName[len(first):])
	}
	return first, last
}

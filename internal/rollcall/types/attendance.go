package types

import "time"

// DateKeyLayout is the canonical YYYY-MM-DD form used to group same-day rows.
const DateKeyLayout = "2006-01-02"

// AttendanceRecord is one person's attendance row for one day.  A row with
// CheckIn set and CheckOut nil is an open session.
type AttendanceRecord struct {
	ID        string     `json:"id"`
	UID       string     `json:"uid"`
	DateKey   string     `json:"dateKey"`
	CheckIn   time.Time  `json:"checkIn"`
	CheckOut  *time.Time `json:"checkOut,omitempty"`
	Source    string     `json:"source"` // "scan" | "dashboard"
	UpdatedAt time.Time  `json:"updatedAt"`

	// Joined from the roster for dashboard listings.
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Open reports whether the row still awaits a check-out.
func (r AttendanceRecord) Open() bool { return r.CheckOut == nil }

// AttendancePatch is the dashboard's PATCH /attendance/{id} body.  Nil
// fields are left unchanged; ClearCheckOut reopens the session.
type AttendancePatch struct {
	CheckIn       *time.Time `json:"checkIn,omitempty"`
	CheckOut      *time.Time `json:"checkOut,omitempty"`
	ClearCheckOut bool       `json:"clearCheckOut,omitempty"`
}

// AttendanceEvent is published after every scan decision.
type AttendanceEvent struct {
	UID       string    `json:"uid"`
	Action    string    `json:"action"`
	DateKey   string    `json:"dateKey"`
	At        time.Time `json:"at"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
}

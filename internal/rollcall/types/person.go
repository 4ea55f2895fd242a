package types

import "time"

// Person is a roster row held by the remote store.
type Person struct {
	UID       string    `json:"uid"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PersonUpdate is the dashboard's PUT /people/{uid} body.
type PersonUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

package model

import "time"

// OwnerPersonID is the id of the seeded account owner.
const OwnerPersonID = "owner"

// Person is a member of the household that transactions can be assigned to.
type Person struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Name      string
	Email     string
	Avatar    string
	IsOwner   bool
}

// PersonInput carries the caller-supplied fields of a new person.
type PersonInput struct {
	Name    string
	Email   string
	Avatar  string
	IsOwner bool
}

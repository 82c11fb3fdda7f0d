package timesheet

import "time"

// Role is the stored role value for a user row. The stored strings
// follow the schema CHECK constraint: 'user' for contributors and
// 'manager' for reviewers.
type Role string

const (
	RoleContributor Role = "user"
	RoleManager     Role = "manager"
)

func (r Role) Valid() bool {
	return r == RoleContributor || r == RoleManager
}

// Status is the approval state of a timesheet entry.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

type User struct {
	ID       int64
	Username string
	Role     Role
}

type ProjectCode struct {
	ID          int64
	Code        string
	Description string
}

// Entry is a single timesheet row: hours worked by one user against one
// project code on one calendar day. Comment holds the reviewing
// manager's note and is empty until a review happens.
type Entry struct {
	ID            int64
	UserID        int64
	ProjectCodeID int64
	Date          time.Time
	Hours         float64
	Status        Status
	Comment       string
}

// EntryDetail is an Entry joined with the owner's username and the
// project code label for display and export. Username or Code may be
// empty when the referenced row was deleted (orphaned entries are
// permitted).
type EntryDetail struct {
	Entry
	Username string
	Code     string
}

// EntryFilter narrows ListEntries. Zero values mean no constraint on
// that field.
type EntryFilter struct {
	UserID int64
	Status Status
}

// Package access maps a claimed (username, role) pair to a stored user
// id. This is an identity lookup, not authentication: no password or
// token is checked, matching the single-operator trust model of the
// tracker. Any deployment beyond a trusted single machine needs a real
// authentication layer in front of Resolve.
package access

import (
	"errors"
	"fmt"

	"timecard/storage"
	"timecard/timesheet"
)

var ErrUnknownIdentity = errors.New("no user matches that username and role")

// Identity is the verified actor threaded through every workflow
// operation. The workflow layer trusts the pair and enforces the
// role/ownership rules itself.
type Identity struct {
	UserID   int64
	Username string
	Role     timesheet.Role
}

func (i Identity) IsManager() bool {
	return i.Role == timesheet.RoleManager
}

func Resolve(store *storage.SQLiteStore, username string, role timesheet.Role) (Identity, error) {
	if !role.Valid() {
		return Identity{}, fmt.Errorf("%w: invalid role %q", ErrUnknownIdentity, role)
	}

	id, err := store.ResolveIdentity(username, role)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Identity{}, ErrUnknownIdentity
		}
		return Identity{}, err
	}

	return Identity{UserID: id, Username: username, Role: role}, nil
}

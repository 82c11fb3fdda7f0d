package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"timecard/timesheet"
)

func (s *SQLiteStore) CreateUser(username string, role timesheet.Role) (timesheet.User, error) {
	res, err := s.db.Exec(
		`INSERT INTO users (username, role) VALUES (?, ?);`,
		username, string(role),
	)
	if err != nil {
		return timesheet.User{}, wrapConstraint(err, fmt.Sprintf("insert user %q", username))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return timesheet.User{}, fmt.Errorf("read inserted user id: %w", err)
	}
	return timesheet.User{ID: id, Username: username, Role: role}, nil
}

func (s *SQLiteStore) UpdateUser(id int64, username string, role timesheet.Role) error {
	res, err := s.db.Exec(
		`UPDATE users SET username = ?, role = ? WHERE id = ?;`,
		username, string(role), id,
	)
	if err != nil {
		return wrapConstraint(err, fmt.Sprintf("update user %d", id))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read updated row count: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteUser(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM users WHERE id = ?;`, id)
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read deleted row count: %w", err)
	}
	return rows > 0, nil
}

func (s *SQLiteStore) GetUser(id int64) (timesheet.User, error) {
	var user timesheet.User
	var role string
	err := s.db.QueryRow(
		`SELECT id, username, role FROM users WHERE id = ?;`, id,
	).Scan(&user.ID, &user.Username, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timesheet.User{}, ErrNotFound
		}
		return timesheet.User{}, fmt.Errorf("query user %d: %w", id, err)
	}
	user.Role = timesheet.Role(role)
	return user, nil
}

func (s *SQLiteStore) GetUserByUsername(username string) (timesheet.User, error) {
	var user timesheet.User
	var role string
	err := s.db.QueryRow(
		`SELECT id, username, role FROM users WHERE username = ?;`, username,
	).Scan(&user.ID, &user.Username, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timesheet.User{}, ErrNotFound
		}
		return timesheet.User{}, fmt.Errorf("query user %q: %w", username, err)
	}
	user.Role = timesheet.Role(role)
	return user, nil
}

func (s *SQLiteStore) ListUsers() ([]timesheet.User, error) {
	rows, err := s.db.Query(`SELECT id, username, role FROM users ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]timesheet.User, 0, 16)
	for rows.Next() {
		var user timesheet.User
		var role string
		if err := rows.Scan(&user.ID, &user.Username, &role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		user.Role = timesheet.Role(role)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// ResolveIdentity maps a username and declared role to the matching user
// id. This is a lookup, not authentication: no credential is checked.
func (s *SQLiteStore) ResolveIdentity(username string, role timesheet.Role) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM users WHERE username = ? AND role = ?;`,
		username, string(role),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("resolve identity %q/%s: %w", username, role, err)
	}
	return id, nil
}

// CountEntriesForUser reports how many timesheet rows reference the
// user. Destructive paths show this before deleting, since deletes do
// not cascade.
func (s *SQLiteStore) CountEntriesForUser(id int64) (int64, error) {
	var n int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM timesheets WHERE user_id = ?;`, id,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries for user %d: %w", id, err)
	}
	return n, nil
}

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"timecard/internal/timeutil"
	"timecard/timesheet"
)

func (s *SQLiteStore) CreateEntry(userID, projectCodeID int64, date time.Time, hours float64) (timesheet.Entry, error) {
	res, err := s.db.Exec(
		`INSERT INTO timesheets (user_id, project_code_id, date, hours, status, comments)
		 VALUES (?, ?, ?, ?, ?, NULL);`,
		userID, projectCodeID, timeutil.FormatDay(date), hours, string(timesheet.StatusPending),
	)
	if err != nil {
		return timesheet.Entry{}, wrapConstraint(err, "insert timesheet entry")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("read inserted entry id: %w", err)
	}

	return timesheet.Entry{
		ID:            id,
		UserID:        userID,
		ProjectCodeID: projectCodeID,
		Date:          date,
		Hours:         hours,
		Status:        timesheet.StatusPending,
	}, nil
}

// UpdateEntry is the owner mutation path: only project code, date, and
// hours may change, and only when the id/owner pair matches a row. Zero
// rows affected surfaces as ErrNotFound without revealing whether the
// entry exists.
func (s *SQLiteStore) UpdateEntry(id, ownerID, projectCodeID int64, date time.Time, hours float64) error {
	res, err := s.db.Exec(
		`UPDATE timesheets SET project_code_id = ?, date = ?, hours = ?
		 WHERE id = ? AND user_id = ?;`,
		projectCodeID, timeutil.FormatDay(date), hours, id, ownerID,
	)
	if err != nil {
		return wrapConstraint(err, fmt.Sprintf("update entry %d", id))
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

func (s *SQLiteStore) DeleteEntry(id, ownerID int64) (bool, error) {
	res, err := s.db.Exec(
		`DELETE FROM timesheets WHERE id = ? AND user_id = ?;`, id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("delete entry %d: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read deleted row count: %w", err)
	}
	return rows > 0, nil
}

func (s *SQLiteStore) GetEntry(id int64) (timesheet.Entry, bool, error) {
	var (
		entry   timesheet.Entry
		dateRaw string
		status  string
		comment sql.NullString
	)

	err := s.db.QueryRow(
		`SELECT id, user_id, project_code_id, date, hours, status, comments
		 FROM timesheets WHERE id = ?;`, id,
	).Scan(&entry.ID, &entry.UserID, &entry.ProjectCodeID, &dateRaw, &entry.Hours, &status, &comment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timesheet.Entry{}, false, nil
		}
		return timesheet.Entry{}, false, fmt.Errorf("query entry %d: %w", id, err)
	}

	entry.Date, err = timeutil.ParseDay(dateRaw)
	if err != nil {
		return timesheet.Entry{}, false, fmt.Errorf("parse entry date %q: %w", dateRaw, err)
	}
	entry.Status = timesheet.Status(status)
	entry.Comment = comment.String
	return entry, true, nil
}

// ListEntries returns entries matching the filter in insertion order
// (id ascending). That is the only ordering guarantee.
func (s *SQLiteStore) ListEntries(filter timesheet.EntryFilter) ([]timesheet.Entry, error) {
	query := `SELECT id, user_id, project_code_id, date, hours, status, comments FROM timesheets`
	where, args := filterClauses(filter)
	query += where + ` ORDER BY id;`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := make([]timesheet.Entry, 0, 64)
	for rows.Next() {
		var (
			entry   timesheet.Entry
			dateRaw string
			status  string
			comment sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.ProjectCodeID, &dateRaw, &entry.Hours, &status, &comment); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.Date, err = timeutil.ParseDay(dateRaw)
		if err != nil {
			return nil, fmt.Errorf("parse entry date %q: %w", dateRaw, err)
		}
		entry.Status = timesheet.Status(status)
		entry.Comment = comment.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// ListEntryDetails joins usernames and project code labels onto the
// filtered entries. Orphaned references come back with empty labels.
func (s *SQLiteStore) ListEntryDetails(filter timesheet.EntryFilter) ([]timesheet.EntryDetail, error) {
	query := `
SELECT t.id, t.user_id, t.project_code_id, t.date, t.hours, t.status, t.comments,
	COALESCE(u.username, ''), COALESCE(p.code, '')
FROM timesheets t
LEFT JOIN users u ON u.id = t.user_id
LEFT JOIN project_codes p ON p.id = t.project_code_id`
	where, args := filterClauses(filter)
	query += where + ` ORDER BY t.id;`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entry details: %w", err)
	}
	defer rows.Close()

	details := make([]timesheet.EntryDetail, 0, 64)
	for rows.Next() {
		var (
			detail  timesheet.EntryDetail
			dateRaw string
			status  string
			comment sql.NullString
		)
		if err := rows.Scan(
			&detail.ID, &detail.UserID, &detail.ProjectCodeID, &dateRaw, &detail.Hours,
			&status, &comment, &detail.Username, &detail.Code,
		); err != nil {
			return nil, fmt.Errorf("scan entry detail: %w", err)
		}
		detail.Date, err = timeutil.ParseDay(dateRaw)
		if err != nil {
			return nil, fmt.Errorf("parse entry date %q: %w", dateRaw, err)
		}
		detail.Status = timesheet.Status(status)
		detail.Comment = comment.String
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry details: %w", err)
	}
	return details, nil
}

func filterClauses(filter timesheet.EntryFilter) (string, []any) {
	where := ""
	args := make([]any, 0, 2)
	and := func(clause string, arg any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, arg)
	}

	if filter.UserID != 0 {
		and("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		and("status = ?", string(filter.Status))
	}
	return where, args
}

// SetEntryStatus performs a guarded status transition: the UPDATE only
// matches when the row is still in the expected source status, so a
// transition raced by another caller affects zero rows and reports
// ErrNotFound instead of overwriting.
func (s *SQLiteStore) SetEntryStatus(id int64, from, to timesheet.Status, comment string) error {
	res, err := s.db.Exec(
		`UPDATE timesheets SET status = ?, comments = ? WHERE id = ? AND status = ?;`,
		string(to), comment, id, string(from),
	)
	if err != nil {
		return wrapConstraint(err, fmt.Sprintf("set entry %d status", id))
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

// ResubmitEntry moves a rejected entry owned by ownerID back to pending
// with new hours. Date, project code, and the manager's comment are
// left untouched.
func (s *SQLiteStore) ResubmitEntry(id, ownerID int64, hours float64) error {
	res, err := s.db.Exec(
		`UPDATE timesheets SET hours = ?, status = ?
		 WHERE id = ? AND user_id = ? AND status = ?;`,
		hours, string(timesheet.StatusPending), id, ownerID, string(timesheet.StatusRejected),
	)
	if err != nil {
		return wrapConstraint(err, fmt.Sprintf("resubmit entry %d", id))
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

package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"timecard/timesheet"
)

func (s *SQLiteStore) CreateProjectCode(code, description string) (timesheet.ProjectCode, error) {
	res, err := s.db.Exec(
		`INSERT INTO project_codes (code, description) VALUES (?, ?);`,
		code, description,
	)
	if err != nil {
		return timesheet.ProjectCode{}, wrapConstraint(err, fmt.Sprintf("insert project code %q", code))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return timesheet.ProjectCode{}, fmt.Errorf("read inserted project code id: %w", err)
	}
	return timesheet.ProjectCode{ID: id, Code: code, Description: description}, nil
}

func (s *SQLiteStore) UpdateProjectCode(id int64, code, description string) error {
	res, err := s.db.Exec(
		`UPDATE project_codes SET code = ?, description = ? WHERE id = ?;`,
		code, description, id,
	)
	if err != nil {
		return wrapConstraint(err, fmt.Sprintf("update project code %d", id))
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

func (s *SQLiteStore) DeleteProjectCode(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM project_codes WHERE id = ?;`, id)
	if err != nil {
		return false, fmt.Errorf("delete project code %d: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read deleted row count: %w", err)
	}
	return rows > 0, nil
}

func (s *SQLiteStore) GetProjectCode(id int64) (timesheet.ProjectCode, error) {
	var pc timesheet.ProjectCode
	err := s.db.QueryRow(
		`SELECT id, code, description FROM project_codes WHERE id = ?;`, id,
	).Scan(&pc.ID, &pc.Code, &pc.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timesheet.ProjectCode{}, ErrNotFound
		}
		return timesheet.ProjectCode{}, fmt.Errorf("query project code %d: %w", id, err)
	}
	return pc, nil
}

// GetProjectCodeByCode resolves a code label to its row, for callers
// that take the human-facing code instead of an id (import, CLI).
func (s *SQLiteStore) GetProjectCodeByCode(code string) (timesheet.ProjectCode, error) {
	var pc timesheet.ProjectCode
	err := s.db.QueryRow(
		`SELECT id, code, description FROM project_codes WHERE code = ?;`, code,
	).Scan(&pc.ID, &pc.Code, &pc.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timesheet.ProjectCode{}, ErrNotFound
		}
		return timesheet.ProjectCode{}, fmt.Errorf("query project code %q: %w", code, err)
	}
	return pc, nil
}

func (s *SQLiteStore) ListProjectCodes() ([]timesheet.ProjectCode, error) {
	rows, err := s.db.Query(`SELECT id, code, description FROM project_codes ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("query project codes: %w", err)
	}
	defer rows.Close()

	codes := make([]timesheet.ProjectCode, 0, 16)
	for rows.Next() {
		var pc timesheet.ProjectCode
		if err := rows.Scan(&pc.ID, &pc.Code, &pc.Description); err != nil {
			return nil, fmt.Errorf("scan project code: %w", err)
		}
		codes = append(codes, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project codes: %w", err)
	}
	return codes, nil
}

func (s *SQLiteStore) CountEntriesForProjectCode(id int64) (int64, error) {
	var n int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM timesheets WHERE project_code_id = ?;`, id,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries for project code %d: %w", id, err)
	}
	return n, nil
}

package importer

import (
	"errors"
	"fmt"
	"strconv"

	"timecard/access"
	"timecard/internal/timeutil"
	"timecard/storage"
	"timecard/workflow"
)

type SkippedRow struct {
	Path      string
	RowNumber int
	Reason    string
}

type Result struct {
	FilesProcessed int
	RowsRead       int
	RowsCreated    int
	RowsSkipped    int
	Skipped        []SkippedRow
}

type Service struct {
	store *storage.SQLiteStore
	flow  *workflow.Service
}

func NewService(store *storage.SQLiteStore, flow *workflow.Service) *Service {
	return &Service{store: store, flow: flow}
}

// Run imports the given files as pending entries. Only managers may
// bulk-import on behalf of other users. Each created entry is owned by
// the user named in its row and goes through the same hours validation
// as an interactive submission.
func (s *Service) Run(actor access.Identity, paths []string, format string) (*Result, error) {
	if !actor.IsManager() {
		return nil, fmt.Errorf("%w: importing requires the manager role", workflow.ErrForbidden)
	}

	result := &Result{}
	for _, path := range paths {
		sourceFormat, err := InferFormat(path, format)
		if err != nil {
			return nil, err
		}
		reader, err := ReaderForFormat(sourceFormat)
		if err != nil {
			return nil, err
		}

		records, err := reader.Read(path)
		if err != nil {
			return nil, err
		}

		result.FilesProcessed++
		result.RowsRead += len(records)
		for _, record := range records {
			if reason, ok := s.importRecord(record); !ok {
				result.RowsSkipped++
				result.Skipped = append(result.Skipped, SkippedRow{
					Path:      path,
					RowNumber: record.RowNumber,
					Reason:    reason,
				})
				continue
			}
			result.RowsCreated++
		}
	}

	return result, nil
}

func (s *Service) importRecord(record Record) (string, bool) {
	username := record.Get("username", "user")
	code := record.Get("projectcode", "project", "code")
	dateRaw := record.Get("date", "day")
	hoursRaw := record.Get("hours")

	if username == "" || code == "" || dateRaw == "" || hoursRaw == "" {
		return "missing username, project code, date, or hours", false
	}

	owner, err := s.store.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Sprintf("unknown user %q", username), false
		}
		return err.Error(), false
	}

	projectCode, err := s.store.GetProjectCodeByCode(code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Sprintf("unknown project code %q", code), false
		}
		return err.Error(), false
	}

	date, err := timeutil.ParseDay(dateRaw)
	if err != nil {
		return fmt.Sprintf("invalid date %q (want %s)", dateRaw, timeutil.DayLayout), false
	}

	hours, err := strconv.ParseFloat(hoursRaw, 64)
	if err != nil {
		return fmt.Sprintf("invalid hours %q", hoursRaw), false
	}

	ownerIdentity := access.Identity{UserID: owner.ID, Username: owner.Username, Role: owner.Role}
	if _, err := s.flow.SubmitEntry(ownerIdentity, projectCode.ID, date, hours); err != nil {
		return err.Error(), false
	}

	return "", true
}

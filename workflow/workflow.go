// Package workflow implements the approval state machine for timesheet
// entries and enforces which actor may drive each transition. The role
// checks live here, not in any UI: every operation takes an explicit
// access.Identity and rejects wrong actors with ErrForbidden regardless
// of how the caller reached it.
//
// Concurrent reviews of the same entry are resolved by the store's
// status-guarded updates: the loser of a race sees ErrNotFound rather
// than silently overwriting a completed transition.
package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"timecard/access"
	"timecard/storage"
	"timecard/timesheet"
)

var (
	// ErrForbidden means the actor's role or identity does not permit
	// the attempted operation.
	ErrForbidden = errors.New("actor not permitted to perform this action")

	// ErrValidation means an input value is outside its allowed range
	// and nothing was written.
	ErrValidation = errors.New("invalid input")

	// ErrInvalidTransition means the entry is not in a status the
	// requested action can leave from.
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// Action is a workflow transition trigger.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionResubmit Action = "resubmit"
)

// transitions is the full state machine: source status per action.
// Approved has no outgoing edges; approval is terminal.
var transitions = map[Action]timesheet.Status{
	ActionApprove:  timesheet.StatusPending,
	ActionReject:   timesheet.StatusPending,
	ActionResubmit: timesheet.StatusRejected,
}

// CanTransition reports whether action may be applied to an entry in
// the given status.
func CanTransition(from timesheet.Status, action Action) bool {
	source, ok := transitions[action]
	return ok && source == from
}

type Service struct {
	store    *storage.SQLiteStore
	validate *validator.Validate
}

func New(store *storage.SQLiteStore) *Service {
	return &Service{
		store:    store,
		validate: validator.New(),
	}
}

type entryInput struct {
	ProjectCodeID int64   `validate:"gt=0"`
	Hours         float64 `validate:"gte=0,lte=24"`
}

type hoursInput struct {
	Hours float64 `validate:"gte=0,lte=24"`
}

func (s *Service) checkInput(projectCodeID int64, hours float64) error {
	input := entryInput{ProjectCodeID: projectCodeID, Hours: hours}
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// SubmitEntry creates a pending entry owned by the actor. Hours must be
// within [0, 24]; violations return ErrValidation and write nothing.
func (s *Service) SubmitEntry(actor access.Identity, projectCodeID int64, date time.Time, hours float64) (timesheet.Entry, error) {
	if err := s.checkInput(projectCodeID, hours); err != nil {
		return timesheet.Entry{}, err
	}
	return s.store.CreateEntry(actor.UserID, projectCodeID, date, hours)
}

// UpdateEntry lets the owner change project code, date, and hours of
// their own entry. A mismatched owner surfaces as storage.ErrNotFound;
// the caller learns nothing about whether the id exists.
func (s *Service) UpdateEntry(actor access.Identity, id, projectCodeID int64, date time.Time, hours float64) error {
	if err := s.checkInput(projectCodeID, hours); err != nil {
		return err
	}
	return s.store.UpdateEntry(id, actor.UserID, projectCodeID, date, hours)
}

// DeleteEntry removes the actor's own entry at any status.
func (s *Service) DeleteEntry(actor access.Identity, id int64) error {
	deleted, err := s.store.DeleteEntry(id, actor.UserID)
	if err != nil {
		return err
	}
	if !deleted {
		return storage.ErrNotFound
	}
	return nil
}

// Resubmit moves the actor's rejected entry back to pending with new
// hours. Date and project code are preserved, and the manager's comment
// stays attached so the owner's response remains visible.
func (s *Service) Resubmit(actor access.Identity, id int64, hours float64) error {
	if err := s.validate.Struct(hoursInput{Hours: hours}); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.store.ResubmitEntry(id, actor.UserID, hours)
}

// Approve marks a pending entry approved with the manager's comment.
// Approval is terminal.
func (s *Service) Approve(actor access.Identity, id int64, comment string) error {
	return s.review(actor, id, ActionApprove, timesheet.StatusApproved, comment)
}

// Reject marks a pending entry rejected with the manager's comment. The
// owner may later resubmit.
func (s *Service) Reject(actor access.Identity, id int64, comment string) error {
	return s.review(actor, id, ActionReject, timesheet.StatusRejected, comment)
}

func (s *Service) review(actor access.Identity, id int64, action Action, to timesheet.Status, comment string) error {
	if !actor.IsManager() {
		return fmt.Errorf("%w: %s requires the manager role", ErrForbidden, action)
	}

	entry, found, err := s.store.GetEntry(id)
	if err != nil {
		return err
	}
	if !found {
		return storage.ErrNotFound
	}
	if entry.UserID == actor.UserID {
		return fmt.Errorf("%w: managers cannot review their own entries", ErrForbidden)
	}
	if !CanTransition(entry.Status, action) {
		return fmt.Errorf("%w: cannot %s an entry in status %q", ErrInvalidTransition, action, entry.Status)
	}

	return s.store.SetEntryStatus(id, transitions[action], to, comment)
}

// ListMine returns the actor's own entries, optionally narrowed to one
// status.
func (s *Service) ListMine(actor access.Identity, status timesheet.Status) ([]timesheet.EntryDetail, error) {
	return s.store.ListEntryDetails(timesheet.EntryFilter{UserID: actor.UserID, Status: status})
}

// ListPending returns all pending entries for review. Manager only.
func (s *Service) ListPending(actor access.Identity) ([]timesheet.EntryDetail, error) {
	if !actor.IsManager() {
		return nil, fmt.Errorf("%w: reviewing requires the manager role", ErrForbidden)
	}
	return s.store.ListEntryDetails(timesheet.EntryFilter{Status: timesheet.StatusPending})
}

// ListAll returns every entry. Manager only.
func (s *Service) ListAll(actor access.Identity) ([]timesheet.EntryDetail, error) {
	if !actor.IsManager() {
		return nil, fmt.Errorf("%w: listing all entries requires the manager role", ErrForbidden)
	}
	return s.store.ListEntryDetails(timesheet.EntryFilter{})
}

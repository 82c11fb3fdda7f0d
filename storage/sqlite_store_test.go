package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"timecard/timesheet"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "timecard_test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustDay(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse day %q: %v", value, err)
	}
	return parsed
}

func seedUserAndProject(t *testing.T, store *SQLiteStore) (timesheet.User, timesheet.ProjectCode) {
	t.Helper()

	user, err := store.CreateUser("alice", timesheet.RoleContributor)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	code, err := store.CreateProjectCode("ENG", "Engineering")
	if err != nil {
		t.Fatalf("create project code: %v", err)
	}
	return user, code
}

func TestSQLiteStore_SchemaIsIdempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "timecard_test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, err := store.CreateUser("alice", timesheet.RoleContributor); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer reopened.Close()

	users, err := reopened.ListUsers()
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0].Username != "alice" {
		t.Fatalf("expected alice to survive reopen, got %+v", users)
	}
}

func TestSQLiteStore_DuplicateUsernameIsConstraintViolation(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if _, err := store.CreateUser("alice", timesheet.RoleContributor); err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err := store.CreateUser("alice", timesheet.RoleManager)
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}
}

func TestSQLiteStore_InvalidRoleIsConstraintViolation(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	_, err := store.CreateUser("bob", timesheet.Role("admin"))
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint for enum violation, got %v", err)
	}
}

func TestSQLiteStore_DuplicateProjectCodeIsConstraintViolation(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if _, err := store.CreateProjectCode("ENG", "Engineering"); err != nil {
		t.Fatalf("create project code: %v", err)
	}

	_, err := store.CreateProjectCode("ENG", "duplicate")
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}
}

func TestSQLiteStore_NegativeHoursRejectedByCheckConstraint(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	user, code := seedUserAndProject(t, store)

	_, err := store.CreateEntry(user.ID, code.ID, mustDay(t, "2024-01-05"), -1)
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint for negative hours, got %v", err)
	}

	entries, err := store.ListEntries(timesheet.EntryFilter{})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no rows after failed insert, got %d", len(entries))
	}
}

func TestSQLiteStore_CreateEntryStartsPendingWithoutComment(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	user, code := seedUserAndProject(t, store)

	created, err := store.CreateEntry(user.ID, code.ID, mustDay(t, "2024-01-05"), 8)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	entry, found, err := store.GetEntry(created.ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if !found {
		t.Fatalf("expected entry %d to exist", created.ID)
	}
	if entry.Status != timesheet.StatusPending {
		t.Fatalf("expected pending status, got %s", entry.Status)
	}
	if entry.Comment != "" {
		t.Fatalf("expected empty comment, got %q", entry.Comment)
	}
}

func TestSQLiteStore_OwnerScopedMutationsAffectZeroRowsForWrongOwner(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	user, code := seedUserAndProject(t, store)
	other, err := store.CreateUser("mallory", timesheet.RoleContributor)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	entry, err := store.CreateEntry(user.ID, code.ID, mustDay(t, "2024-01-05"), 8)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	if err := store.UpdateEntry(entry.ID, other.ID, code.ID, mustDay(t, "2024-01-06"), 4); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong-owner update, got %v", err)
	}

	deleted, err := store.DeleteEntry(entry.ID, other.ID)
	if err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	if deleted {
		t.Fatalf("expected wrong-owner delete to affect zero rows")
	}

	unchanged, _, err := store.GetEntry(entry.ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if unchanged.Hours != 8 || !unchanged.Date.Equal(mustDay(t, "2024-01-05")) {
		t.Fatalf("entry changed despite wrong owner: %+v", unchanged)
	}
}

func TestSQLiteStore_ListEntriesOrderedByInsertion(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	user, code := seedUserAndProject(t, store)

	days := []string{"2024-01-07", "2024-01-05", "2024-01-06"}
	for _, day := range days {
		if _, err := store.CreateEntry(user.ID, code.ID, mustDay(t, day), 8); err != nil {
			t.Fatalf("create entry for %s: %v", day, err)
		}
	}

	entries, err := store.ListEntries(timesheet.EntryFilter{})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].ID <= entries[i-1].ID {
			t.Fatalf("expected id-ascending order, got %d then %d", entries[i-1].ID, entries[i].ID)
		}
	}
}

func TestSQLiteStore_ListEntriesFilters(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	user, code := seedUserAndProject(t, store)
	other, err := store.CreateUser("bob", timesheet.RoleContributor)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	mine, err := store.CreateEntry(user.ID, code.ID, mustDay(t, "2024-01-05"), 8)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := store.CreateEntry(other.ID, code.ID, mustDay(t, "2024-01-05"), 6); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if err := store.SetEntryStatus(mine.ID, timesheet.StatusPending, timesheet.StatusApproved, "ok"); err != nil {
		t.Fatalf("approve entry: %v", err)
	}

	tests := []struct {
		name   string
		filter timesheet.EntryFilter
		want   int
	}{
		{name: "no filter", filter: timesheet.EntryFilter{}, want: 2},
		{name: "by owner", filter: timesheet.EntryFilter{UserID: user.ID}, want: 1},
		{name: "by status", filter: timesheet.EntryFilter{Status: timesheet.StatusPending}, want: 1},
		{name: "owner and status", filter: timesheet.EntryFilter{UserID: user.ID, Status: timesheet.StatusApproved}, want: 1},
		{name: "owner and status no match", filter: timesheet.EntryFilter{UserID: other.ID, Status: timesheet.StatusApproved}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := store.ListEntries(tt.filter)
			if err != nil {
				t.Fatalf("list entries: %v", err)
			}
			if len(entries) != tt.want {
				t.Fatalf("expected %d entries, got %d", tt.want, len(entries))
			}
		})
	}
}

func TestSQLiteStore_SetEntryStatusGuardsSourceStatus(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	user, code := seedUserAndProject(t, store)

	entry, err := store.CreateEntry(user.ID, code.ID, mustDay(t, "2024-01-05"), 8)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	if err := store.SetEntryStatus(entry.ID, timesheet.StatusPending, timesheet.StatusApproved, "ok"); err != nil {
		t.Fatalf("approve entry: %v", err)
	}

	// The row already left pending; a raced second transition matches
	// nothing.
	err = store.SetEntryStatus(entry.ID, timesheet.StatusPending, timesheet.StatusRejected, "late")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for raced transition, got %v", err)
	}

	current, _, err := store.GetEntry(entry.ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if current.Status != timesheet.StatusApproved || current.Comment != "ok" {
		t.Fatalf("expected approved/ok to survive, got %s/%q", current.Status, current.Comment)
	}
}

func TestSQLiteStore_ResubmitPreservesDateProjectAndComment(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	user, code := seedUserAndProject(t, store)

	entry, err := store.CreateEntry(user.ID, code.ID, mustDay(t, "2024-01-05"), 8)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if err := store.SetEntryStatus(entry.ID, timesheet.StatusPending, timesheet.StatusRejected, "missing approval"); err != nil {
		t.Fatalf("reject entry: %v", err)
	}

	if err := store.ResubmitEntry(entry.ID, user.ID, 6); err != nil {
		t.Fatalf("resubmit entry: %v", err)
	}

	resubmitted, _, err := store.GetEntry(entry.ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if resubmitted.Status != timesheet.StatusPending {
		t.Fatalf("expected pending after resubmit, got %s", resubmitted.Status)
	}
	if resubmitted.Hours != 6 {
		t.Fatalf("expected hours 6 after resubmit, got %.2f", resubmitted.Hours)
	}
	if resubmitted.Comment != "missing approval" {
		t.Fatalf("expected manager comment to survive resubmit, got %q", resubmitted.Comment)
	}
	if !resubmitted.Date.Equal(mustDay(t, "2024-01-05")) || resubmitted.ProjectCodeID != code.ID {
		t.Fatalf("expected date and project code to survive resubmit, got %+v", resubmitted)
	}
}

func TestSQLiteStore_ResubmitRequiresRejectedStatusAndOwner(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	user, code := seedUserAndProject(t, store)
	other, err := store.CreateUser("bob", timesheet.RoleContributor)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	entry, err := store.CreateEntry(user.ID, code.ID, mustDay(t, "2024-01-05"), 8)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	if err := store.ResubmitEntry(entry.ID, user.ID, 6); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for pending resubmit, got %v", err)
	}

	if err := store.SetEntryStatus(entry.ID, timesheet.StatusPending, timesheet.StatusRejected, "no"); err != nil {
		t.Fatalf("reject entry: %v", err)
	}
	if err := store.ResubmitEntry(entry.ID, other.ID, 6); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong-owner resubmit, got %v", err)
	}
}

func TestSQLiteStore_ResolveIdentity(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	user, _ := seedUserAndProject(t, store)

	first, err := store.ResolveIdentity("alice", timesheet.RoleContributor)
	if err != nil {
		t.Fatalf("resolve identity: %v", err)
	}
	second, err := store.ResolveIdentity("alice", timesheet.RoleContributor)
	if err != nil {
		t.Fatalf("resolve identity again: %v", err)
	}
	if first != user.ID || second != user.ID {
		t.Fatalf("expected stable id %d, got %d then %d", user.ID, first, second)
	}

	if _, err := store.ResolveIdentity("alice", timesheet.RoleManager); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for role mismatch, got %v", err)
	}
	if _, err := store.ResolveIdentity("nobody", timesheet.RoleContributor); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown username, got %v", err)
	}
}

func TestSQLiteStore_DeleteReferencedRowsOrphansEntries(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	user, code := seedUserAndProject(t, store)

	entry, err := store.CreateEntry(user.ID, code.ID, mustDay(t, "2024-01-05"), 8)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	count, err := store.CountEntriesForUser(user.ID)
	if err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 referencing entry, got %d", count)
	}

	deleted, err := store.DeleteUser(user.ID)
	if err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if !deleted {
		t.Fatalf("expected user to be deleted")
	}

	details, err := store.ListEntryDetails(timesheet.EntryFilter{})
	if err != nil {
		t.Fatalf("list entry details: %v", err)
	}
	if len(details) != 1 || details[0].ID != entry.ID {
		t.Fatalf("expected orphaned entry to survive, got %+v", details)
	}
	if details[0].Username != "" {
		t.Fatalf("expected empty username for orphaned entry, got %q", details[0].Username)
	}
	if details[0].Code != "ENG" {
		t.Fatalf("expected project code label, got %q", details[0].Code)
	}
}

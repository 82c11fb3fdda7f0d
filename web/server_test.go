package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"timecard/storage"
	"timecard/timesheet"
	"timecard/workflow"
)

type serverFixture struct {
	store  *storage.SQLiteStore
	server *Server
	alice  timesheet.User
	frank  timesheet.User
	eng    timesheet.ProjectCode
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})

	alice, err := store.CreateUser("alice", timesheet.RoleContributor)
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	frank, err := store.CreateUser("frank", timesheet.RoleManager)
	if err != nil {
		t.Fatalf("create frank: %v", err)
	}
	eng, err := store.CreateProjectCode("ENG", "Engineering")
	if err != nil {
		t.Fatalf("create project code: %v", err)
	}

	return &serverFixture{
		store:  store,
		server: NewServer(store, workflow.New(store)),
		alice:  alice,
		frank:  frank,
		eng:    eng,
	}
}

func (f *serverFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, path, nil)
	recorder := httptest.NewRecorder()
	f.server.ServeHTTP(recorder, request)
	return recorder
}

func (f *serverFixture) post(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	f.server.ServeHTTP(recorder, request)
	return recorder
}

func asForm(user timesheet.User, extra url.Values) url.Values {
	form := url.Values{}
	form.Set("as", user.Username)
	form.Set("role", string(user.Role))
	for key, values := range extra {
		for _, value := range values {
			form.Add(key, value)
		}
	}
	return form
}

func TestLoginPage(t *testing.T) {
	t.Parallel()

	fixture := newServerFixture(t)
	recorder := fixture.get(t, "/")

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "timecard") {
		t.Fatalf("expected login page body, got %q", recorder.Body.String())
	}
}

func TestLogin_RedirectsByRole(t *testing.T) {
	t.Parallel()

	fixture := newServerFixture(t)

	tests := []struct {
		name string
		user timesheet.User
		want string
	}{
		{name: "contributor", user: fixture.alice, want: "/me"},
		{name: "manager", user: fixture.frank, want: "/review"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := fixture.post(t, "/login", asForm(tc.user, nil))
			if recorder.Code != http.StatusSeeOther {
				t.Fatalf("expected 303, got %d", recorder.Code)
			}
			location := recorder.Header().Get("Location")
			if !strings.HasPrefix(location, tc.want+"?") {
				t.Fatalf("expected redirect to %s, got %q", tc.want, location)
			}
		})
	}
}

func TestLogin_UnknownIdentity(t *testing.T) {
	t.Parallel()

	fixture := newServerFixture(t)

	form := url.Values{}
	form.Set("as", "ghost")
	form.Set("role", "user")
	recorder := fixture.post(t, "/login", form)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestEntryLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	fixture := newServerFixture(t)

	// alice creates an entry
	recorder := fixture.post(t, "/entries", asForm(fixture.alice, url.Values{
		"project_code_id": {strconv.FormatInt(fixture.eng.ID, 10)},
		"date":            {"2024-01-05"},
		"hours":           {"7.5"},
	}))
	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("create entry: expected 303, got %d (%s)", recorder.Code, recorder.Body.String())
	}

	entries, err := fixture.store.ListEntries(timesheet.EntryFilter{UserID: fixture.alice.ID})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != timesheet.StatusPending {
		t.Fatalf("expected one pending entry, got %+v", entries)
	}
	entryID := strconv.FormatInt(entries[0].ID, 10)

	// frank rejects it with a comment
	recorder = fixture.post(t, "/review/reject", asForm(fixture.frank, url.Values{
		"id":      {entryID},
		"comment": {"missing approval"},
	}))
	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("reject: expected 303, got %d (%s)", recorder.Code, recorder.Body.String())
	}

	// alice resubmits with corrected hours
	recorder = fixture.post(t, "/entries/resubmit", asForm(fixture.alice, url.Values{
		"id":    {entryID},
		"hours": {"6"},
	}))
	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("resubmit: expected 303, got %d (%s)", recorder.Code, recorder.Body.String())
	}

	entry, found, err := fixture.store.GetEntry(entries[0].ID)
	if err != nil || !found {
		t.Fatalf("get entry: found=%v err=%v", found, err)
	}
	if entry.Status != timesheet.StatusPending || entry.Hours != 6 {
		t.Fatalf("expected pending entry with 6 hours, got %+v", entry)
	}
	if entry.Comment != "missing approval" {
		t.Fatalf("resubmit should keep the reviewer comment, got %q", entry.Comment)
	}

	// frank approves
	recorder = fixture.post(t, "/review/approve", asForm(fixture.frank, url.Values{"id": {entryID}}))
	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("approve: expected 303, got %d (%s)", recorder.Code, recorder.Body.String())
	}

	entry, _, err = fixture.store.GetEntry(entries[0].ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if entry.Status != timesheet.StatusApproved {
		t.Fatalf("expected approved, got %s", entry.Status)
	}
}

func TestContributorCannotReview(t *testing.T) {
	t.Parallel()

	fixture := newServerFixture(t)

	recorder := fixture.post(t, "/entries", asForm(fixture.alice, url.Values{
		"project_code_id": {strconv.FormatInt(fixture.eng.ID, 10)},
		"date":            {"2024-01-05"},
		"hours":           {"8"},
	}))
	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("create entry: expected 303, got %d", recorder.Code)
	}

	recorder = fixture.post(t, "/review/approve", asForm(fixture.alice, url.Values{"id": {"1"}}))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}

	recorder = fixture.get(t, "/review?as=alice&role=user")
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for contributor review page, got %d", recorder.Code)
	}
}

func TestCreateEntry_InvalidHours(t *testing.T) {
	t.Parallel()

	fixture := newServerFixture(t)

	recorder := fixture.post(t, "/entries", asForm(fixture.alice, url.Values{
		"project_code_id": {strconv.FormatInt(fixture.eng.ID, 10)},
		"date":            {"2024-01-05"},
		"hours":           {"30"},
	}))
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", recorder.Code)
	}

	entries, err := fixture.store.ListEntries(timesheet.EntryFilter{UserID: fixture.alice.ID})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected submission should not persist, got %d entries", len(entries))
	}
}

func TestUserManagementRequiresManager(t *testing.T) {
	t.Parallel()

	fixture := newServerFixture(t)

	recorder := fixture.post(t, "/users", asForm(fixture.alice, url.Values{
		"username": {"carol"},
		"new_role": {"user"},
	}))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}

	recorder = fixture.post(t, "/users", asForm(fixture.frank, url.Values{
		"username": {"carol"},
		"new_role": {"user"},
	}))
	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d (%s)", recorder.Code, recorder.Body.String())
	}
	if _, err := fixture.store.GetUserByUsername("carol"); err != nil {
		t.Fatalf("carol should exist: %v", err)
	}

	// duplicate username surfaces as a conflict
	recorder = fixture.post(t, "/users", asForm(fixture.frank, url.Values{
		"username": {"carol"},
		"new_role": {"user"},
	}))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", recorder.Code)
	}
}

func TestManagerPageListsPendingEntries(t *testing.T) {
	t.Parallel()

	fixture := newServerFixture(t)

	recorder := fixture.post(t, "/entries", asForm(fixture.alice, url.Values{
		"project_code_id": {strconv.FormatInt(fixture.eng.ID, 10)},
		"date":            {"2024-01-05"},
		"hours":           {"8"},
	}))
	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("create entry: expected 303, got %d", recorder.Code)
	}

	recorder = fixture.get(t, "/review?as=frank&role=manager")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, "alice") || !strings.Contains(body, "ENG") {
		t.Fatalf("expected pending entry in manager page, got:\n%s", body)
	}
}

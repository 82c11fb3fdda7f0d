// Package web serves a localhost-only single-user UI; it intentionally
// has no auth/CSRF protection in this mode. The acting identity travels
// as form values and is resolved per request; the workflow layer still
// enforces all role and ownership rules server-side.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"timecard/access"
	"timecard/internal/timeutil"
	"timecard/storage"
	"timecard/timesheet"
	"timecard/workflow"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	store *storage.SQLiteStore
	flow  *workflow.Service

	mux       chi.Router
	templates *template.Template
}

type contributorPageView struct {
	Title        string
	Identity     access.Identity
	RoleValue    string
	Entries      []timesheet.EntryDetail
	ProjectCodes []timesheet.ProjectCode
	Notice       string
}

type managerPageView struct {
	Title        string
	Identity     access.Identity
	RoleValue    string
	Pending      []timesheet.EntryDetail
	AllEntries   []timesheet.EntryDetail
	Users        []timesheet.User
	ProjectCodes []timesheet.ProjectCode
	Notice       string
}

type loginPageView struct {
	Title string
	Error string
}

func NewServer(store *storage.SQLiteStore, flow *workflow.Service) *Server {
	templates := template.Must(template.New("").Funcs(template.FuncMap{
		"formatDay": timeutil.FormatDay,
	}).ParseFS(templateFS, "templates/*.html"))

	s := &Server{
		store:     store,
		flow:      flow,
		templates: templates,
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	router.Get("/", s.handleLoginPage)
	router.Post("/login", s.handleLogin)

	router.Get("/me", s.handleContributorPage)
	router.Post("/entries", s.handleCreateEntry)
	router.Post("/entries/edit", s.handleEditEntry)
	router.Post("/entries/delete", s.handleDeleteEntry)
	router.Post("/entries/resubmit", s.handleResubmitEntry)

	router.Get("/review", s.handleManagerPage)
	router.Post("/review/approve", s.handleApprove)
	router.Post("/review/reject", s.handleReject)
	router.Post("/users", s.handleCreateUser)
	router.Post("/users/delete", s.handleDeleteUser)
	router.Post("/projects", s.handleCreateProject)
	router.Post("/projects/delete", s.handleDeleteProject)

	s.mux = router
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, name string, view any) {
	if err := s.templates.ExecuteTemplate(w, name, view); err != nil {
		http.Error(w, fmt.Sprintf("render %s: %v", name, err), http.StatusInternalServerError)
	}
}

// identity resolves the actor carried in the request's form or query
// values. There is no session: every request names its actor.
func (s *Server) identity(r *http.Request) (access.Identity, error) {
	username := r.FormValue("as")
	role := timesheet.Role(r.FormValue("role"))
	return access.Resolve(s.store, username, role)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrUnknownIdentity):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, workflow.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, workflow.ErrValidation), errors.Is(err, workflow.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, storage.ErrConstraint):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func dashboardPath(identity access.Identity) string {
	page := "/me"
	if identity.IsManager() {
		page = "/review"
	}
	return fmt.Sprintf("%s?as=%s&role=%s", page, identity.Username, identity.Role)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", loginPageView{Title: "timecard"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identity(r)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, "login.html", loginPageView{Title: "timecard", Error: err.Error()})
		return
	}
	http.Redirect(w, r, dashboardPath(identity), http.StatusSeeOther)
}

func (s *Server) handleContributorPage(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := s.flow.ListMine(identity, "")
	if err != nil {
		writeError(w, err)
		return
	}
	codes, err := s.store.ListProjectCodes()
	if err != nil {
		writeError(w, err)
		return
	}

	s.render(w, "contributor.html", contributorPageView{
		Title:        "My timesheets",
		Identity:     identity,
		RoleValue:    string(identity.Role),
		Entries:      entries,
		ProjectCodes: codes,
		Notice:       r.URL.Query().Get("notice"),
	})
}

func (s *Server) handleManagerPage(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	pending, err := s.flow.ListPending(identity)
	if err != nil {
		writeError(w, err)
		return
	}
	all, err := s.flow.ListAll(identity)
	if err != nil {
		writeError(w, err)
		return
	}
	users, err := s.store.ListUsers()
	if err != nil {
		writeError(w, err)
		return
	}
	codes, err := s.store.ListProjectCodes()
	if err != nil {
		writeError(w, err)
		return
	}

	s.render(w, "manager.html", managerPageView{
		Title:        "Review timesheets",
		Identity:     identity,
		RoleValue:    string(identity.Role),
		Pending:      pending,
		AllEntries:   all,
		Users:        users,
		ProjectCodes: codes,
		Notice:       r.URL.Query().Get("notice"),
	})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	projectCodeID, err := formInt64(r, "project_code_id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	date, err := timeutil.ParseDay(r.FormValue("date"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	hours, err := formFloat(r, "hours")
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}

	if _, err := s.flow.SubmitEntry(identity, projectCodeID, date, hours); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, dashboardPath(identity)+"&notice=entry+created", http.StatusSeeOther)
}

func (s *Server) handleEditEntry(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := formInt64(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	projectCodeID, err := formInt64(r, "project_code_id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	date, err := timeutil.ParseDay(r.FormValue("date"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	hours, err := formFloat(r, "hours")
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}

	if err := s.flow.UpdateEntry(identity, id, projectCodeID, date, hours); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, dashboardPath(identity)+"&notice=entry+updated", http.StatusSeeOther)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := formInt64(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	if err := s.flow.DeleteEntry(identity, id); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, dashboardPath(identity)+"&notice=entry+deleted", http.StatusSeeOther)
}

func (s *Server) handleResubmitEntry(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := formInt64(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	hours, err := formFloat(r, "hours")
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}

	if err := s.flow.Resubmit(identity, id, hours); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, dashboardPath(identity)+"&notice=entry+resubmitted", http.StatusSeeOther)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.handleReview(w, r, s.flow.Approve, "entry+approved")
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.handleReview(w, r, s.flow.Reject, "entry+rejected")
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request, review func(access.Identity, int64, string) error, notice string) {
	identity, err := s.identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := formInt64(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	if err := review(identity, id, r.FormValue("comment")); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, dashboardPath(identity)+"&notice="+notice, http.StatusSeeOther)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if !identity.IsManager() {
		writeError(w, fmt.Errorf("%w: managing users requires the manager role", workflow.ErrForbidden))
		return
	}

	role := timesheet.Role(r.FormValue("new_role"))
	if !role.Valid() {
		writeError(w, fmt.Errorf("%w: invalid role %q", workflow.ErrValidation, role))
		return
	}
	if _, err := s.store.CreateUser(r.FormValue("username"), role); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, dashboardPath(identity)+"&notice=user+created", http.StatusSeeOther)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if !identity.IsManager() {
		writeError(w, fmt.Errorf("%w: managing users requires the manager role", workflow.ErrForbidden))
		return
	}

	id, err := formInt64(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	if _, err := s.store.DeleteUser(id); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, dashboardPath(identity)+"&notice=user+deleted", http.StatusSeeOther)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if !identity.IsManager() {
		writeError(w, fmt.Errorf("%w: managing project codes requires the manager role", workflow.ErrForbidden))
		return
	}

	if _, err := s.store.CreateProjectCode(r.FormValue("code"), r.FormValue("description")); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, dashboardPath(identity)+"&notice=project+code+created", http.StatusSeeOther)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if !identity.IsManager() {
		writeError(w, fmt.Errorf("%w: managing project codes requires the manager role", workflow.ErrForbidden))
		return
	}

	id, err := formInt64(r, "id")
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	if _, err := s.store.DeleteProjectCode(id); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, dashboardPath(identity)+"&notice=project+code+deleted", http.StatusSeeOther)
}

func formInt64(r *http.Request, key string) (int64, error) {
	value, err := strconv.ParseInt(r.FormValue(key), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, r.FormValue(key))
	}
	return value, nil
}

func formFloat(r *http.Request, key string) (float64, error) {
	value, err := strconv.ParseFloat(r.FormValue(key), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, r.FormValue(key))
	}
	return value, nil
}

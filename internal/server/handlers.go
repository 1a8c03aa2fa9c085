package server

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tracknotes/internal/accounts"
	"github.com/desertthunder/tracknotes/internal/models"
	"github.com/desertthunder/tracknotes/internal/resolver"
	"github.com/desertthunder/tracknotes/internal/services"
	"github.com/desertthunder/tracknotes/internal/shared"
)

// sessionCookie is the cookie carrying the signed session token.
const sessionCookie = "tracknotes_session"

// AppHandler implements [Handler] for the whole tracknotes HTTP surface:
// lookup, confirmation, account lifecycle, and record persistence.
type AppHandler struct {
	logger    *log.Logger
	resolver  *resolver.Resolver
	manager   *accounts.Manager
	issuer    *accounts.TokenIssuer
	workspace services.Workspace
	pageID    string
	templates *template.Template
}

// AppHandlerOpts contains the collaborators an AppHandler needs.
type AppHandlerOpts struct {
	Logger    *log.Logger
	Resolver  *resolver.Resolver
	Manager   *accounts.Manager
	Issuer    *accounts.TokenIssuer
	Workspace services.Workspace
	PageID    string
}

// NewAppHandler creates the application handler.
func NewAppHandler(opts AppHandlerOpts) *AppHandler {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &AppHandler{
		logger:    opts.Logger,
		resolver:  opts.Resolver,
		manager:   opts.Manager,
		issuer:    opts.Issuer,
		workspace: opts.Workspace,
		pageID:    opts.PageID,
		templates: template.Must(template.New("app").Parse(pageTemplates)),
	}
}

// Routes returns the path patterns this handler serves. The root pattern
// doubles as the 404 fallback for anything unmatched.
func (h *AppHandler) Routes() []string {
	return []string{"/", "/confirm", "/signup", "/login", "/logout", "/save_search", "/history"}
}

// ServeHTTP dispatches by path and method.
func (h *AppHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		switch r.Method {
		case http.MethodGet:
			h.renderPage(w, http.StatusOK, "index", nil)
		case http.MethodPost:
			h.handleLookup(w, r)
		default:
			h.methodNotAllowed(w)
		}
	case "/confirm":
		switch r.Method {
		case http.MethodGet:
			h.handleConfirmForm(w, r)
		case http.MethodPost:
			h.handleConfirmSubmit(w, r)
		default:
			h.methodNotAllowed(w)
		}
	case "/signup":
		h.handleAccountForm(w, r, "signup", h.handleSignup)
	case "/login":
		h.handleAccountForm(w, r, "login", h.handleLogin)
	case "/logout":
		if r.Method != http.MethodGet {
			h.methodNotAllowed(w)
			return
		}
		h.handleLogout(w, r)
	case "/save_search":
		if r.Method != http.MethodPost {
			h.methodNotAllowed(w)
			return
		}
		h.handleSaveSearch(w, r)
	case "/history":
		if r.Method != http.MethodGet {
			h.methodNotAllowed(w)
			return
		}
		h.handleHistory(w, r)
	default:
		h.renderPage(w, http.StatusNotFound, "notfound", nil)
	}
}

// handleLookup resolves the submitted track reference and redirects to the
// confirmation page with the serialized record in the query string.
func (h *AppHandler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ref := r.FormValue("track_url")
	if ref == "" {
		h.renderMessage(w, http.StatusBadRequest, "Please submit a track URL.")
		return
	}

	record, err := h.resolver.Resolve(r.Context(), ref)
	if err != nil {
		h.logger.Error("resolve failed", "ref", ref, "error", err)
		h.renderMessage(w, statusFor(err), messageFor(err))
		return
	}

	content, err := record.Marshal()
	if err != nil {
		h.logger.Error("failed to serialize record", "error", err)
		h.renderMessage(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	http.Redirect(w, r, "/confirm?data="+url.QueryEscape(content), http.StatusSeeOther)
}

// handleConfirmForm shows the pending record for confirmation.
func (h *AppHandler) handleConfirmForm(w http.ResponseWriter, r *http.Request) {
	content := r.URL.Query().Get("data")

	record, err := models.ParseTrackRecord(content)
	if err != nil {
		h.logger.Warn("confirmation payload did not parse", "error", err)
		h.renderMessage(w, http.StatusBadRequest, messageFor(shared.ErrMalformedInput))
		return
	}

	_, signedIn := h.currentSession(r)
	h.renderPage(w, http.StatusOK, "confirm", map[string]any{
		"Record":   record,
		"Content":  content,
		"SignedIn": signedIn,
	})
}

// handleConfirmSubmit parses the confirmed payload and delivers it to the
// note workspace. A payload that does not parse is the user's problem; a
// non-2xx from the workspace is the service's, and the two read differently.
func (h *AppHandler) handleConfirmSubmit(w http.ResponseWriter, r *http.Request) {
	record, err := models.ParseTrackRecord(r.FormValue("confirmed_data"))
	if err != nil {
		h.logger.Warn("confirmation payload did not parse", "error", err)
		h.renderMessage(w, http.StatusBadRequest, "Could not parse the submitted data.")
		return
	}

	status, err := h.workspace.CreatePage(r.Context(), h.pageID, record.Title(), record.Description)
	if err != nil {
		h.logger.Error("workspace delivery failed", "error", err)
		h.renderMessage(w, http.StatusBadGateway, messageFor(shared.ErrDelivery))
		return
	}
	if status < 200 || status >= 300 {
		h.logger.Error("workspace rejected page", "status", status)
		h.renderMessage(w, http.StatusBadGateway, messageFor(shared.ErrDelivery))
		return
	}

	h.renderMessage(w, http.StatusOK, "Sent to your workspace.")
}

// handleAccountForm renders the named account form on GET and runs submit on POST.
func (h *AppHandler) handleAccountForm(w http.ResponseWriter, r *http.Request, page string, submit func(http.ResponseWriter, *http.Request)) {
	switch r.Method {
	case http.MethodGet:
		h.renderPage(w, http.StatusOK, page, nil)
	case http.MethodPost:
		submit(w, r)
	default:
		h.methodNotAllowed(w)
	}
}

func (h *AppHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	_, err := h.manager.Signup(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		h.renderMessage(w, statusFor(err), messageFor(err))
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AppHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	session, err := h.manager.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		h.renderMessage(w, statusFor(err), messageFor(err))
		return
	}

	token, err := h.issuer.Issue(session)
	if err != nil {
		h.logger.Error("failed to issue session token", "error", err)
		h.renderMessage(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AppHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, ok := h.currentSession(r)
	if !ok {
		h.renderMessage(w, http.StatusUnauthorized, messageFor(shared.ErrUnauthorized))
		return
	}

	if err := h.manager.Logout(r.Context(), session); err != nil {
		h.renderMessage(w, statusFor(err), messageFor(err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AppHandler) handleSaveSearch(w http.ResponseWriter, r *http.Request) {
	session, ok := h.currentSession(r)
	if !ok {
		h.renderMessage(w, http.StatusUnauthorized, messageFor(shared.ErrUnauthorized))
		return
	}

	id, err := h.manager.SaveRecord(r.Context(), session, r.FormValue("confirmed_data"))
	if err != nil {
		h.logger.Warn("save_search failed", "error", err)
		h.renderMessage(w, statusFor(err), messageFor(err))
		return
	}

	h.logger.Info("search saved", "id", id, "user", session.Username)
	h.renderMessage(w, http.StatusOK, "Saved to your search history.")
}

func (h *AppHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	session, ok := h.currentSession(r)
	if !ok {
		h.renderMessage(w, http.StatusUnauthorized, messageFor(shared.ErrUnauthorized))
		return
	}

	searches, err := h.manager.History(r.Context(), session)
	if err != nil {
		h.renderMessage(w, statusFor(err), messageFor(err))
		return
	}

	type entry struct {
		Record models.TrackRecord
		Saved  string
	}

	entries := make([]entry, 0, len(searches))
	for _, search := range searches {
		record, err := search.Record()
		if err != nil {
			h.logger.Warn("stored search did not parse", "id", search.ID, "error", err)
			continue
		}
		entries = append(entries, entry{Record: record, Saved: search.CreatedAt.Format("2006-01-02 15:04")})
	}

	h.renderPage(w, http.StatusOK, "history", map[string]any{
		"Username": session.Username,
		"Entries":  entries,
	})
}

// currentSession extracts and verifies the session from the request cookie.
func (h *AppHandler) currentSession(r *http.Request) (models.Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return models.Session{}, false
	}

	session, err := h.issuer.Verify(cookie.Value)
	if err != nil {
		return models.Session{}, false
	}

	return session, true
}

func (h *AppHandler) methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func (h *AppHandler) renderPage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template render failed", "template", name, "error", err)
	}
}

func (h *AppHandler) renderMessage(w http.ResponseWriter, status int, message string) {
	h.renderPage(w, status, "message", map[string]any{"Message": message})
}

// messageFor maps taxonomy errors onto the short, user-visible messages.
// Anything unclassified gets a generic failure line; internal detail only
// ever goes to the log.
func messageFor(err error) string {
	switch {
	case errors.Is(err, shared.ErrLookup):
		return "Could not find that track. Check the URL and try again."
	case errors.Is(err, shared.ErrResolution):
		return "Could not gather track details. Please try again later."
	case errors.Is(err, shared.ErrUsernameTaken):
		return "That username is already taken."
	case errors.Is(err, shared.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, shared.ErrUnauthorized):
		return "Please log in first."
	case errors.Is(err, shared.ErrMalformedInput):
		return "Could not parse the submitted data."
	case errors.Is(err, shared.ErrDelivery):
		return "Could not send to your workspace."
	default:
		return "Something went wrong. Please try again."
	}
}

// statusFor maps taxonomy errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrLookup), errors.Is(err, shared.ErrResolution):
		return http.StatusBadGateway
	case errors.Is(err, shared.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrDelivery):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

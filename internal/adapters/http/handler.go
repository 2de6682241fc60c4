package httpadapter

import (
	"cmp"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PabloGalante/linkpitch/internal/app/contacts"
	"github.com/PabloGalante/linkpitch/internal/app/generation"
	"github.com/PabloGalante/linkpitch/internal/domain"
	"github.com/PabloGalante/linkpitch/internal/metrics"
	"github.com/PabloGalante/linkpitch/internal/observability"
)

const ownerHeader = "X-User-ID"

// AIStatus describes the configured chat capability.
type AIStatus struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Configured bool   `json:"configured"`
}

// Deps are the services the API exposes. Metrics may be nil.
type Deps struct {
	Generation *generation.Service
	Contacts   *contacts.Service
	Scraper    domain.Scraper
	Metrics    *metrics.Metrics
	AIStatus   AIStatus
}

type Server struct {
	deps Deps
	now  func() time.Time
}

func NewServer(deps Deps) http.Handler {
	s := &Server{deps: deps, now: time.Now}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", deps.Metrics.Handler())
	mux.HandleFunc("/ai/status", s.handleAIStatus)

	// /scrape → scrape a profile or company (POST)
	mux.HandleFunc("/scrape", s.handleScrape)

	// /profile → sender profile (GET, PUT)
	mux.HandleFunc("/profile", s.handleProfile)

	// /contacts                    → POST: save contact
	// /contacts/{id}               → GET: contact profile
	// /contacts/{id}/messages      → GET: transcript, POST: append turn
	mux.HandleFunc("/contacts", s.handleContacts)
	mux.HandleFunc("/contacts/", s.handleContactWithID)

	// /messages/generate → generate outreach message (POST)
	mux.HandleFunc("/messages/generate", s.handleGenerate)

	return chainMiddlewares(mux,
		withRecovery,
		withLogging(deps.Metrics),
		withRequestID,
		withCORS,
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Message   string     `json:"message,omitempty"`
	Error     *errorBody `json:"error,omitempty"`
	Timestamp string     `json:"timestamp"`
	RequestID string     `json:"requestId,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type scrapeRequest struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
	// Save stores a profile scrape as a contact of the X-User-ID owner.
	Save bool `json:"save,omitempty"`
}

type appendMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateRequest struct {
	ContactID string            `json:"contactId"`
	Context   domain.RawContext `json:"context"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAIStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	s.ok(w, r, http.StatusOK, s.deps.AIStatus, "")
}

// /profile
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetProfile(w, r)
	case http.MethodPut:
		s.handlePutProfile(w, r)
	default:
		s.methodNotAllowed(w, r)
	}
}

// /contacts
func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSaveContact(w, r)
	default:
		s.methodNotAllowed(w, r)
	}
}

// /contacts/{id} or /contacts/{id}/messages
func (s *Server) handleContactWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/contacts/")
	parts := strings.Split(path, "/")
	id := parts[0]

	if id == "" {
		s.notFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetContact(w, r, domain.ContactID(id))
		default:
			s.methodNotAllowed(w, r)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "messages" {
		switch r.Method {
		case http.MethodGet:
			s.handleListMessages(w, r, domain.ContactID(id))
		case http.MethodPost:
			s.handleAppendMessage(w, r, domain.ContactID(id))
		default:
			s.methodNotAllowed(w, r)
		}
		return
	}

	s.notFound(w, r)
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r)
		return
	}

	var req scrapeRequest
	if !s.decode(w, r, &req) {
		return
	}

	var (
		data    any
		partial bool
	)
	switch domain.ScrapeType(cmp.Or(strings.ToLower(strings.TrimSpace(req.Type)), string(domain.ScrapeTypeProfile))) {
	case domain.ScrapeTypeProfile:
		var owner domain.OwnerID
		if req.Save {
			var ok bool
			if owner, ok = s.owner(w, r); !ok {
				return
			}
		}
		res := s.deps.Scraper.ScrapeProfile(r.Context(), req.URL)
		if req.Save {
			if _, err := s.deps.Contacts.SaveScrape(r.Context(), owner, req.URL, res); err != nil {
				s.fail(w, r, err)
				return
			}
		}
		data, partial = res, res.Partial
	case domain.ScrapeTypeCompany:
		res := s.deps.Scraper.ScrapeCompany(r.Context(), req.URL)
		data, partial = res, res.Partial
	default:
		s.fail(w, r, domain.NewError(domain.KindValidationError, "type must be 'profile' or 'company'", nil))
		return
	}

	msg := "Profile scraped successfully"
	if partial {
		msg = "Partial data retrieved. Please complete manually."
	}
	s.ok(w, r, http.StatusOK, data, msg)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	p, err := s.deps.Contacts.GetUserProfile(r.Context(), owner)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, r, http.StatusOK, p, "")
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req domain.UserProfile
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.deps.Contacts.SaveUserProfile(r.Context(), owner, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, r, http.StatusOK, p, "Profile saved")
}

func (s *Server) handleSaveContact(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req domain.ContactProfile
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.deps.Contacts.SaveContact(r.Context(), owner, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, r, http.StatusCreated, p, "Contact saved")
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request, id domain.ContactID) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	p, err := s.deps.Contacts.GetContact(r.Context(), owner, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, r, http.StatusOK, p, "")
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request, id domain.ContactID) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.fail(w, r, domain.NewError(domain.KindValidationError, "limit must be a non-negative integer", nil))
			return
		}
		limit = n
	}

	msgs, err := s.deps.Contacts.ListMessages(r.Context(), owner, id, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, r, http.StatusOK, msgs, "")
}

func (s *Server) handleAppendMessage(w http.ResponseWriter, r *http.Request, id domain.ContactID) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req appendMessageRequest
	if !s.decode(w, r, &req) {
		return
	}

	msg, err := s.deps.Contacts.AppendMessage(r.Context(), contacts.AppendMessageInput{
		Owner:   owner,
		Contact: id,
		Role:    domain.Role(strings.ToLower(strings.TrimSpace(req.Role))),
		Content: req.Content,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, r, http.StatusCreated, msg, "")
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r)
		return
	}
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req generateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ContactID) == "" {
		s.fail(w, r, domain.NewError(domain.KindValidationError, "contactId is required", nil))
		return
	}

	res, err := s.deps.Generation.Generate(r.Context(), domain.ContactID(req.ContactID), owner, req.Context)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, r, http.StatusOK, res, "Message generated")
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func (s *Server) owner(w http.ResponseWriter, r *http.Request) (domain.OwnerID, bool) {
	owner := strings.TrimSpace(r.Header.Get(ownerHeader))
	if owner == "" {
		s.fail(w, r, domain.NewError(domain.KindValidationError, ownerHeader+" header is required", nil))
		return "", false
	}
	return domain.OwnerID(owner), true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.fail(w, r, domain.NewError(domain.KindValidationError, "invalid JSON body", err))
		return false
	}
	return true
}

func (s *Server) ok(w http.ResponseWriter, r *http.Request, status int, data any, msg string) {
	writeJSON(w, status, envelope{
		Success:   true,
		Data:      data,
		Message:   msg,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		RequestID: observability.RequestID(r.Context()),
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
	}
	writeJSON(w, status, envelope{
		Success:   false,
		Error:     &errorBody{Code: code, Message: msg},
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		RequestID: observability.RequestID(r.Context()),
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.fail(w, r, domain.NewError(domain.KindNotFound, "route not found", nil))
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, envelope{
		Success:   false,
		Error:     &errorBody{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"},
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		RequestID: observability.RequestID(r.Context()),
	})
}

// statusFor maps a typed error to an HTTP status, error code and the message
// shown to clients. Untyped errors never leak their text.
func statusFor(err error) (int, string, string) {
	var e *domain.Error
	if !errors.As(err, &e) {
		if errors.Is(err, domain.ErrNotFound) {
			return http.StatusNotFound, string(domain.KindNotFound), "not found"
		}
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}

	switch e.Kind {
	case domain.KindValidationError, domain.KindInvalidURL:
		return http.StatusBadRequest, string(e.Kind), e.Message
	case domain.KindNotFound:
		return http.StatusNotFound, string(e.Kind), e.Message
	default:
		return http.StatusInternalServerError, string(e.Kind), e.Message
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

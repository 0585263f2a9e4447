// Package server exposes the quote workflow as a JSON API and serves the
// embedded web UI.
package server

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/iwvelando/payout-quote/internal/export"
	"github.com/iwvelando/payout-quote/internal/gate"
	"github.com/iwvelando/payout-quote/internal/lead"
	"github.com/iwvelando/payout-quote/internal/quote"
	"github.com/iwvelando/payout-quote/internal/session"
	"github.com/iwvelando/payout-quote/internal/workflow"
	"github.com/iwvelando/payout-quote/pkg/constants"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "quote_session"

// Options wires the handler to the workflow and its collaborators.
type Options struct {
	Workflow    *workflow.Workflow
	Sessions    *session.Store
	Cities      workflow.CityLookup
	SigningKey  []byte
	SessionTTL  time.Duration
	MaxBodySize int64
	Version     string
}

type handler struct {
	logger      *zap.Logger
	workflow    *workflow.Workflow
	sessions    *session.Store
	cities      workflow.CityLookup
	signingKey  []byte
	sessionTTL  time.Duration
	maxBodySize int64
	version     string
	now         func() time.Time
}

// NewHandler constructs the HTTP handler that serves the web UI and quote API.
func NewHandler(logger *zap.Logger, opts Options) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workflow == nil || opts.Sessions == nil {
		return nil, errors.New("workflow and session store are required")
	}
	if len(opts.SigningKey) == 0 {
		return nil, errors.New("session signing key is required")
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		workflow:    opts.Workflow,
		sessions:    opts.Sessions,
		cities:      opts.Cities,
		signingKey:  opts.SigningKey,
		sessionTTL:  opts.SessionTTL,
		maxBodySize: opts.MaxBodySize,
		version:     trimmedVersion,
		now:         time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Get("/state", h.handleState)
		r.Post("/quote", h.handleQuote)
		r.Get("/quote/schedule.xlsx", h.handleScheduleDownload)
		r.Post("/lead", h.handleLead)
		r.Post("/lead/retry", h.handleRetry)
		r.Get("/postal/{code}", h.handlePostal)
		r.Get("/version", h.handleVersion)
	})

	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare embedded static files: %w", err)
	}
	r.Handle("/*", http.FileServer(http.FS(sub)))

	return r, nil
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request served",
				zap.String("op", "server.request"),
				zap.String("requestID", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

type quoteRequest struct {
	quote.Input
	Duration string `json:"duration,omitempty"`
}

type errorResponse struct {
	Error   string            `json:"error"`
	Missing []string          `json:"missing,omitempty"`
	Invalid []string          `json:"invalid,omitempty"`
	State   *workflow.Outcome `json:"state,omitempty"`
}

func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLogin"
	var req loginRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	var out workflow.Outcome
	err := h.withSession(w, r, func(s *session.State) error {
		var err error
		out, err = h.workflow.HandleLogin(s, req.Password)
		return err
	})
	h.respond(w, out, err, op)
}

func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var out workflow.Outcome
	err := h.withSession(w, r, func(s *session.State) error {
		out = h.workflow.HandleLogout(s)
		return nil
	})
	h.respond(w, out, err, "server.handleLogout")
}

func (h *handler) handleState(w http.ResponseWriter, r *http.Request) {
	var out workflow.Outcome
	err := h.withSession(w, r, func(s *session.State) error {
		out = h.workflow.Current(s)
		return nil
	})
	h.respond(w, out, err, "server.handleState")
}

func (h *handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleQuote"
	req := quoteRequest{Input: quote.DefaultInput()}
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	in := req.Input
	if req.Duration != "" {
		quarters, err := quote.ParseDurationLabel(req.Duration)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
			return
		}
		in.DurationQuarters = quarters
	}

	var out workflow.Outcome
	err := h.withSession(w, r, func(s *session.State) error {
		var err error
		out, err = h.workflow.HandleCalculate(s, in)
		return err
	})
	h.respond(w, out, err, op)
}

func (h *handler) handleLead(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLead"
	var draft lead.Draft
	if !h.decodeJSON(w, r, &draft, op) {
		return
	}

	var out workflow.Outcome
	err := h.withSession(w, r, func(s *session.State) error {
		var err error
		out, err = h.workflow.HandleSubmitLead(r.Context(), s, draft)
		return err
	})
	h.respond(w, out, err, op)
}

func (h *handler) handleRetry(w http.ResponseWriter, r *http.Request) {
	var out workflow.Outcome
	err := h.withSession(w, r, func(s *session.State) error {
		var err error
		out, err = h.workflow.HandleRetryDispatch(r.Context(), s)
		return err
	})
	h.respond(w, out, err, "server.handleRetry")
}

func (h *handler) handleScheduleDownload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScheduleDownload"
	var data []byte
	var out workflow.Outcome
	err := h.withSession(w, r, func(s *session.State) error {
		out = h.workflow.Current(s)
		switch {
		case s.Phase == session.Locked:
			return workflow.ErrLocked
		case s.QuoteInput == nil || s.QuoteResult == nil:
			return fmt.Errorf("%w: calculate a quote first", workflow.ErrWrongPhase)
		}
		var err error
		data, err = export.ScheduleWorkbook(*s.QuoteInput, *s.QuoteResult, s.City)
		return err
	})
	if err != nil {
		h.respond(w, out, err, op)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write workbook",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) handlePostal(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePostal"
	code := chi.URLParam(r, "code")

	var out workflow.Outcome
	err := h.withSession(w, r, func(s *session.State) error {
		out = h.workflow.Current(s)
		if s.Phase == session.Locked {
			return workflow.ErrLocked
		}
		return nil
	})
	if err != nil {
		h.respond(w, out, err, op)
		return
	}

	city := ""
	if h.cities != nil {
		city = h.cities.Lookup(code)
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"code": code,
		"city": city,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// withSession runs fn on the caller's session, starting a new one when the
// cookie is absent, invalid or refers to an expired session. The cookie is
// reissued on every call so its expiry follows activity.
func (h *handler) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.State) error) error {
	if id, ok := h.sessionID(r); ok {
		err := h.sessions.Do(id, fn)
		if !errors.Is(err, session.ErrNotFound) {
			h.setSessionCookie(w, r, id)
			return err
		}
	}

	id := h.sessions.Create()
	h.setSessionCookie(w, r, id)
	return h.sessions.Do(id, fn)
}

func (h *handler) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return h.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.ID == "" {
		h.logger.Debug("discarding session token",
			zap.String("op", "server.sessionID"),
			zap.Error(err),
		)
		return "", false
	}
	return claims.ID, true
}

func (h *handler) setSessionCookie(w http.ResponseWriter, r *http.Request, id string) {
	now := h.now()
	claims := jwt.RegisteredClaims{
		ID:       id,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if h.sessionTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(h.sessionTTL))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.signingKey)
	if err != nil {
		h.logger.Error("failed to sign session token",
			zap.String("op", "server.setSessionCookie"),
			zap.Error(err),
		)
		return
	}

	cookie := &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if h.sessionTTL > 0 {
		cookie.MaxAge = int(h.sessionTTL.Seconds())
	}
	http.SetCookie(w, cookie)
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// respond writes the outcome, or maps err to a status code and writes it
// together with the unchanged session outcome.
func (h *handler) respond(w http.ResponseWriter, out workflow.Outcome, err error, op string) {
	if err == nil {
		h.writeJSON(w, http.StatusOK, out)
		return
	}

	status := statusFor(err)
	body := errorResponse{Error: err.Error(), State: &out}
	var verr *lead.ValidationError
	if errors.As(err, &verr) {
		body.Missing = verr.Missing
		body.Invalid = verr.Invalid
	}
	h.logFailure(status, err.Error(), op)
	h.writeJSON(w, status, body)
}

func statusFor(err error) int {
	var verr *lead.ValidationError
	var derr *lead.DispatchError
	switch {
	case errors.Is(err, gate.ErrDenied), errors.Is(err, workflow.ErrLocked):
		return http.StatusUnauthorized
	case errors.Is(err, workflow.ErrWrongPhase):
		return http.StatusConflict
	case errors.Is(err, quote.ErrInvalidInput), errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &derr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logFailure(status, msg, op)
	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handler) logFailure(status int, msg string, op string) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("quote request failed", fields...)
		return
	}
	h.logger.Info("quote request rejected", fields...)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

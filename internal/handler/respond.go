package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"

	"github.com/taskpad/taskpad-go/internal/apperr"
	"github.com/taskpad/taskpad-go/internal/middleware"
	"github.com/taskpad/taskpad-go/internal/model"
)

// ErrorLogStore persists request-failure records.
type ErrorLogStore interface {
	Insert(ctx context.Context, entry *model.ErrorLog) error
}

// Responder is the single terminal point for responses. Success paths go
// through JSON; every failure goes through Error, which classifies, persists
// an error log for unexpected failures and shapes the envelope.
type Responder struct {
	logs ErrorLogStore
	env  string
}

// NewResponder creates a Responder. env selects whether stack detail is
// exposed in responses ("production" hides it).
func NewResponder(logs ErrorLogStore, env string) *Responder {
	return &Responder{logs: logs, env: env}
}

// JSON writes a success envelope.
func (rp *Responder) JSON(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, model.Envelope{Success: true, Message: message, Data: data})
}

// Error terminates a failed request: resolves the error kind, records an
// error log when the failure was not an ordinary domain rejection, and
// writes the envelope. Persistence failures never block the response.
func (rp *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	status := ae.Kind.HTTPStatus()

	env := model.Envelope{Success: false, Message: ae.Message}
	if ae.Kind == apperr.KindInternal {
		detail := ""
		if ae.Err != nil {
			detail = ae.Err.Error()
		}
		slog.Error("unhandled request error", "method", r.Method, "path", r.URL.Path, "error", detail)
		rp.record(r, status, ae.Message, detail)
		if rp.env != "production" {
			env.Stack = detail
		}
	}

	writeJSON(w, status, env)
}

// NotFound responds to unmatched routes. The original system routed these
// through the terminal handler, so they are recorded like other failures.
func (rp *Responder) NotFound(w http.ResponseWriter, r *http.Request) {
	message := "Not Found - " + r.URL.Path
	rp.record(r, http.StatusNotFound, message, "")
	writeJSON(w, http.StatusNotFound, model.Envelope{Success: false, Message: message})
}

// Recoverer converts panics into logged 500 responses, capturing the stack.
func (rp *Responder) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := string(debug.Stack())
				slog.Error("panic recovered", "method", r.Method, "path", r.URL.Path, "panic", rec)
				rp.record(r, http.StatusInternalServerError, "internal server error", stack)

				env := model.Envelope{Success: false, Message: "internal server error"}
				if rp.env != "production" {
					env.Stack = stack
				}
				writeJSON(w, http.StatusInternalServerError, env)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (rp *Responder) record(r *http.Request, status int, message, stack string) {
	entry := &model.ErrorLog{
		Message:    message,
		Stack:      stack,
		StatusCode: status,
		Method:     r.Method,
		Path:       r.URL.Path,
		IP:         clientIP(r),
		UserAgent:  r.UserAgent(),
	}
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		entry.UserID = p.UserID
	}

	// The request context may already be canceled; the log write should
	// still land.
	ctx := context.WithoutCancel(r.Context())
	if err := rp.logs.Insert(ctx, entry); err != nil {
		slog.Error("failed to persist error log", "error", err)
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

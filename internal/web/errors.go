package web

// errors.go is the single error path of the web layer. Handlers call
// respondError; the technical error is logged with the request ID and the
// client gets the mapped Portuguese message as an HTML page or JSON.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/WawaAlencar/sistema-cashback-cliente/internal/config"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/core"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/logging"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/session"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/web/templates"
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and renders its user message with statusCode.
// A zero statusCode is derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	if statusCode == 0 {
		statusCode = statusFor(err)
	}
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if statusCode == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "10")
	}

	if wantsJSON(r) {
		writeJSON(w, statusCode, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}
	render(w, r, statusCode, templates.ErrorPage(userMsg.Message, userMsg.Action, userMsg.Code))
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var colErr *core.ColumnError
	var ingestErr *core.IngestError
	switch {
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &colErr), errors.As(err, &ingestErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoSalesFiles),
		errors.Is(err, core.ErrInvalidSort),
		errors.Is(err, config.ErrUnknownScheme),
		errors.Is(err, errBadForm),
		errors.Is(err, errTooManyFiles),
		errors.Is(err, errInvalidSelection),
		errors.Is(err, errNothingSelected):
		return http.StatusBadRequest
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	if core.IsUserFacing(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// render writes c with status.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	templ.Handler(c, templ.WithStatus(status)).ServeHTTP(w, r)
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

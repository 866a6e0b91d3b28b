package server

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// HTTPError is an error that knows its response status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError attaches an HTTP status to an error.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// statusFor classifies controller and request errors.
func statusFor(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode()
	}
	switch {
	case errors.Is(err, render.ErrInvalidAction),
		errors.Is(err, wizard.ErrUnknownField),
		errors.Is(err, wizard.ErrNotRepeatable),
		errors.Is(err, wizard.ErrIndexOutOfRange),
		errors.Is(err, wizard.ErrValueType):
		return http.StatusBadRequest
	case errors.Is(err, wizard.ErrInPreview),
		errors.Is(err, wizard.ErrNotInPreview),
		errors.Is(err, wizard.ErrSubmitted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	event := s.logger.Warn()
	if code >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Int("status", code).Msg("request failed")

	message := http.StatusText(code)
	if code < http.StatusInternalServerError {
		message = err.Error()
	}
	http.Error(w, message, code)
}

package alerts

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"rescueconnect/pkg/e"
)

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	l := h.log(r)

	var verr *e.ValidationError
	if errors.As(err, &verr) {
		l.Warn("validation failed", slog.String("path", r.URL.Path), slog.Any("fields", verr.Fields))
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": verr.Fields})
		return
	}

	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, e.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, e.ErrInvalidInput):
		status, msg = http.StatusBadRequest, "invalid input"
	case errors.Is(err, e.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, e.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, e.ErrConflict), errors.Is(err, e.ErrUniqueViolation):
		status, msg = http.StatusConflict, "conflict"
	case errors.Is(err, e.ErrDependencyUnavailable), errors.Is(err, e.ErrDeadline):
		status, msg = http.StatusServiceUnavailable, "service unavailable"
	}

	if status >= http.StatusInternalServerError {
		l.Error("handler error", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	} else {
		l.Warn("request rejected", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// badBody keeps field-level decode errors itemized like validation failures.
func (h *Handler) badBody(w http.ResponseWriter, r *http.Request, err error) {
	var verr *e.ValidationError
	if errors.As(err, &verr) {
		h.handleError(w, r, err)
		return
	}
	h.log(r).Warn("invalid JSON", slog.String("error", err.Error()))
	h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
}

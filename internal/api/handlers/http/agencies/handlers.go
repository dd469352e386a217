package agencies

import (
	"context"
	"log/slog"
	"net/http"

	"rescueconnect/internal/domain"
	"rescueconnect/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Agencies interface {
	Register(ctx context.Context, req domain.RegisterAgencyRequest) (*domain.RegisterAgencyResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Agency, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, req domain.UpdateLocationRequest, actor domain.Actor) (*domain.Agency, error)
}

type Handler struct {
	logger   *slog.Logger
	Agencies Agencies
}

func NewHandler(logger *slog.Logger, agencies Agencies) *Handler {
	return &Handler{
		logger:   logger,
		Agencies: agencies,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) AgencyRegister(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AgencyRegister", slog.String("remote", r.RemoteAddr))

	var req domain.RegisterAgencyRequest
	if err := middleware.DecodeJSON(w, r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}

	resp, err := h.Agencies.Register(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("agency registered", slog.String("id", resp.Agency.ID.String()), slog.String("name", resp.Agency.Name))
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) AgencyGet(w http.ResponseWriter, r *http.Request) {
	h.log(r).Debug("AgencyGet", slog.String("remote", r.RemoteAddr))

	id, ok := h.agencyID(w, r)
	if !ok {
		return
	}

	agency, err := h.Agencies.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, agency)
}

func (h *Handler) AgencyUpdateLocation(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AgencyUpdateLocation", slog.String("remote", r.RemoteAddr))

	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	id, ok := h.agencyID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateLocationRequest
	if err := middleware.DecodeJSON(w, r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}

	agency, err := h.Agencies.UpdateLocation(r.Context(), id, req, actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("agency location updated", slog.String("id", id.String()))
	h.writeJSON(w, http.StatusOK, agency)
}

func (h *Handler) agencyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "agencyId")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.log(r).Warn("invalid id", slog.String("id", idStr), slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

package alerts

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
type Alerts interface {
	Create(ctx context.Context, actor domain.Actor, creator uuid.UUID, req domain.CreateAlertRequest) (*domain.Alert, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	Deactivate(ctx context.Context, id, requester uuid.UUID) error
	MarkRead(ctx context.Context, id, agencyID uuid.UUID) error
	UnreadCount(ctx context.Context, agencyID uuid.UUID) (int64, error)
	ListForAgency(ctx context.Context, agencyID uuid.UUID) ([]domain.AlertView, error)
	ListSentBy(ctx context.Context, agencyID uuid.UUID, actor domain.Actor) ([]domain.SentAlertView, error)
}

type Handler struct {
	logger *slog.Logger
	Alerts Alerts
}

func NewHandler(logger *slog.Logger, alerts Alerts) *Handler {
	return &Handler{
		logger: logger,
		Alerts: alerts,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) AlertCreate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AlertCreate", slog.String("remote", r.RemoteAddr))

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	agencyID, ok := h.uuidParam(w, r, "agencyId")
	if !ok {
		return
	}

	var req domain.CreateAlertRequest
	if err := middleware.DecodeJSON(w, r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}

	alert, err := h.Alerts.Create(r.Context(), actor, agencyID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("alert created",
		slog.String("id", alert.ID.String()),
		slog.String("created_by", agencyID.String()),
		slog.String("severity", string(alert.Severity)),
		slog.Float64("radius_km", alert.RadiusKM),
	)
	h.writeJSON(w, http.StatusCreated, alert)
}

func (h *Handler) AlertGet(w http.ResponseWriter, r *http.Request) {
	h.log(r).Debug("AlertGet", slog.String("remote", r.RemoteAddr))

	id, ok := h.uuidParam(w, r, "alertId")
	if !ok {
		return
	}

	alert, err := h.Alerts.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, alert)
}

func (h *Handler) AlertMarkRead(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AlertMarkRead", slog.String("remote", r.RemoteAddr))

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.uuidParam(w, r, "alertId")
	if !ok {
		return
	}

	if err := h.Alerts.MarkRead(r.Context(), id, actor.AgencyID); err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("alert marked read", slog.String("id", id.String()), slog.String("agency_id", actor.AgencyID.String()))
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "alert marked as read"})
}

func (h *Handler) AlertDeactivate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AlertDeactivate", slog.String("remote", r.RemoteAddr))

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.uuidParam(w, r, "alertId")
	if !ok {
		return
	}

	if err := h.Alerts.Deactivate(r.Context(), id, actor.AgencyID); err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("alert deactivated", slog.String("id", id.String()))
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "alert deactivated"})
}

func (h *Handler) AlertListForAgency(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AlertListForAgency", slog.String("remote", r.RemoteAddr))

	agencyID, ok := h.uuidParam(w, r, "agencyId")
	if !ok {
		return
	}

	alerts, err := h.Alerts.ListForAgency(r.Context(), agencyID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("alerts listed", slog.String("agency_id", agencyID.String()), slog.Int("count", len(alerts)))
	h.writeJSON(w, http.StatusOK, domain.AlertList{Alerts: alerts})
}

func (h *Handler) AlertListSent(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AlertListSent", slog.String("remote", r.RemoteAddr))

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	agencyID, ok := h.uuidParam(w, r, "agencyId")
	if !ok {
		return
	}

	alerts, err := h.Alerts.ListSentBy(r.Context(), agencyID, actor)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("sent alerts listed", slog.String("agency_id", agencyID.String()), slog.Int("count", len(alerts)))
	h.writeJSON(w, http.StatusOK, domain.SentAlertList{Alerts: alerts})
}

func (h *Handler) AlertUnreadCount(w http.ResponseWriter, r *http.Request) {
	h.log(r).Debug("AlertUnreadCount", slog.String("remote", r.RemoteAddr))

	agencyID, ok := h.uuidParam(w, r, "agencyId")
	if !ok {
		return
	}

	n, err := h.Alerts.UnreadCount(r.Context(), agencyID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, domain.UnreadCount{Count: n})
}

func (h *Handler) uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.log(r).Warn("invalid id", slog.String(name, raw), slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return domain.Actor{}, false
	}
	return actor, true
}

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"rescueconnect/internal/api/handlers/http/agencies"
	"rescueconnect/internal/api/handlers/http/alerts"
	"rescueconnect/internal/api/handlers/http/system"
	"rescueconnect/internal/config"
	"rescueconnect/internal/metrics"
	"rescueconnect/internal/middleware"
	"rescueconnect/internal/service"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

func NewServer(cfg *config.Config, logger *slog.Logger, svc *service.Service, tokens middleware.TokenValidator, checks map[string]system.Check) *Server {
	alertHandler := alerts.NewHandler(logger, svc.AlertService)
	agencyHandler := agencies.NewHandler(logger, svc.AgencyService)
	systemHandler := system.NewHandler(logger, checks)

	r := InitRouter(cfg, alertHandler, agencyHandler, systemHandler, tokens, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(cfg *config.Config, alertHandler *alerts.Handler, agencyHandler *agencies.Handler, systemHandler *system.Handler, tokens middleware.TokenValidator, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	// request_id must be set before chi's Logger so it shows up there
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		// SYSTEM
		api.Get("/health", systemHandler.SystemHealth)
		api.Get("/ready", systemHandler.SystemReady)

		// PUBLIC
		api.With(middleware.Limit(2, 5, 10*time.Minute, logger)).
			Post("/agencies", agencyHandler.AgencyRegister)

		// AUTHENTICATED
		api.Group(func(ar chi.Router) {
			ar.Use(middleware.Limit(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 5*time.Minute, logger))
			ar.Use(middleware.Authenticate(tokens, logger))

			ar.Route("/agencies/{agencyId}", func(gr chi.Router) {
				gr.Get("/", agencyHandler.AgencyGet)
				gr.Patch("/location", agencyHandler.AgencyUpdateLocation)

				gr.Route("/alerts", func(alr chi.Router) {
					alr.Post("/", alertHandler.AlertCreate)
					alr.Get("/", alertHandler.AlertListForAgency)
					alr.Get("/sent", alertHandler.AlertListSent)
					alr.Get("/unread-count", alertHandler.AlertUnreadCount)
				})
			})

			ar.Route("/alerts/{alertId}", func(alr chi.Router) {
				alr.Get("/", alertHandler.AlertGet)
				alr.Patch("/read", alertHandler.AlertMarkRead)
				alr.Patch("/deactivate", alertHandler.AlertDeactivate)
			})
		})
	})

	return r
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("Starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}

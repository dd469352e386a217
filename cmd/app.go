package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"rescueconnect/internal/components"
	"rescueconnect/internal/config"
)

func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("load config failed", "err", err)
		return err
	}
	logger := components.SetupLogger(cfg.Env)

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	comps, err := components.InitComponents(appCtx, cfg, logger)
	if err != nil {
		logger.Error("could not init components", "err", err)
		return err
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	serverErr := make(chan error, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := comps.HttpServer.Run(ctx); err != nil {
			serverErr <- err
		}
		logger.Info("http server stopped")
	}()

	for _, w := range comps.Workers {
		wg.Add(1)
		go func(w components.Runner) {
			defer wg.Done()
			w.Run(ctx)
		}(w)
	}

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)

	runErr := waitForShutdown(quitChan, serverErr, logger)
	stop()

	wg.Wait()

	logger.Info("shutting down the services...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Http.ShutdownTimeout+5*time.Second)
	defer cancelShutdown()
	comps.ShutdownAll(shutdownCtx)
	logger.Info("gracefully shut down")

	return runErr
}

// waitForShutdown returns on a signal or on the HTTP server exiting early,
// whichever happens first. Only the latter yields an error.
func waitForShutdown(quit <-chan os.Signal, serverErr <-chan error, logger *slog.Logger) error {
	select {
	case sig := <-quit:
		logger.Info("captured signal, initiating shutdown", "signal", sig.String())
		return nil
	case err := <-serverErr:
		logger.Error("http server exited, initiating shutdown", "err", err)
		return err
	}
}

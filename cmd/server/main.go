package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jasonlvhit/gocron"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"

	"weight_balance/internal/api"
	"weight_balance/internal/catalog"
	"weight_balance/internal/config"
	"weight_balance/internal/logging"
	"weight_balance/internal/metrics"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, JSON: cfg.LogJSON})
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	if cfg.CPUProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.CPUProfile), profile.NoShutdownHook).Stop()
	}

	cat, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("failed to load aircraft: %w", err)
	}
	metrics.SetCatalogSize(cat.Len())
	logger.WithFields(log.Fields{"source": cat.Source(), "templates": cat.Len()}).Info("catalog loaded")

	if cfg.CatalogRefresh > 0 {
		stop, err := scheduleReload(cat, cfg, logger)
		if err != nil {
			return err
		}
		defer close(stop)
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.New(cat, api.Options{CORSOrigins: cfg.CORSOrigins, Logger: logger}),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		logger.Infof("Server listening on %s", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer done()
	return srv.Shutdown(shutdownCtx)
}

// scheduleReload re-reads the catalog file every cfg.CatalogRefresh. A
// failed reload keeps serving the previous catalog.
func scheduleReload(cat *catalog.Catalog, cfg config.Config, logger *log.Logger) (chan bool, error) {
	s := gocron.NewScheduler()
	minutes := uint64(cfg.CatalogRefresh.Minutes())
	err := s.Every(minutes).Minutes().Do(func() {
		err := cat.Reload(cfg.Catalog)
		metrics.ObserveCatalogReload(err)
		if err != nil {
			logger.WithError(err).Error("catalog reload failed")
			return
		}
		metrics.SetCatalogSize(cat.Len())
		logger.WithField("templates", cat.Len()).Debug("catalog reloaded")
	})
	if err != nil {
		return nil, fmt.Errorf("schedule catalog reload: %w", err)
	}
	return s.Start(), nil
}

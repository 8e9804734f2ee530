package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bobox/internal/events"
	"bobox/internal/httpapi"
	"bobox/internal/metrics"
	"bobox/internal/unit"
	"bobox/pkg/config"
	"bobox/pkg/logging"
)

func main() {
	cfg := config.Load()
	log := logging.New(logging.Options{
		AppName: config.AppName,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := unit.NewStore()
	engine := unit.NewEngine(store)
	if cfg.SeedDemoData {
		seeded, err := unit.Seed(store, engine)
		if err != nil {
			log.WithError(err).Fatal("seed demo units")
		}
		log.Infof("seeded %d demo units", len(seeded))
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		p, err := events.NewNATSPublisher(cfg.NATSURL, config.AppName, log)
		if err != nil {
			log.WithError(err).Fatal("nats connect")
		}
		defer p.Close()
		publisher = p
		log.WithField("subject", cfg.NATSSubject).Info("publishing unit events to nats")
	}

	deps := httpapi.Dependencies{
		Cfg:    cfg,
		Log:    log,
		Store:  store,
		Engine: engine,
		Events: events.NewEmitter(publisher, cfg.NATSSubject, log),
	}
	if cfg.MetricsEnabled {
		deps.Metrics = metrics.New(store)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("http listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http serve")
		}
	}()

	<-ctx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http server shutdown")
	}
	log.Info("shutdown complete")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"custodia/internal/audit"
	"custodia/internal/classifier"
	consenthandler "custodia/internal/consent/handler"
	consentmetrics "custodia/internal/consent/metrics"
	"custodia/internal/consent/models"
	consentservice "custodia/internal/consent/service"
	"custodia/internal/platform/config"
	"custodia/internal/platform/health"
	"custodia/internal/platform/logger"
	"custodia/internal/platform/middleware"
	"custodia/internal/scan"
	"custodia/internal/violation"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	configPath := os.Getenv("CUSTODIA_CONFIG")
	if configPath == "" {
		configPath = "custodia.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.New(logger.ParseLevel("info")).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	log.Info("initializing custodia",
		"addr", cfg.Server.Addr,
		"store_driver", cfg.Store.Driver,
		"audit_async_buffer", cfg.Audit.AsyncBuffer,
	)

	stores, err := openStores(context.Background(), cfg.Store)
	if err != nil {
		log.Error("failed to open stores", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	auditOpts := []audit.PublisherOption{audit.WithPublisherLogger(log)}
	if cfg.Audit.AsyncBuffer > 0 {
		auditOpts = append(auditOpts, audit.WithAsyncBuffer(cfg.Audit.AsyncBuffer))
	}
	auditor := audit.NewPublisher(stores.Audit, auditOpts...)
	defer auditor.Close()

	consentSvc := consentservice.NewService(
		stores.Consent,
		consentservice.NewShardedTx(stores.Consent, cfg.Store.Timeout),
		auditor,
		log,
		consentservice.WithMetrics(consentmetrics.New()),
		consentservice.WithRequiredCategories(toCategories(cfg.Consent.RequiredCategories)),
		consentservice.WithDefaultValidity(cfg.Consent.DefaultValidity),
		consentservice.WithStoreTimeout(cfg.Store.Timeout),
	)

	adapter := classifier.NewAdapter(toCategoryMapping(cfg.Classifier.TypeMapping))
	responder := violation.NewResponder(
		newProcessingController(cfg.Violation, log),
		newRedactionService(cfg.Violation, log),
		toCategories(cfg.Violation.RedactableCategories),
		log,
	)
	scanSvc := scan.NewService(adapter, consentSvc, responder, scan.NewInMemoryReportStore(), auditor, log)

	healthHandler := health.New()
	if stores.Ping != nil {
		healthHandler.RegisterCheck("store", stores.Ping)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))

	healthHandler.Register(router)
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		if cfg.Server.JWTSigningKey != "" {
			r.Use(middleware.BearerAuth(cfg.Server.JWTSigningKey))
		}
		consenthandler.New(consentSvc, log).Register(r)
		scan.NewHandler(scanSvc, log).Register(r)
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Server.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

func toCategories(values []string) []models.Category {
	categories := make([]models.Category, 0, len(values))
	for _, v := range values {
		categories = append(categories, models.Category(v))
	}
	return categories
}

func toCategoryMapping(mapping map[string]string) map[string]models.Category {
	out := make(map[string]models.Category, len(mapping))
	for vendorType, category := range mapping {
		out[vendorType] = models.Category(category)
	}
	return out
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atlasdir/facet"
	"github.com/atlasdir/facet/internal/config"
	dbRedis "github.com/atlasdir/facet/internal/db/redis"
	logpkg "github.com/atlasdir/facet/internal/logger"
	"github.com/atlasdir/facet/internal/metrics"
	"github.com/atlasdir/facet/internal/repository/listing"
	"github.com/atlasdir/facet/internal/repository/taxonomy"
	chiTransport "github.com/atlasdir/facet/internal/transport/chi"
	"github.com/atlasdir/facet/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting facet API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register facet engine metrics explicitly (no init())
	metrics.RegisterFacetMetrics()

	// Create repositories
	termRepo := taxonomy.New(store).WithKeyPrefix(cfg.Storage.KeyPrefix)
	listingRepo := listing.New(store).WithKeyPrefix(cfg.Storage.KeyPrefix)

	if err := listingRepo.EnsureIndex(ctx, cfg.Taxonomies()); err != nil {
		logger.Fatal("Failed to ensure listing index", zap.Error(err))
	}

	// Build the filter registry from configuration — composition root
	registry := facet.NewRegistry(facet.WithRegistryLogger(logger))
	for _, fc := range cfg.Filters {
		f := buildFilter(fc, termRepo)
		if !registry.Register(f) {
			logger.Fatal("Failed to register filter", zap.String("filter", fc.Name))
		}
	}
	logger.Info("Filter registry built",
		zap.Int("filters", registry.Count()),
		zap.Strings("taxonomies", cfg.Taxonomies()),
	)

	// Create chi server
	server := chiTransport.NewServer(listingRepo, termRepo, registry, store, logger).
		WithPagination(cfg.Catalog.DefaultPageSize, cfg.Catalog.MaxPageSize)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildFilter maps one filter declaration onto its strategy.
func buildFilter(fc config.FilterConfig, terms facet.TermSource) facet.Filter {
	opts := []facet.FilterOption{
		facet.WithPriority(fc.Priority),
	}
	if fc.Label != "" {
		opts = append(opts, facet.WithLabel(fc.Label))
	}
	if fc.Disabled {
		opts = append(opts, facet.Disabled())
	}

	switch fc.Kind {
	case "text":
		if fc.MinLength > 0 {
			opts = append(opts, facet.WithMinLength(fc.MinLength))
		}
		return facet.NewKeyword(fc.Name, opts...)
	case "select":
		opts = append(opts, facet.WithMultiple(fc.Multiple))
		return facet.NewCategory(fc.Name, fc.Taxonomy, terms, opts...)
	case "checkbox":
		if fc.MaxItems > 0 {
			opts = append(opts, facet.WithMaxItems(fc.MaxItems))
		}
		return facet.NewTag(fc.Name, fc.Taxonomy, terms, opts...)
	case "range":
		if fc.Min != 0 || fc.Max != 0 {
			opts = append(opts, facet.WithBounds(fc.Min, fc.Max))
		}
		if fc.Step > 0 {
			opts = append(opts, facet.WithStep(fc.Step))
		}
		if fc.Prefix != "" {
			opts = append(opts, facet.WithPrefix(fc.Prefix))
		}
		if fc.Suffix != "" {
			opts = append(opts, facet.WithSuffix(fc.Suffix))
		}
		return facet.NewRange(fc.Name, fc.Field, opts...)
	case "date_range":
		return facet.NewDateRange(fc.Name, fc.Field, opts...)
	default:
		// Validate() rejects unknown kinds before this point.
		return nil
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWith(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

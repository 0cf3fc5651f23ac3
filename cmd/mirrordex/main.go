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

	"github.com/kailas-cloud/mirrordex/internal/config"
	"github.com/kailas-cloud/mirrordex/internal/domain"
	logpkg "github.com/kailas-cloud/mirrordex/internal/logger"
	"github.com/kailas-cloud/mirrordex/internal/metrics"
	aclrepo "github.com/kailas-cloud/mirrordex/internal/repository/acl"
	contentrepo "github.com/kailas-cloud/mirrordex/internal/repository/content"
	cursorrepo "github.com/kailas-cloud/mirrordex/internal/repository/cursor"
	indexrepo "github.com/kailas-cloud/mirrordex/internal/repository/index"
	"github.com/kailas-cloud/mirrordex/internal/transport/alfresco"
	chiTransport "github.com/kailas-cloud/mirrordex/internal/transport/chi"
	"github.com/kailas-cloud/mirrordex/internal/transport/engine"
	openaiEmb "github.com/kailas-cloud/mirrordex/internal/transport/openai"
	healthuc "github.com/kailas-cloud/mirrordex/internal/usecase/health"
	indexeruc "github.com/kailas-cloud/mirrordex/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/mirrordex/internal/usecase/search"
	"github.com/kailas-cloud/mirrordex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mirrordex",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("repository", cfg.Repository.BaseURL),
		zap.String("engine", cfg.Engine.BaseURL),
		zap.String("index", cfg.Engine.IndexName),
	)

	// Cursor store
	cursorStore, err := cursorrepo.New(cursorrepo.Config{
		Addrs:    cfg.Cursor.Addrs,
		Password: cfg.Cursor.Password,
		Key:      cfg.Cursor.Key,
	})
	if err != nil {
		logger.Fatal("Failed to create cursor store", zap.Error(err))
	}
	defer cursorStore.Close()

	ctx := context.Background()
	if err := cursorStore.WaitForReady(ctx, time.Duration(cfg.Cursor.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cursor store not ready", zap.Error(err))
	}
	logger.Info("Connected to cursor store")

	metrics.RegisterIndexingMetrics()

	// Upstream clients
	repoClient := alfresco.New(alfresco.Config{
		BaseURL:      cfg.Repository.BaseURL,
		TrackingPath: cfg.Repository.APIPath,
		Username:     cfg.Repository.Username,
		Password:     cfg.Repository.Password,
		Timeout:      time.Duration(cfg.Repository.TimeoutSec) * time.Second,
		Logger:       logger,
	})
	engineClient := engine.New(engine.Config{
		BaseURL:  cfg.Engine.BaseURL,
		Username: cfg.Engine.Username,
		Password: cfg.Engine.Password,
		Timeout:  time.Duration(cfg.Engine.TimeoutSec) * time.Second,
		Logger:   logger,
	})

	// Repositories
	contentRepo := contentrepo.New(repoClient)
	aclResolver := aclrepo.New(repoClient, aclrepo.Config{
		EveryoneRead:  cfg.EveryoneRead(),
		EveryoneGroup: cfg.ACL.EveryoneGroup,
		Logger:        logger,
	})
	indexRepo := indexrepo.New(engineClient, cfg.Engine.IndexName, logger)

	// Optional query embedder
	var embedder *openaiEmb.Embedder
	if cfg.Embedding.Model != "" {
		embedder = openaiEmb.NewEmbedder(openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
		logger.Info("Query embedder enabled", zap.String("model", cfg.Embedding.Model))
	}

	// Usecases
	indexerSvc := indexeruc.New(contentRepo, aclResolver, indexRepo, cursorStore, indexeruc.Config{
		MaxResults:     cfg.Indexer.MaxResults,
		SegmentChars:   cfg.Indexer.SegmentChars,
		IndexableTypes: cfg.Indexer.IndexableTypes,
		Logger:         logger,
	})

	var queryEmbedder domain.Embedder
	if embedder != nil {
		queryEmbedder = embedder
	}
	searchSvc := searchuc.New(engineClient, aclResolver, searchuc.NewBuilder(queryEmbedder), searchuc.Config{
		IndexName:  cfg.Engine.IndexName,
		MaxResults: cfg.Indexer.MaxResults,
		Logger:     logger,
	})

	var embeddingCheck healthuc.EmbeddingChecker
	if embedder != nil {
		embeddingCheck = embedder
	}
	healthSvc := healthuc.New(cursorStore, indexRepo, embeddingCheck)

	// HTTP server
	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Scheduler: one goroutine drives the indexing loop until shutdown.
	schedCtx, stopScheduler := context.WithCancel(ctx)
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		interval := time.Duration(cfg.Indexer.IntervalSec) * time.Second
		logger.Info("Starting indexing scheduler", zap.Duration("interval", interval))
		indexerSvc.Run(schedCtx, interval)
	}()

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

	stopScheduler()
	<-schedDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
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
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

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

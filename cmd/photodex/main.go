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

	"github.com/kailas-cloud/photodex/internal/config"
	dbRedis "github.com/kailas-cloud/photodex/internal/db/redis"
	logpkg "github.com/kailas-cloud/photodex/internal/logger"
	"github.com/kailas-cloud/photodex/internal/metrics"
	photorepo "github.com/kailas-cloud/photodex/internal/repository/photo"
	awsTransport "github.com/kailas-cloud/photodex/internal/transport/aws"
	chiTransport "github.com/kailas-cloud/photodex/internal/transport/chi"
	natsTransport "github.com/kailas-cloud/photodex/internal/transport/nats"
	openaiTransport "github.com/kailas-cloud/photodex/internal/transport/openai"
	healthuc "github.com/kailas-cloud/photodex/internal/usecase/health"
	indexeruc "github.com/kailas-cloud/photodex/internal/usecase/indexer"
	ingestuc "github.com/kailas-cloud/photodex/internal/usecase/ingest"
	interpretuc "github.com/kailas-cloud/photodex/internal/usecase/interpret"
	queryuc "github.com/kailas-cloud/photodex/internal/usecase/query"
	searchuc "github.com/kailas-cloud/photodex/internal/usecase/search"
	"github.com/kailas-cloud/photodex/internal/version"
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

	logger.Info("Starting photodex",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("recognition_driver", cfg.Recognition.Driver),
		zap.String("nlu_driver", cfg.NLU.Driver),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:        cfg.Database.Addrs,
		Username:     cfg.Database.Username,
		Password:     cfg.Database.Password,
		WriteTimeout: time.Duration(cfg.Database.WriteTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()
	metrics.RegisterProviderMetrics()
	metrics.RegisterHTTPMetrics()

	awsClients, err := awsTransport.NewClients(ctx, awsTransport.Config{
		Region:       cfg.AWS.Region,
		MaxAttempts:  cfg.AWS.MaxAttempts,
		Timeout:      time.Duration(cfg.AWS.TimeoutSec) * time.Second,
		S3Endpoint:   cfg.Storage.Endpoint,
		UsePathStyle: cfg.Storage.UsePathStyle,
	})
	if err != nil {
		logger.Fatal("Failed to create AWS clients", zap.Error(err))
	}

	// Index
	repo := photorepo.New(store, cfg.Index.KeyPrefix, cfg.Index.Name)
	writer := indexeruc.New(repo)
	if err := writer.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure photo index", zap.Error(err))
	}
	logger.Info("Photo index ready", zap.String("index", repo.IndexName()))

	providers := map[string]healthuc.Checker{}

	// Ingestion path
	recognizer := buildRecognizer(cfg, awsClients, logger)
	if hc, ok := recognizer.(healthuc.Checker); ok {
		providers["recognition"] = hc
	}
	ingestSvc := ingestuc.New(recognizer, awsTransport.NewMetadataReader(awsClients.S3), writer, logger)

	// Query path
	nlu := buildNLU(cfg, awsClients, logger)
	if hc, ok := nlu.(healthuc.Checker); ok {
		providers["nlu"] = hc
	}
	interpreter := interpretuc.New(nlu, interpretuc.Bot{
		Name:  cfg.NLU.BotName,
		Alias: cfg.NLU.BotAlias,
		Slots: cfg.NLU.Slots,
	})
	executor := searchuc.New(repo, searchuc.Options{})
	querySvc := queryuc.New(interpreter, executor, cfg.Storage.PublicBaseURL, logger)

	healthSvc := healthuc.New(store, providers)

	// Upload events over JetStream
	var subscriber *natsTransport.Subscriber
	if cfg.Events.Enabled {
		nc, err := natsTransport.Connect(cfg.Events.NATSURL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer nc.Close()

		subscriber, err = natsTransport.NewSubscriber(nc, ingestSvc, natsTransport.Config{
			Stream:        cfg.Events.Stream,
			Subject:       cfg.Events.Subject,
			Durable:       cfg.Events.Durable,
			MaxAckPending: cfg.Events.MaxAckPending,
			AckWait:       time.Duration(cfg.Events.AckWaitSec) * time.Second,
			MaxDeliver:    cfg.Events.MaxDeliver,
			RetryDelay:    time.Duration(cfg.Events.RetryDelayMs) * time.Millisecond,
			MaxRetryDelay: time.Duration(cfg.Events.MaxRetryDelaySec) * time.Second,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create upload subscriber", zap.Error(err))
		}
		if err := subscriber.EnsureStream(); err != nil {
			logger.Fatal("Failed to ensure upload stream", zap.Error(err))
		}
		if err := subscriber.Start(ctx); err != nil {
			logger.Fatal("Failed to start upload subscriber", zap.Error(err))
		}
	}

	// Create chi server
	server := chiTransport.NewServer(chiTransport.Deps{
		Query:         querySvc,
		Uploads:       ingestSvc,
		Lookup:        executor,
		Photos:        writer,
		Health:        healthSvc,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		IndexName:     repo.IndexName(),
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r, cfg.Auth.APIKeys)

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

	if subscriber != nil {
		if err := subscriber.Stop(); err != nil {
			logger.Error("Error draining upload subscriber", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildRecognizer selects the label extraction driver.
func buildRecognizer(cfg config.Config, clients *awsTransport.Clients, logger *zap.Logger) ingestuc.Recognizer {
	switch cfg.Recognition.Driver {
	case "openai":
		return openaiTransport.NewRecognizer(&openaiTransport.Config{
			APIKey:   cfg.OpenAI.APIKey,
			BaseURL:  cfg.OpenAI.BaseURL,
			Model:    cfg.Recognition.Model,
			Timeout:  time.Duration(cfg.OpenAI.TimeoutSec) * time.Second,
			Provider: "openai",
			Logger:   logger,
		}, cfg.Storage.PublicBaseURL, cfg.Recognition.MaxLabels)
	default:
		return awsTransport.NewRecognizer(clients.Rekognition, awsTransport.RecognizerConfig{
			MaxLabels:     cfg.Recognition.MaxLabels,
			MinConfidence: cfg.Recognition.MinConfidence,
		})
	}
}

// buildNLU selects the slot-filling driver.
func buildNLU(cfg config.Config, clients *awsTransport.Clients, logger *zap.Logger) interpretuc.NLU {
	switch cfg.NLU.Driver {
	case "openai":
		return openaiTransport.NewNLU(&openaiTransport.Config{
			APIKey:   cfg.OpenAI.APIKey,
			BaseURL:  cfg.OpenAI.BaseURL,
			Model:    cfg.NLU.Model,
			Timeout:  time.Duration(cfg.OpenAI.TimeoutSec) * time.Second,
			Provider: "openai",
			Logger:   logger,
		})
	default:
		return awsTransport.NewLexNLU(clients.Lex)
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
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

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scoutpost/internal/identity"
	"scoutpost/internal/lifecycle/audit"
	"scoutpost/internal/lifecycle/catalog"
	"scoutpost/internal/lifecycle/handler"
	"scoutpost/internal/lifecycle/lock"
	"scoutpost/internal/lifecycle/metrics"
	"scoutpost/internal/lifecycle/ports"
	erasureService "scoutpost/internal/lifecycle/service/erasure"
	exportService "scoutpost/internal/lifecycle/service/export"
	blobStore "scoutpost/internal/lifecycle/store/blob"
	documentStore "scoutpost/internal/lifecycle/store/document"
	jobStore "scoutpost/internal/lifecycle/store/job"
	ledgerStore "scoutpost/internal/lifecycle/store/ledger"
	"scoutpost/internal/lifecycle/worker"
	"scoutpost/internal/platform/config"
	"scoutpost/internal/platform/httpserver"
	"scoutpost/internal/platform/logger"
	"scoutpost/internal/platform/postgres"
	platformRedis "scoutpost/internal/platform/redis"
	"scoutpost/internal/platform/token"
	authmw "scoutpost/pkg/platform/middleware/auth"
	"scoutpost/pkg/platform/middleware/requestmeta"
)

// main wires the lifecycle engine: stores, lock, audit sink, services, the
// background worker pool and the HTTP surface. Business logic lives in the
// internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		docs   ports.DocumentStore
		ledger ports.LedgerStore
		jobs   ports.JobStore
	)
	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		docStore := documentStore.NewPostgres(db)
		ledStore := ledgerStore.NewPostgres(db)
		jStore := jobStore.NewPostgres(db)
		for _, ensure := range []func(context.Context) error{
			docStore.EnsureSchema, ledStore.EnsureSchema, jStore.EnsureSchema,
		} {
			if err := ensure(ctx); err != nil {
				return err
			}
		}
		docs, ledger, jobs = docStore, ledStore, jStore
		log.Info("using postgres stores")
	} else {
		docs = documentStore.NewInMemoryStore()
		ledger = ledgerStore.NewInMemoryStore()
		jobs = jobStore.NewInMemoryStore()
		log.Warn("postgres not configured, using in-memory stores")
	}

	// Subject lock: Redis when configured, process-local otherwise.
	var locker ports.SubjectLocker
	redisClient, err := platformRedis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient.Client)
		log.Info("using redis subject locker")
	} else {
		locker = lock.NewInMemoryLocker()
		log.Warn("redis not configured, using in-memory subject locker")
	}

	var blobs ports.BlobStore
	if cfg.Blob.Bucket != "" {
		s3Store, err := blobStore.NewS3Store(ctx, cfg.Blob)
		if err != nil {
			return err
		}
		blobs = s3Store
		log.Info("using s3 blob store", "bucket", cfg.Blob.Bucket)
	} else {
		blobs = blobStore.NewInMemoryStore()
		log.Warn("blob bucket not configured, using in-memory blob store")
	}

	// Audit sink: Kafka behind a drain worker when configured, in-memory
	// otherwise.
	var auditSink audit.Store
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaStore, err := audit.NewKafkaStore(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer kafkaStore.Close()
		buffer := audit.NewChannelSink(256)
		go func() {
			_ = audit.NewWorker(kafkaStore, buffer.Events(), log).Run(ctx)
		}()
		auditSink = buffer
		log.Info("using kafka audit sink", "topic", cfg.Kafka.Topic)
	} else {
		auditSink = audit.NewInMemoryStore()
		log.Warn("kafka not configured, audit events stay in memory")
	}
	publisher := audit.NewPublisher(auditSink)

	var revoker ports.IdentityRevoker
	if cfg.Identity.BaseURL != "" {
		revoker = identity.NewHTTPRevoker(cfg.Identity, identity.WithLogger(log))
	} else {
		revoker = identity.NewNoopRevoker(log)
		log.Warn("identity provider not configured, credential revocation is a no-op")
	}

	m := metrics.New()
	cat := catalog.Default()

	erasure, err := erasureService.New(cat, docs, blobs, ledger, jobs, revoker, locker,
		erasureService.WithLogger(log),
		erasureService.WithAuditPublisher(publisher),
		erasureService.WithMetrics(m),
		erasureService.WithStepTimeout(cfg.Engine.StepTimeout),
		erasureService.WithRetry(cfg.Engine.RetryMaxAttempts, cfg.Engine.RetryInitialDelay),
	)
	if err != nil {
		return err
	}
	export, err := exportService.New(cat, docs,
		exportService.WithLogger(log),
		exportService.WithAuditPublisher(publisher),
		exportService.WithMetrics(m),
		exportService.WithConcurrency(cfg.Engine.ExportConcurrency),
	)
	if err != nil {
		return err
	}

	pool := worker.NewPool(erasure,
		worker.WithLogger(log),
		worker.WithWorkerCount(cfg.Engine.WorkerCount),
	)
	poolDone := make(chan struct{})
	go func() {
		defer close(poolDone)
		if err := pool.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("worker pool stopped", "error", err)
		}
	}()

	tokens := token.NewService(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)

	router := chi.NewRouter()
	router.Use(requestmeta.Middleware)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Group(func(r chi.Router) {
		r.Use(authmw.RequireServiceToken(tokens, log))
		handler.New(erasure, export, pool, log).Register(r)
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting scoutpost lifecycle server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-poolDone
	log.Info("shutdown complete")
	return nil
}

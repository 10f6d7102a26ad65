package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"formflow/internal/audit"
	"formflow/internal/catalog"
	"formflow/internal/platform/config"
	"formflow/internal/platform/httpserver"
	"formflow/internal/platform/kafka"
	"formflow/internal/platform/logger"
	"formflow/internal/platform/metrics"
	"formflow/internal/platform/postgres"
	"formflow/internal/platform/redis"
	progressHandler "formflow/internal/progress/handler"
	progressMetrics "formflow/internal/progress/metrics"
	progressService "formflow/internal/progress/service"
	progressStore "formflow/internal/progress/store"
	submissionHandler "formflow/internal/submission/handler"
	submissionMetrics "formflow/internal/submission/metrics"
	submissionService "formflow/internal/submission/service"
	submissionStore "formflow/internal/submission/store"
	"formflow/internal/submission/uniqueness"
	httptransport "formflow/internal/transport/http"
	"formflow/pkg/platform/circuit"
	txcontext "formflow/pkg/platform/tx"
)

const auditPartitions = 3

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

type catalogStore interface {
	progressService.Catalog
	submissionService.Catalog
	catalog.Writer
}

type answerStore interface {
	submissionService.Store
	progressService.AnswerIndex
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	kc, err := kafka.NewClient(ctx, cfg.Kafka)
	if err != nil {
		return err
	}
	defer closeAll(log, db, rdb, kc)

	checks := map[string]httptransport.Check{}

	var (
		cat      catalogStore           = catalog.NewInMemoryStore()
		answers  answerStore            = submissionStore.NewInMemory()
		statuses progressService.Store  = progressStore.NewInMemory()
		locks    progressService.Locker = progressStore.NewApplicationLocks()
		index    uniqueness.Index       = uniqueness.NewInMemory()
		runner   txcontext.Runner       = txcontext.NoopRunner{}
		sink     audit.Store            = audit.NewInMemoryStore()
	)
	if db != nil {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		cat = catalog.NewPostgresStore(db)
		answers = submissionStore.NewPostgres(db)
		statuses = progressStore.NewPostgres(db)
		runner = txcontext.NewSQLRunner(db, 0)
		locks = progressStore.NewAdvisoryLocks(db)
		checks["postgres"] = db.PingContext
		log.Info("using postgres stores")
	}
	if rdb != nil {
		index = uniqueness.NewGuarded(uniqueness.NewRedis(rdb.Client), circuit.New("redis-uniqueness"), log)
		checks["redis"] = rdb.Health
		log.Info("using redis uniqueness index")
	}
	if kc != nil {
		if err := kafka.EnsureTopic(ctx, kc, cfg.Kafka.AuditTopic, auditPartitions); err != nil {
			return err
		}
		sink = audit.NewKafkaSink(kc, cfg.Kafka.AuditTopic)
		checks["kafka"] = kc.Ping
		log.Info("publishing audit events to kafka", "topic", cfg.Kafka.AuditTopic)
	}

	if cfg.CatalogSeedPath != "" {
		seed, err := catalog.LoadSeed(cfg.CatalogSeedPath)
		if err != nil {
			return fmt.Errorf("load catalog seed: %w", err)
		}
		if err := catalog.Seed(ctx, cat, seed); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		log.Info("catalog seeded", "path", cfg.CatalogSeedPath, "stages", len(seed.Stages))
	}

	queue := make(chan audit.Event, cfg.AuditBuffer)
	publisher := audit.NewQueuedPublisher(queue, audit.WithLogger(log))
	worker := audit.NewWorker(sink, queue, log)

	progress := progressService.New(cat, answers, statuses,
		progressService.WithLogger(log),
		progressService.WithAuditPublisher(publisher),
		progressService.WithMetrics(progressMetrics.New()),
		progressService.WithLocker(locks),
		progressService.WithTxRunner(runner),
	)
	submissions := submissionService.New(cat, answers, index, progress,
		submissionService.WithLogger(log),
		submissionService.WithAuditPublisher(publisher),
		submissionService.WithMetrics(submissionMetrics.New()),
		submissionService.WithTxRunner(runner),
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:          log,
		Metrics:         metrics.New(),
		RequestTimeout:  cfg.RequestTimeout,
		ReadinessChecks: checks,
	},
		submissionHandler.New(submissions, log),
		progressHandler.New(progress, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	// The worker outlives the server so events queued by the last requests
	// are still appended.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	var g errgroup.Group
	g.Go(func() error {
		return worker.Run(workerCtx)
	})
	g.Go(func() error {
		defer stopWorker()
		return httpserver.Run(ctx, srv, cfg.ShutdownTimeout, log)
	})
	return g.Wait()
}

func closeAll(log *slog.Logger, db *sql.DB, rdb *redis.Client, kc *kgo.Client) {
	if kc != nil {
		kc.Close()
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn("failed to close redis", "error", err)
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			log.Warn("failed to close postgres", "error", err)
		}
	}
}

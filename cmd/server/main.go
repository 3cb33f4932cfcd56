// Command server runs the underwriting gateway: it loads the compiled rule
// registry, wires the verification agents and decision pipeline, and serves
// the HTTP API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"uwgate/internal/agents"
	"uwgate/internal/agents/bureau"
	"uwgate/internal/audit"
	"uwgate/internal/planner"
	"uwgate/internal/platform/config"
	"uwgate/internal/platform/httpserver"
	"uwgate/internal/platform/logger"
	"uwgate/internal/platform/middleware"
	"uwgate/internal/platform/redis"
	"uwgate/internal/rules/registry"
	"uwgate/internal/underwriting"
	"uwgate/internal/underwriting/handler"
	"uwgate/internal/underwriting/store"
)

const auditInboxSize = 256

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Fail-closed: without a valid compiled registry the server must not serve.
	reg, err := registry.LoadFile(cfg.Rules.RegistryPath)
	if err != nil {
		return err
	}
	for rule, warnings := range planner.ValidateRegistry(reg) {
		for _, warning := range warnings {
			log.Warn("registry deviates from router tables", "rule", rule, "warning", warning)
		}
	}
	snapshot := registry.NewSnapshot(reg)
	log.Info("rule registry loaded", "path", cfg.Rules.RegistryPath, "rules", reg.Len())

	opts := []underwriting.Option{}

	if cfg.Postgres.DSN != "" {
		pg, err := store.NewPostgres(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		opts = append(opts, underwriting.WithStore(pg))
		log.Info("decision store: postgres")
	} else {
		opts = append(opts, underwriting.WithStore(store.NewMemory()))
		log.Info("decision store: memory")
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts = append(opts, underwriting.WithCache(store.NewRedisCache(redisClient, cfg.Redis.DecisionTTL)))
		log.Info("decision cache: redis")
	}

	var sink audit.Sink = audit.NewLogSink(log)
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err = audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		log.Info("audit sink: kafka", "topic", cfg.Kafka.Topic)
	}
	defer sink.Close()
	inbox := make(chan audit.Event, auditInboxSize)
	worker := audit.NewWorker(sink, inbox, log)
	opts = append(opts, underwriting.WithAuditPublisher(audit.NewPublisher(inbox, log)))

	b := bureau.New()
	runner := agents.NewRunner(log, cfg.Agents.DefaultTimeout,
		agents.NewIdentityAgent(b),
		agents.NewIncomeAgent(b),
		agents.NewFraudAgent(b),
	)

	svc := underwriting.NewService(log, snapshot, runner, opts...)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Group(func(api chi.Router) {
		if cfg.Server.AuthRequired {
			api.Use(middleware.RequireAuth(middleware.NewHMACValidator(cfg.Server.JWTSigningKey), log))
		}
		handler.New(svc, log).Register(api)
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/playground/bountyhub/internal/application"
	appanalysis "github.com/playground/bountyhub/internal/application/analysis"
	appbounties "github.com/playground/bountyhub/internal/application/bounties"
	apphunters "github.com/playground/bountyhub/internal/application/hunters"
	"github.com/playground/bountyhub/internal/infra/httpserver"
	"github.com/playground/bountyhub/internal/infra/queue"
	"github.com/playground/bountyhub/internal/infra/scheduler"
	minioStore "github.com/playground/bountyhub/internal/infra/storage"
	"github.com/playground/bountyhub/internal/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, screening workers and rescreen sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	repos := newRepositories(cfg, db)

	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		return fmt.Errorf("minio init error: %w", err)
	}

	aiClient, err := newAIClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ai client init error: %w", err)
	}

	ready := middleware.NewReadiness(2 * time.Second).
		Add("database", middleware.PingDB(db)).
		Add("storage", store)

	var q apphunters.Queue
	switch cfg.Queue.Driver {
	case "redis":
		rdb, err := queue.NewRedisClient(ctx, cfg.Queue.RedisURL)
		if err != nil {
			return err
		}
		rq := queue.NewRedis(rdb, cfg.Queue.Key)
		defer rq.Close()
		ready.Add("queue", rq)
		q = rq
	default:
		mq := queue.NewMemory(cfg.Queue.Size)
		defer mq.Close()
		q = mq
	}

	clock := application.SystemClock{}
	ids := application.UUIDGenerator{}
	hunters := &apphunters.Service{
		Profiles: repos.profiles,
		Resumes:  store,
		Failures: repos.failures,
		Queue:    q,
		Clock:    clock,
		IDs:      ids,
		Log:      logger.Named("hunters"),
		Observer: middleware.ScreeningObserver{},
	}

	g, gctx := errgroup.WithContext(ctx)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(gctx, cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
	}

	handler := httpserver.NewRouter(httpserver.Deps{
		Analysis:       appanalysis.NewService(aiClient),
		Bounties:       &appbounties.Service{Repo: repos.bounties, Clock: clock, IDs: ids},
		Hunters:        hunters,
		Logger:         logger.Named("http"),
		APIKeys:        cfg.Auth.APIKeys,
		RateLimiter:    limiter,
		CORSOrigins:    cfg.Server.CORSOrigins,
		Readiness:      ready,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	pool := apphunters.NewPool(hunters, q, cfg.Queue.Workers, apphunters.RetryConfig{
		MaxAttempts: cfg.Queue.MaxAttempts,
		BaseDelay:   cfg.Queue.Backoff,
	}, logger.Named("worker"))
	g.Go(func() error { return pool.Run(gctx) })

	sched := scheduler.New(hunters, cfg.Sweep.Schedule, cfg.Sweep.Grace, cfg.Sweep.Batch, logger.Named("sweep"))
	g.Go(func() error { return sched.Run(gctx) })

	return g.Wait()
}

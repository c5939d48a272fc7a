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

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/calculator"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/config"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/consumer"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/dedup"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/hub"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/logging"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/opportunity"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/presenter"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/publisher"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/retry"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/scanner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("hedge calculator stopped with error")
	}
	logger.Info().Msg("hedge calculator stopped")
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policy, err := cfg.CommissionPolicy()
	if err != nil {
		return err
	}

	engine := calculator.NewEngine(policy)
	platforms := opportunity.NewRegistry(opportunity.DefaultPlatforms(cfg.Hedge.BetfairCommission, cfg.Hedge.SmarketsCommission)...)
	finder := opportunity.NewFinder(engine, platforms)
	render := presenter.New(platforms)
	defaults := opportunity.Criteria{
		Stake:               cfg.Hedge.DefaultStake,
		MinProfitPercentage: cfg.Hedge.MinProfitPct,
		MaxResults:          cfg.Hedge.MaxResults,
	}

	g, gctx := errgroup.WithContext(ctx)

	feed := hub.NewHub(logger)
	g.Go(func() error {
		feed.Run(gctx)
		return nil
	})

	var scan *scanner.Scanner
	if cfg.ScannerEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.URL, err)
		}
		logger.Info().Str("addr", cfg.Redis.URL).Msg("connected to redis")

		scanCfg := scanner.Config{
			Consumer:    consumer.NewStreamConsumer(redisClient, cfg.Stream.ConsumerID, cfg.Stream.ConsumerGroup),
			Publisher:   publisher.NewStreamPublisher(redisClient, cfg.Stream.OpportunityStream, cfg.Stream.OpportunityMaxLen),
			Broadcaster: feed,
			Finder:      finder,
			Presenter:   render,
			Retry:       retry.NewPolicy(cfg.Stream.PublishAttempts, 100*time.Millisecond, 2*time.Second),
			Criteria:    defaults,
			StreamKey:   cfg.Stream.SnapshotStream,
			Logger:      logger,
		}
		if cfg.Stream.DedupTTLSeconds > 0 {
			scanCfg.Dedup = dedup.NewDeduplicator(redisClient, time.Duration(cfg.Stream.DedupTTLSeconds)*time.Second)
		}
		scan = scanner.New(scanCfg)
		g.Go(func() error {
			return scan.Run(gctx)
		})
	} else {
		logger.Info().Msg("REDIS_URL not set, scanner disabled")
	}

	opts := handlers.Options{
		Engine:         engine,
		Platforms:      platforms,
		Finder:         finder,
		Presenter:      render,
		Defaults:       defaults,
		Hub:            feed,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	}
	if scan != nil {
		opts.Scanner = scan
	}
	handler := handlers.NewHandler(gctx, opts)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// The feed is long-lived and must not inherit the request timeout
	r.Get("/ws", handler.HandleWebSocket)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/health", handler.HealthCheck)
		r.Get("/metrics", handler.Metrics)
		r.Route("/api/v1/hedge", handler.APIRoutes)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info().
			Int("port", cfg.Server.Port).
			Str("policy", string(engine.Policy())).
			Float64("default_stake", cfg.Hedge.DefaultStake).
			Float64("min_profit_pct", cfg.Hedge.MinProfitPct).
			Bool("scanner", cfg.ScannerEnabled()).
			Msg("hedge calculator started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"edu-subscription-platform/internal/catalog"
	"edu-subscription-platform/internal/config"
	"edu-subscription-platform/internal/domain/ports/adapter"
	"edu-subscription-platform/internal/infra/api"
	payAdapters "edu-subscription-platform/internal/infra/adapters/payment"
	pg "edu-subscription-platform/internal/infra/db/postgres"
	"edu-subscription-platform/internal/infra/logging"
	"edu-subscription-platform/internal/infra/metrics"
	red "edu-subscription-platform/internal/infra/redis"
	"edu-subscription-platform/internal/infra/storage"
	"edu-subscription-platform/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, in-memory payments)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("exit")
	}
}

func run(cfg *config.Config, logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister(prometheus.DefaultRegisterer)
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	if cfg.Database.Migrate {
		if err := pg.ApplySchema(ctx, pool); err != nil {
			return err
		}
	}
	metrics.RegisterDBPool(prometheus.DefaultRegisterer, pg.PoolStat(pool))

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()
	limiter := red.NewRateLimiter(redisClient)

	// ---- Catalog ----
	plans, err := catalog.Load(cfg.Subscription.CatalogPath)
	if err != nil {
		return err
	}
	expiry, err := usecase.ExpiryPolicyByName(cfg.Subscription.ExpiryPolicy)
	if err != nil {
		return err
	}

	// ---- Payments ----
	var gateway adapter.PaymentGateway
	switch {
	case cfg.PaymentsConfigured():
		sg, err := payAdapters.NewStripeGateway(cfg.Payment.Stripe.APIKey, cfg.Payment.Stripe.WebhookSecret)
		if err != nil {
			return err
		}
		gateway = sg
	case cfg.Runtime.Dev:
		noop := payAdapters.NewNoopPaymentGateway(cfg.Payment.Stripe.WebhookSecret)
		ev := logger.Warn()
		if cfg.Payment.Stripe.WebhookSecret == "" {
			ev = ev.Str("webhook_secret", noop.Secret())
		}
		ev.Msg("stripe not configured; using in-memory payment gateway")
		gateway = noop
	default:
		logger.Warn().Msg("stripe not configured; checkout and status polling are disabled")
	}

	// ---- Content ----
	var content adapter.ContentStore
	if s3cfg := cfg.Content.S3; s3cfg.Bucket != "" {
		s3, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    s3cfg.Bucket,
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
		})
		if err != nil {
			return fmt.Errorf("s3: %w", err)
		}
		content = s3
	} else if cfg.Content.StaticBaseURL != "" {
		content = storage.NewStaticStore(cfg.Content.StaticBaseURL)
	}

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepo(pool)
	payRepo := pg.NewPaymentRepo(pool)
	courseRepo := pg.NewCourseRepoCacheDecorator(pg.NewCourseRepo(pool), redisClient, cfg.Redis.TTL)
	enrollRepo := pg.NewEnrollmentRepo(pool)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, tm, logger)
	paymentUC := usecase.NewPaymentUseCase(payRepo, userRepo, tm, plans, gateway, expiry, logger)
	checkoutUC := usecase.NewCheckoutUseCase(payRepo, plans, gateway, limiter,
		cfg.Payment.CheckoutLimit, cfg.Payment.CheckoutWindow, logger)
	courseUC := usecase.NewCourseUseCase(courseRepo, content, cfg.Content.URLTTL, logger)
	enrollUC := usecase.NewEnrollmentUseCase(enrollRepo, courseRepo, courseUC, plans, tm)

	// ---- HTTP ----
	srv := api.NewServer(cfg.HTTP, api.Deps{
		Catalog:     plans,
		Users:       userUC,
		Checkout:    checkoutUC,
		Payments:    paymentUC,
		Courses:     courseUC,
		Enrollments: enrollUC,
		Auth:        api.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Ready: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		},
	}, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	logger.Info().Msg("stopped")
	return nil
}

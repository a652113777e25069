package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/auth"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/nikolayk812/storefront/internal/payment/yookassa"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/nikolayk812/storefront/internal/storage"
	"github.com/nikolayk812/storefront/internal/transport"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "apply pending migrations before serving"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if c.Bool("migrate") {
				if err := migrateUp(cfg); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.ConfigureLogger(); err != nil {
		return cfg, fmt.Errorf("cfg.ConfigureLogger: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool.Ping: %w", err)
	}

	m := metrics.New()

	svc, err := buildServices(cfg, pool, m)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("cfg.Location: %w", err)
	}

	router, err := transport.Router(svc, transport.Options{
		Location:       loc,
		MediaRoot:      cfg.MediaRoot,
		MaxAvatarBytes: cfg.MaxAvatarBytes,
		SecureCookie:   cfg.SecureCookie,
		TokenTTL:       cfg.TokenTTL,
		SignInRate:     rate.Limit(cfg.SignInRatePerSecond),
		SignInBurst:    cfg.SignInBurst,
		Metrics:        m,
		Health:         pool.Ping,
	})
	if err != nil {
		return fmt.Errorf("transport.Router: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("address", cfg.HTTPAddress).Info("http server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server.ListenAndServe: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		log.Info("http server shutting down")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server.Shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func buildServices(cfg config.Config, pool *pgxpool.Pool, m *metrics.Metrics) (transport.Services, error) {
	unit, err := cfg.CurrencyUnit()
	if err != nil {
		return transport.Services{}, fmt.Errorf("cfg.CurrencyUnit: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return transport.Services{}, fmt.Errorf("cfg.Location: %w", err)
	}

	tx, err := repository.NewTransactor(pool)
	if err != nil {
		return transport.Services{}, fmt.Errorf("repository.NewTransactor: %w", err)
	}

	catalogRepo := repository.NewCatalog(pool)
	orderRepo := repository.NewOrder(pool)
	clock := service.NewClock(loc)

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL, time.Now)
	if err != nil {
		return transport.Services{}, fmt.Errorf("auth.NewTokens: %w", err)
	}

	avatars, err := storage.NewAvatarStore(cfg.MediaRoot, cfg.MaxAvatarBytes)
	if err != nil {
		return transport.Services{}, fmt.Errorf("storage.NewAvatarStore: %w", err)
	}

	gateway, err := yookassa.New(yookassa.Config{
		BaseURL:    cfg.YooKassa.BaseURL,
		ShopID:     cfg.YooKassa.ShopID,
		SecretKey:  cfg.YooKassa.SecretKey,
		Timeout:    cfg.YooKassa.Timeout,
		MaxRetries: cfg.YooKassa.MaxRetries,
	}, yookassa.WithAttemptObserver(func(operation, result string) {
		m.ProviderAttempts.WithLabelValues(operation, result).Inc()
	}))
	if err != nil {
		return transport.Services{}, fmt.Errorf("yookassa.New: %w", err)
	}

	catalogSvc, err := service.NewCatalog(catalogRepo, clock)
	if err != nil {
		return transport.Services{}, fmt.Errorf("service.NewCatalog: %w", err)
	}

	basketSvc, err := service.NewBasket(repository.NewBasket(pool), catalogRepo, clock)
	if err != nil {
		return transport.Services{}, fmt.Errorf("service.NewBasket: %w", err)
	}

	orderSvc, err := service.NewOrder(tx, orderRepo, catalogRepo, clock, unit, m)
	if err != nil {
		return transport.Services{}, fmt.Errorf("service.NewOrder: %w", err)
	}

	paymentSvc, err := service.NewPayment(tx, orderRepo, gateway, m, service.PaymentOptions{
		ReturnURL:            cfg.PaymentReturnURL(),
		ManualCaptureEnabled: cfg.ManualCaptureEnabled,
	})
	if err != nil {
		return transport.Services{}, fmt.Errorf("service.NewPayment: %w", err)
	}

	profileSvc, err := service.NewProfile(repository.NewProfile(pool), avatars)
	if err != nil {
		return transport.Services{}, fmt.Errorf("service.NewProfile: %w", err)
	}

	authSvc, err := service.NewAuth(tx, repository.NewUser(pool), tokens, auth.NewPasswords(cfg.BcryptCost))
	if err != nil {
		return transport.Services{}, fmt.Errorf("service.NewAuth: %w", err)
	}

	return transport.Services{
		Catalog:  catalogSvc,
		Baskets:  basketSvc,
		Orders:   orderSvc,
		Payments: paymentSvc,
		Profiles: profileSvc,
		Auth:     authSvc,
	}, nil
}

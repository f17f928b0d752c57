package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/motlupets/storefront/internal/api"
	"github.com/motlupets/storefront/internal/api/handler"
	"github.com/motlupets/storefront/internal/api/metrics"
	"github.com/motlupets/storefront/internal/api/middleware"
	"github.com/motlupets/storefront/internal/core/domain"
	"github.com/motlupets/storefront/internal/core/ports"
	"github.com/motlupets/storefront/internal/core/service"
	"github.com/motlupets/storefront/internal/infrastructure/blob"
	"github.com/motlupets/storefront/internal/infrastructure/config"
	"github.com/motlupets/storefront/internal/infrastructure/db/memory"
	mongodb "github.com/motlupets/storefront/internal/infrastructure/db/mongo"
	redisdb "github.com/motlupets/storefront/internal/infrastructure/db/redis"
	"github.com/motlupets/storefront/internal/infrastructure/notify"
	"github.com/motlupets/storefront/internal/infrastructure/payment"
	"github.com/motlupets/storefront/internal/infrastructure/queue"
	"github.com/motlupets/storefront/internal/pkg/credential"
	"github.com/motlupets/storefront/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	maxSweepEvery   = time.Minute
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "storefront",
		Env:     cfg.Env,
		Version: Version,
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	users := mongodb.NewUserRepository(db)
	products := mongodb.NewProductRepository(db)
	orders := mongodb.NewOrderRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, products, orders); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	reservations := newReservationStore(ctx, cfg, rdb, log)

	// --- Credentials ---
	userIssuer, err := credential.NewIssuer(cfg.Tokens.UserAccessSecret, cfg.Tokens.UserRefreshSecret)
	if err != nil {
		return fmt.Errorf("user issuer: %w", err)
	}
	adminIssuer, err := credential.NewIssuer(cfg.Tokens.AdminAccessSecret, cfg.Tokens.AdminRefreshSecret,
		credential.WithTTL(credential.DefaultAccessTTL, credential.AdminRefreshTTL))
	if err != nil {
		return fmt.Errorf("admin issuer: %w", err)
	}

	// --- Background work and outbound integrations ---
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, log,
		queue.WithTaskTimeout(cfg.Notify.Timeout),
		queue.WithResultHook(metrics.ObserveTask),
	)
	dispatcher.Start(ctx)

	sender, err := newMailSender(cfg, log)
	if err != nil {
		return err
	}
	notifier := notify.NewNotifier(sender, cfg.Notify.AdminEmail, log)
	gateway := payment.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.Timeout)

	images, err := newImageStore(cfg)
	if err != nil {
		return err
	}

	// --- Services ---
	limiter := redisdb.NewLoginLimiter(rdb, cfg.Login.MaxFailures, cfg.Login.Window)
	authSvc := service.NewAuthService(users, userIssuer, limiter, notifier, dispatcher, log)
	adminAuthSvc := service.NewAdminAuthService(adminIssuer, cfg.Admin.Email, cfg.Admin.Password, log)
	catalogSvc := service.NewCatalogService(products, images, log)
	cartSvc := service.NewCartService(users, products)
	orderSvc := service.NewOrderService(users, orders, log)
	userSvc := service.NewUserService(users)
	checkoutSvc := service.NewCheckoutService(users, products, orders, reservations, gateway, notifier, dispatcher,
		service.CheckoutConfig{
			KeyID:        cfg.Razorpay.KeyID,
			KeySecret:    cfg.Razorpay.KeySecret,
			CartFallback: cfg.Razorpay.CartFallback,
		}, log)

	// --- HTTP ---
	cookies := middleware.CookieConfig{Secure: cfg.IsProduction()}
	e := api.NewRouter(api.RouterConfig{
		CORSOrigins:       cfg.CORSOrigins,
		ExposeErrorDetail: !cfg.IsProduction(),
		UserGate: middleware.GateConfig{
			Realm:    middleware.RealmUser,
			Verifier: userIssuer,
			Rotator:  authSvc,
			Role:     domain.RoleUser,
			Cookies:  cookies,
		},
		AdminGate: middleware.GateConfig{
			Realm:    middleware.RealmAdmin,
			Verifier: adminIssuer,
			Rotator:  adminAuthSvc,
			Role:     domain.RoleAdmin,
			Cookies:  cookies,
		},
	}, api.Handlers{
		Auth:      handler.NewAuthHandler(authSvc, cookies, log),
		AdminAuth: handler.NewAdminAuthHandler(adminAuthSvc, cookies),
		Catalog:   handler.NewCatalogHandler(catalogSvc),
		Cart:      handler.NewCartHandler(cartSvc),
		Checkout:  handler.NewCheckoutHandler(checkoutSvc),
		Orders:    handler.NewOrderHandler(orderSvc),
		Users:     handler.NewUserHandler(userSvc),
		Health:    handler.NewHealthHandler(),
		Readiness: handler.NewReadinessHandler(map[string]handler.Pinger{
			"mongo": handler.MongoPinger(db),
			"redis": handler.RedisPinger(rdb),
		}),
	}, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Stop(sctx); err != nil {
		log.Warn().Err(err).Msg("background tasks did not drain")
	}
	return nil
}

// newReservationStore picks the configured backend. The in-memory store also
// exports its size and is swept when RESERVATION_SWEEP_AFTER is set.
func newReservationStore(ctx context.Context, cfg *config.Config, rdb *redis.Client, log zerolog.Logger) ports.ReservationStore {
	if cfg.Reservations.Backend == config.ReservationsRedis {
		return redisdb.NewReservationStore(rdb)
	}

	store := memory.NewReservationStore()
	metrics.RegisterReservationsPending(store.Len)
	if after := cfg.Reservations.SweepAfter; after > 0 {
		go sweepReservations(ctx, store, after, log)
	}
	return store
}

func sweepReservations(ctx context.Context, store *memory.ReservationStore, after time.Duration, log zerolog.Logger) {
	every := min(after, maxSweepEvery)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := store.Sweep(now.Add(-after)); n > 0 {
				log.Info().Int("dropped", n).Msg("stale reservations swept")
			}
		}
	}
}

func newMailSender(cfg *config.Config, log zerolog.Logger) (notify.Sender, error) {
	if cfg.Notify.Mode != config.NotifySMTP {
		return notify.NewLogSender(log), nil
	}
	sender, err := notify.NewSMTPSender(notify.SMTPConfig{
		Host:     cfg.Notify.SMTPHost,
		Port:     cfg.Notify.SMTPPort,
		Username: cfg.Notify.SMTPUser,
		Password: cfg.Notify.SMTPPass,
		From:     cfg.Notify.From,
		Timeout:  cfg.Notify.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("smtp sender: %w", err)
	}
	return sender, nil
}

func newImageStore(cfg *config.Config) (ports.ImageStore, error) {
	c := cfg.Cloudinary
	if c.CloudName == "" {
		return unconfiguredImages{}, nil
	}
	store, err := blob.NewCloudinaryStore(blob.Config{
		CloudName: c.CloudName,
		APIKey:    c.APIKey,
		APISecret: c.APISecret,
		Folder:    c.Folder,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// unconfiguredImages rejects uploads when no Cloudinary account is set.
type unconfiguredImages struct{}

func (unconfiguredImages) Upload(context.Context, io.Reader, string) (*ports.UploadedImage, error) {
	return nil, domain.NewError(domain.ErrUpstream, "image uploads are not configured")
}

func (unconfiguredImages) Delete(context.Context, string) error { return nil }

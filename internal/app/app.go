// Package app wires configuration, storage, domain services, and the HTTP
// server into a runnable application.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Prathap331/GB-Backend/internal/auth"
	"github.com/Prathap331/GB-Backend/internal/domain/offer"
	"github.com/Prathap331/GB-Backend/internal/domain/order"
	"github.com/Prathap331/GB-Backend/internal/domain/pricing"
	"github.com/Prathap331/GB-Backend/internal/handler"
	"github.com/Prathap331/GB-Backend/internal/invoice"
	"github.com/Prathap331/GB-Backend/internal/payment/razorpay"
	"github.com/Prathap331/GB-Backend/internal/storage/postgres"
	"github.com/Prathap331/GB-Backend/internal/supplier"
	"github.com/Prathap331/GB-Backend/pkg/health"
	"github.com/Prathap331/GB-Backend/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)

	// Repositories.
	catalogRepo := postgres.NewCatalogRepository(pool)
	offerRepo := postgres.NewOfferRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	deliveryRepo := postgres.NewDeliveryRepository(pool)

	// Lucky number allocator, seeded with the issued set so early draws rarely
	// hit the unique constraint.
	luckyDraw := order.NewLuckyDraw()
	issued, err := orderRepo.ListLuckyNumbers(ctx)
	if err != nil {
		return errors.Wrap(err, "seed lucky numbers")
	}
	luckyDraw.Seed(issued)
	lg.Info("Lucky number filter seeded", zap.Int("issued", len(issued)))

	// Domain services.
	gateway := razorpay.New(razorpay.Config{
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		BaseURL:   cfg.Razorpay.BaseURL,
		Timeout:   cfg.Razorpay.Timeout,
	})
	pricer := pricing.NewEngine(offer.NewRepoResolver(offerRepo))
	orderService := order.NewService(profileRepo, catalogRepo, pricer, orderRepo, luckyDraw, gateway)

	sources := make([]supplier.Source, len(cfg.Supplier.Sources))
	for i, s := range cfg.Supplier.Sources {
		sources[i] = supplier.Source{ID: s.ID, FeedURL: s.FeedURL, Token: s.Token, Gzipped: s.Gzipped}
	}
	syncer := supplier.NewSyncer(
		supplier.NewAPIFetcher(sources, cfg.Supplier.Timeout),
		catalogRepo,
		cfg.Supplier.Workers,
	)

	invoices := invoice.NewRenderer(invoice.Seller{
		Name:    cfg.Seller.Name,
		Address: cfg.Seller.Address,
		GSTIN:   cfg.Seller.GSTIN,
		Email:   cfg.Seller.Email,
	})

	verifier := auth.NewClient(auth.Config{
		BaseURL: cfg.Auth.BaseURL,
		APIKey:  cfg.Auth.APIKey,
		Timeout: cfg.Auth.Timeout,
	})

	// HTTP handlers.
	h := handler.NewHandler(orderService, catalogRepo, profileRepo, syncer, invoices, deliveryRepo, cfg.SyncSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes(verifier))

	healthSvc.SetReady(true)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "gb-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "X-Sync-Secret"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

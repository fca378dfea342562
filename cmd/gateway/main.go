package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/adapters/handler"
	"github.com/DanielPopoola/labresult-gateway/internal/adapters/handler/middleware"
	"github.com/DanielPopoola/labresult-gateway/internal/adapters/memory"
	"github.com/DanielPopoola/labresult-gateway/internal/adapters/notify"
	"github.com/DanielPopoola/labresult-gateway/internal/adapters/opay"
	"github.com/DanielPopoola/labresult-gateway/internal/adapters/postgres"
	"github.com/DanielPopoola/labresult-gateway/internal/adapters/redis"
	"github.com/DanielPopoola/labresult-gateway/internal/api"
	"github.com/DanielPopoola/labresult-gateway/internal/config"
	"github.com/DanielPopoola/labresult-gateway/internal/core/codegen"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/DanielPopoola/labresult-gateway/internal/core/ports"
	"github.com/DanielPopoola/labresult-gateway/internal/core/service"
	"github.com/DanielPopoola/labresult-gateway/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting lab result gateway",
		"port", cfg.Server.Port,
		"env", cfg.Primary.Env,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	applied, err := postgres.Migrate(ctx, db)
	if err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	if len(applied) > 0 {
		logger.Info("applied migrations", "versions", applied)
	}

	patientRepo := postgres.NewPatientRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	resultRepo := postgres.NewResultRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	janitor := worker.NewJanitor(time.Minute, logger)

	var (
		limiter ports.RateLimiter
		cache   ports.ResultCache
	)
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		limiter = redis.NewRateLimiter(rdb, cfg.Redis.Prefix, cfg.Access.RateLimitAttempts, cfg.Access.RateLimitWindow)
		cache = redis.NewResultCache(rdb, cfg.Redis.Prefix, cfg.Access.CacheTTL, logger)
		logger.Info("using redis for rate limiting and result cache", "addr", cfg.Redis.Addr)
	} else {
		memLimiter := memory.NewRateLimiter(cfg.Access.RateLimitAttempts, cfg.Access.RateLimitWindow, time.Now)
		memCache := memory.NewResultCache(cfg.Access.CacheTTL, cfg.Access.CacheCapacity, time.Now)
		janitor.Register("rate_limiter", memLimiter).Register("result_cache", memCache)
		limiter, cache = memLimiter, memCache
	}

	var sink ports.NotificationSink = notify.NewLogSink(logger)
	if cfg.RabbitMQ.Enabled {
		publisher, err := notify.NewRabbitMQPublisher(cfg.RabbitMQ, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		sink = publisher
	}

	price, err := cfg.Pricing.Price()
	if err != nil {
		logger.Error("invalid access code price", "error", err)
		os.Exit(1)
	}
	gatewayClient := opay.NewRetryClient(opay.NewClient(cfg.Gateway), cfg.Retry)
	codes := codegen.NewGenerator(cfg.Access.MaxGenerationAttempts)
	recorder := service.NewRecorder(auditRepo, sink, cfg.Notify.Recipients, logger)

	settingsService := service.NewSettingsService(settingsRepo, service.SettingsDefaults{
		AccessCodePrice: price,
		Currency:        cfg.Pricing.Currency,
		EnableOpay:      cfg.Gateway.SecretKey != "",
		Credentials: domain.GatewayCredentials{
			PublicKey:  cfg.Gateway.PublicKey,
			SecretKey:  cfg.Gateway.SecretKey,
			MerchantID: cfg.Gateway.MerchantID,
		},
	}, recorder)
	patientService := service.NewPatientService(patientRepo, codes, recorder)
	paymentService := service.NewPaymentService(service.PaymentServiceDeps{
		Payments: paymentRepo,
		Patients: patientRepo,
		Settings: settingsService,
		Gateway:  gatewayClient,
		Webhooks: api.MustLoad(),
		Codes:    codes,
		Recorder: recorder,
		URLs: service.GatewayURLs{
			CallbackURL: cfg.Gateway.CallbackURL,
			ReturnURL:   cfg.Gateway.ReturnURL,
		},
		Logger: logger,
	})
	accessService := service.NewAccessCodeService(patientRepo, paymentRepo, resultRepo, codes, recorder, cfg.Access.CodeTTL)
	registry := service.NewAccessCodeRegistry(resultRepo, cache, limiter, logger)

	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Server.TrustProxy)

	h := handler.NewHandler(handler.Services{
		Patients:   patientService,
		Payments:   paymentService,
		AccessCode: accessService,
		Results:    registry,
		Settings:   settingsService,
	}, auth, logger, handler.Options{
		TrustProxy:  cfg.Server.TrustProxy,
		CountAccess: cfg.Access.CountAccess,
	})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	api.RegisterDocsRoutes(mux, api.MustLoad())

	router := http.Handler(mux)

	srvHandler := middleware.Recovery(logger)(router)
	srvHandler = middleware.Logging(logger)(srvHandler)
	srvHandler = middleware.Timeout(cfg.Server.RequestTimeout)(srvHandler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      srvHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	reconciler := worker.NewReconciler(paymentRepo, paymentService, worker.ReconcilerConfig{
		Interval:   cfg.Worker.Interval,
		BatchSize:  cfg.Worker.BatchSize,
		PendingAge: cfg.Worker.PendingAge,
	}, logger)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go reconciler.Start(workerCtx)
	go janitor.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

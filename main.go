package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"bookmarket/config"
	"bookmarket/controllers"
	db "bookmarket/database"
	"bookmarket/database/memstore"
	"bookmarket/filestore"
	"bookmarket/logger"
	middlewares "bookmarket/middleware"
	"bookmarket/payment"
	"bookmarket/routes"
	"bookmarket/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("invalid configuration", zap.Error(err))
	}
	if err := logger.Init(cfg.AppEnv, cfg.LogLevel); err != nil {
		logger.L().Fatal("logger init failed", zap.Error(err))
	}
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.L().Warn("JWT_SECRET is not set; auth endpoints will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, client, err := openStore(ctx, cfg)
	if err != nil {
		logger.L().Fatal("store init failed", zap.Error(err))
	}
	defer db.Disconnect(client)

	files, uploadDir, closeFiles, err := openFileStore(ctx, cfg)
	if err != nil {
		logger.L().Fatal("file store init failed", zap.Error(err))
	}
	defer closeFiles()

	var gateway payment.Gateway = payment.Disabled{}
	if cfg.PaymentsEnabled() {
		omise, err := payment.NewOmise(cfg.OmisePublicKey, cfg.OmiseSecretKey, cfg.PaymentCurrency)
		if err != nil {
			logger.L().Fatal("payment gateway init failed", zap.Error(err))
		}
		gateway = omise
	} else {
		logger.L().Warn("omise keys not set; payment routes are disabled")
	}

	reservations := services.NewReservationService(store, store, nil)
	h := &controllers.Handler{
		Auth:         services.NewAuthService(store, cfg.JWTSecret, nil),
		Catalog:      services.NewCatalogService(store, store, files, nil),
		Owners:       services.NewOwnerService(store, store, files),
		Cart:         services.NewCartService(store, store),
		Orders:       services.NewOrderService(store, nil),
		Reservations: reservations,
		Gateway:      gateway,
		Currency:     cfg.PaymentCurrency,
	}

	if cfg.ReservationSweepSchedule != "" {
		sweeper, err := services.NewSweeper(cfg.ReservationSweepSchedule, reservations)
		if err != nil {
			logger.L().Fatal("invalid RESERVATION_SWEEP_SCHEDULE", zap.Error(err))
		}
		sweeper.Start()
		defer sweeper.Stop(context.Background())
	}

	limiter := middlewares.NewRateLimiter(middlewares.StrictLimit, middlewares.StrictBurst)
	go limiter.Run(ctx, time.Minute)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h, routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		UploadDir:   uploadDir,
		Limiter:     limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.L().Info("server started", zap.String("addr", srv.Addr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("shutdown error", zap.Error(err))
	}
}

// openStore returns the Mongo store, or the in-memory one when STORE=memory.
// The client is nil for the in-memory store.
func openStore(ctx context.Context, cfg *config.Config) (services.Backend, *mongo.Client, error) {
	if cfg.Store == "memory" {
		logger.L().Warn("using in-memory store; data is lost on restart")
		return memstore.New(), nil, nil
	}

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		db.Disconnect(client)
		return nil, nil, err
	}
	return db.NewStore(database), client, nil
}

// openFileStore returns the configured file store and, for local storage,
// the directory to serve under /uploads.
func openFileStore(ctx context.Context, cfg *config.Config) (filestore.Store, string, func(), error) {
	if cfg.StorageDriver == "gcs" {
		gcs, err := filestore.NewGCS(ctx, cfg.GCSBucket, cfg.GCSCredentials)
		if err != nil {
			return nil, "", nil, err
		}
		return gcs, "", func() {
			if err := gcs.Close(); err != nil {
				logger.L().Warn("gcs close failed", zap.Error(err))
			}
		}, nil
	}

	local, err := filestore.NewLocal(cfg.UploadDir)
	if err != nil {
		return nil, "", nil, err
	}
	return local, cfg.UploadDir, func() {}, nil
}

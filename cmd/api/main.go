package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/abhishekdk62/cineora-ledger/internal/cache"
	"github.com/abhishekdk62/cineora-ledger/internal/config"
	"github.com/abhishekdk62/cineora-ledger/internal/handler"
	"github.com/abhishekdk62/cineora-ledger/internal/repository"
	"github.com/abhishekdk62/cineora-ledger/internal/service"
	appvalidator "github.com/abhishekdk62/cineora-ledger/internal/validator"
	"github.com/abhishekdk62/cineora-ledger/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Optional Redis-backed coupon cache
	var couponCache service.CouponCacheInterface
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, coupon cache disabled")
			redisClient = nil
		} else {
			couponCache = cache.NewCouponCache(redisClient, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("coupon cache enabled")
		}
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Cineora Wallet Ledger",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New())

	// Initialize validator
	validate := appvalidator.New()

	// Repositories are constructed once at startup and injected; nothing in
	// the service layer reaches for package-level state.
	walletRepo := repository.NewWalletRepository(pool)
	transactionRepo := repository.NewTransactionRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)

	walletService := service.NewWalletService(pool, walletRepo, transactionRepo, cfg.Ledger.Currency)
	transactionService := service.NewTransactionService(transactionRepo)
	couponService := service.NewCouponService(couponRepo, couponCache)
	transferService := service.NewTransferService(pool, walletRepo, transactionRepo)

	walletHandler := handler.NewWalletHandler(walletService, validate)
	transactionHandler := handler.NewTransactionHandler(transactionService, validate)
	couponHandler := handler.NewCouponHandler(couponService, validate)
	transferHandler := handler.NewTransferHandler(transferService, validate)
	healthHandler := handler.NewHealthHandler(pool)

	app.Get("/health", healthHandler.Check)

	// Wallet routes
	app.Post("/api/wallets", walletHandler.CreateWallet)
	app.Get("/api/wallets/:kind/:accountId/balance", walletHandler.GetBalance)
	app.Post("/api/wallets/credit", walletHandler.Credit)
	app.Post("/api/wallets/debit", walletHandler.Debit)
	app.Post("/api/wallets/freeze", walletHandler.Freeze)
	app.Post("/api/wallets/unfreeze", walletHandler.Unfreeze)
	app.Post("/api/wallets/refund", walletHandler.Refund)

	// Ledger routes
	app.Post("/api/transactions", transactionHandler.Record)
	app.Get("/api/transactions/:accountId", transactionHandler.List)
	app.Get("/api/transactions/:accountId/latest", transactionHandler.FindMostRecent)
	app.Patch("/api/transactions/:transactionId/status", transactionHandler.UpdateStatus)

	// Coupon routes
	app.Post("/api/coupons", couponHandler.CreateCoupon)
	app.Get("/api/coupons", couponHandler.ListCoupons)
	app.Get("/api/coupons/owner/:ownerId", couponHandler.ListCouponsByOwner)
	app.Get("/api/coupons/theater/:theaterId", couponHandler.ListCouponsByTheater)
	app.Post("/api/coupons/validate", couponHandler.ValidateCoupon)
	app.Post("/api/coupons/redeem", couponHandler.RedeemCoupon)
	app.Put("/api/coupons/:id", couponHandler.UpdateCoupon)
	app.Delete("/api/coupons/:id", couponHandler.DeleteCoupon)

	// Transfer routes
	app.Post("/api/transfers", transferHandler.Transfer)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close connections AFTER server shutdown (even if shutdown timed out)
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis client")
		}
	}
	pool.Close()
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"leafloop/internal/api"
	"leafloop/internal/config"
	"leafloop/internal/db"
	"leafloop/internal/logger"
	"leafloop/internal/memstore"
	"leafloop/internal/middleware"
	"leafloop/internal/service"
	"leafloop/internal/session"

	"go.uber.org/zap"
)

func main() {
	envErr := config.LoadEnvFile()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer zlog.Sync()

	if envErr != nil {
		zlog.Warn("no .env file loaded", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Fatal("server stopped with error", zap.Error(err))
	}
	zlog.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger) error {
	var store service.Store
	switch cfg.DBDriver {
	case config.DriverMemory:
		zlog.Warn("using in-memory store; data is lost on restart")
		store = memstore.New()
	default:
		conn, err := db.InitDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		zlog.Info("connected to database")
		store = db.NewStore(conn)
	}

	var sessions session.Store
	if cfg.RedisURL != "" {
		redisStore, err := session.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisStore.Close()
		zlog.Info("using redis session store")
		sessions = redisStore
	} else {
		sessions = session.NewMemoryStore()
	}

	auth, err := middleware.NewAuthenticator(cfg.JWTSecret, cfg.TokenTTL, sessions, zlog)
	if err != nil {
		return err
	}

	rewards := service.EcoRewards{Seller: cfg.SellerReward, Buyer: cfg.BuyerReward}
	server := api.NewServer(api.Services{
		Users:        service.NewUserService(store, zlog.Named("users")),
		Items:        service.NewItemService(store, zlog.Named("items")),
		Transactions: service.NewTransactionService(store, zlog.Named("transactions"), rewards),
		Ratings:      service.NewRatingService(store, zlog.Named("ratings")),
	}, auth, zlog.Named("http"), cfg.CORSOrigins)

	return server.Start(ctx, ":"+cfg.Port, cfg.ShutdownTimeout)
}

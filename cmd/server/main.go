package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FiifiQwontwo/PhotoIsa/internal/brevo"
	"github.com/FiifiQwontwo/PhotoIsa/internal/config"
	"github.com/FiifiQwontwo/PhotoIsa/internal/database"
	"github.com/FiifiQwontwo/PhotoIsa/internal/handlers"
	"github.com/FiifiQwontwo/PhotoIsa/internal/repository"
	"github.com/FiifiQwontwo/PhotoIsa/internal/server"
	"github.com/FiifiQwontwo/PhotoIsa/internal/services"
	"github.com/FiifiQwontwo/PhotoIsa/internal/utils"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.App.Env)
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()
	sugar.Infof("Starting accounts service in %s environment on port %d", cfg.App.Env, cfg.App.Port)

	db, err := database.ConnectPostgres(cfg.Postgres, sugar)
	if err != nil {
		sugar.Fatal(err)
	}
	rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
	if err != nil {
		sugar.Fatal(err)
	}

	mailer := brevo.NewClient(cfg.Brevo.APIKey, cfg.Brevo.FromEmail, cfg.Brevo.FromName)
	if !mailer.IsConfigured() {
		sugar.Warn("Brevo client not fully configured. Verification emails will fail.")
	} else {
		sugar.Info("Brevo client configured.")
	}

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		sugar.Fatalf("failed to create uploads dir: %v", err)
	}

	jwtManager := utils.NewJWTManager(cfg.App.JWT.Secret, cfg.App.JWT.AccessTTLMinutes, cfg.App.JWT.RefreshTTLDays)
	userRepo := repository.NewGormUserRepo(db)
	tokenStore := repository.NewRedisTokenStore(rdb)

	authSvc := services.NewAuthService(userRepo, tokenStore, mailer, jwtManager, cfg.App.FrontendURL, cfg.Security.PasswordHashCost, logger)
	h := handlers.NewHandler(authSvc, cfg.Uploads.Dir, logger)

	app := server.New(cfg, h, jwtManager, userRepo, logger)

	go func() {
		listenAddr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("Server listening on %s", listenAddr)
		if err := app.Listen(listenAddr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		sugar.Errorf("Fiber app shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			sugar.Errorf("Postgres close error: %v", cerr)
		}
	}
	if err := rdb.Close(); err != nil {
		sugar.Errorf("Redis client close error: %v", err)
	}

	sugar.Info("Graceful shutdown complete. Goodbye!")
}

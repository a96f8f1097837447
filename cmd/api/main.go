package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smarttrans/smarttrans-backend/internal/config"
	"github.com/smarttrans/smarttrans-backend/internal/database"
	"github.com/smarttrans/smarttrans-backend/internal/handlers"
	"github.com/smarttrans/smarttrans-backend/internal/logger"
	"github.com/smarttrans/smarttrans-backend/internal/services"
	"github.com/smarttrans/smarttrans-backend/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.LevelError).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	if cfg.UsesDefaultSecret() {
		log.Warn("SECRET_KEY is not set, using the development default")
	}
	if cfg.LogLevel != logger.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	publisher, err := services.NewEventPublisher(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to initialize Redis", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()
	if !publisher.Enabled() {
		log.Info("REDIS_URL not set, notification events will not be published")
	}

	storage, err := services.NewStorage(cfg.Storage, cfg.BaseURL, log)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	hub := services.NewHub(log)
	go hub.Run(ctx)

	outbound := services.NewOutbound(log,
		services.EmailChannel(utils.NewMailer(cfg.SMTP)),
		services.SMSChannel(utils.NewSMSSender(cfg.SMS)),
		services.PushChannel(hub),
		services.EventChannel(publisher),
	)
	notifier := services.NewNotifier(db, outbound, log)
	tokens := utils.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.TokenTTL)

	router := handlers.NewRouter(handlers.Deps{
		Accounts:    services.NewAccounts(db, tokens, notifier, log),
		Registry:    services.NewRegistry(db, log),
		Bookings:    services.NewBookings(db, notifier, log),
		Notifier:    notifier,
		Hub:         hub,
		Storage:     storage,
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

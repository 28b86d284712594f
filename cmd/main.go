package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/quiz-auth/config"
	"github.com/oksasatya/quiz-auth/internal/application"
	"github.com/oksasatya/quiz-auth/internal/container"
	"github.com/oksasatya/quiz-auth/internal/router"
	"github.com/oksasatya/quiz-auth/internal/store"
	"github.com/oksasatya/quiz-auth/pkg/helpers"
	"github.com/oksasatya/quiz-auth/pkg/mailer"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	users, closeStore, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open %s credential store: %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	var notifier application.RegistrationNotifier
	if cfg.MailQueueEnabled() {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; welcome emails disabled")
		} else {
			defer pub.Close()
			notifier = mailer.NewWelcomeNotifier(pub, cfg.CompanyName, cfg.LoginURL, cfg.SupportURL)
		}
	}

	c := &container.Container{
		Config:   cfg,
		Logger:   logger,
		Users:    users,
		JWT:      helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Redis:    rdb,
		Notifier: notifier,
	}
	r := router.NewEngine(c)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.WithField("store", cfg.StoreDriver).Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

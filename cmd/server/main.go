package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"coursemarket/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"coursemarket/internal/auth"
	"coursemarket/internal/cache"
	"coursemarket/internal/config"
	"coursemarket/internal/db"
	"coursemarket/internal/handler"
	"coursemarket/internal/logging"
	"coursemarket/internal/mail"
	"coursemarket/internal/objstore"
	"coursemarket/internal/router"
	"coursemarket/internal/service"
)

const shutdownTimeout = 15 * time.Second

// @title Course Marketplace API
// @version 1.0
// @description Admins publish courses, users browse and purchase them.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	store, err := db.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("store init")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		log.WithError(err).Warn("redis unreachable, course cache degraded")
	}

	// Image imports are optional; the interface stays nil when disabled.
	var images service.ImageStore
	if cfg.MinIO.Endpoint != "" {
		objClient, err := objstore.NewClient(cfg.MinIO)
		if err != nil {
			log.WithError(err).Fatal("object storage init")
		}
		if err := objClient.EnsureBucket(ctx); err != nil {
			log.WithError(err).Warn("object storage bucket unavailable, images disabled")
		} else {
			images = objClient
		}
	}

	var notifier *service.Notifier
	if mailer := mail.New(cfg.SMTP); mailer.Enabled() {
		notifier = service.NewNotifier(mailer, log)
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	guard := auth.NewGuard(jwtService)

	// Initialize services
	authService, err := service.NewAuthService(store.Admins, store.Users, hasher, jwtService, images, notifier, log)
	if err != nil {
		log.WithError(err).Fatal("auth service init")
	}
	courseService := service.NewCourseService(store.Courses, cacheClient, images, log)
	purchaseService := service.NewPurchaseService(store.Purchases, store.Courses, log)

	e := echo.New()
	router.Register(e, cfg, log, guard, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Course:   handler.NewCourseHandler(courseService),
		Purchase: handler.NewPurchaseHandler(purchaseService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.WithField("url", swaggerURL(cfg)).Info("swagger documentation available")

	go func() {
		addr := ":" + cfg.ServerPort
		log.WithField("addr", addr).Info("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	if err := notifier.Close(shutdownCtx); err != nil {
		log.WithError(err).Warn("mail outbox not drained")
	}
	if err := cacheClient.Close(); err != nil {
		log.WithError(err).Warn("cache close")
	}
	if err := store.Close(); err != nil {
		log.WithError(err).Warn("store close")
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/qrdesk-api/internal/application/auth"
	"github.com/qrdesk-api/internal/application/blog"
	"github.com/qrdesk-api/internal/application/qrcode"
	"github.com/qrdesk-api/internal/application/upload"
	"github.com/qrdesk-api/internal/config"
	"github.com/qrdesk-api/internal/infrastructure/dynamo"
	"github.com/qrdesk-api/internal/infrastructure/geoip"
	jwtinfra "github.com/qrdesk-api/internal/infrastructure/jwt"
	"github.com/qrdesk-api/internal/infrastructure/redis"
	s3infra "github.com/qrdesk-api/internal/infrastructure/s3"
	"github.com/qrdesk-api/internal/infrastructure/smtp"
	"github.com/qrdesk-api/internal/infrastructure/sns"
	"github.com/qrdesk-api/internal/pkg/logger"
	transporthttp "github.com/qrdesk-api/internal/transport/http"
	"github.com/qrdesk-api/internal/transport/http/handler"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Error("JWT provider not available", "err", err)
		os.Exit(1)
	}

	s3Store := s3infra.NewStore(s3infra.NewClient(cfg), cfg.S3BucketName, cfg.AWSRegion, cfg.S3PublicBaseURL)
	mailer := smtp.NewMailer(cfg)

	healthChecks := map[string]handler.HealthCheck{
		"dynamodb": dynamo.Ping(dynamoClient, cfg.DynamoTables.Users),
	}

	qrDeps := qrcode.ServiceDeps{
		QRRepo:        dynamo.NewQRCodeRepo(dynamoClient, cfg.DynamoTables.QRCodes, cfg.DynamoTables.ShortCodes),
		ScanRepo:      dynamo.NewScanRepo(dynamoClient, cfg.DynamoTables.ScanEvents),
		CacheTTL:      cfg.AnalyticsCacheTTL,
		ViewerBaseURL: cfg.FrontendURL,
	}

	// Optional collaborators degrade to no-ops when unconfigured.
	var locator *geoip.Locator
	if cfg.GeoIPDBPath != "" {
		if locator, err = geoip.Open(cfg.GeoIPDBPath); err != nil {
			slog.Warn("geoip database not available, locations will be Unknown", "err", err)
		} else {
			defer locator.Close()
		}
	}
	qrDeps.Locator = locator

	if cfg.RedisAddr != "" {
		cache := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer cache.Close()
		if err := cache.Ping(ctx); err != nil {
			slog.Warn("redis not reachable, analytics cache will miss until it is", "addr", cfg.RedisAddr, "err", err)
		}
		qrDeps.Cache = cache
		healthChecks["redis"] = cache.Ping
	}

	if cfg.SNSScanTopicARN != "" {
		if pub, err := sns.NewScanPublisher(cfg); err == nil {
			qrDeps.Publisher = pub
		} else {
			slog.Warn("SNS publisher not available", "err", err)
		}
	}

	deps := &transporthttp.Deps{
		Auth: auth.NewService(auth.ServiceDeps{
			UserRepo:                 dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
			OTPRepo:                  dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OneTimeCodes),
			Mailer:                   mailer,
			Tokens:                   jwtProvider,
			OTPTTL:                   cfg.OTPTTL,
			RequireEmailVerification: cfg.RequireEmailVerification,
			AdminEmails:              cfg.AdminEmails,
		}),
		Blog:         blog.NewService(dynamo.NewBlogRepo(dynamoClient, cfg.DynamoTables.BlogPosts), blog.NewRenderer()),
		QRCodes:      qrcode.NewService(qrDeps),
		Uploads:      upload.NewService(s3Store, dynamo.NewUploadRepo(dynamoClient, cfg.DynamoTables.Uploads)),
		Tokens:       jwtProvider,
		HealthChecks: healthChecks,
	}

	router := transporthttp.NewRouter(ctx, cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		slog.Error("server error", "err", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
		return
	}
	slog.Info("server stopped")
}

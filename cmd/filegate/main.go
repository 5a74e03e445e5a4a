package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	adapthttp "filegate/internal/adapter/http"
	"filegate/internal/adapter/postgres"
	"filegate/internal/app"
	"filegate/internal/config"
	"filegate/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logg := logger.New(cfg.LogLevel)

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logg.Fatal("db open failed", "error", err)
	}
	defer func() { _ = db.Close() }()

	sessionRepo := postgres.NewSessionRepo(db)
	fileRepo := postgres.NewFileRepo(db)
	tokenRepo := postgres.NewTokenRepo(db)

	authSvc := app.NewAuthService(db, sessionRepo)
	downloadSvc := app.NewDownloadService(fileRepo, tokenRepo)
	mailSvc := app.NewMailService(cfg.MailAPIKey, cfg.MailFrom, cfg.MailTo)
	if cfg.MailAPIKey == "" {
		logg.Warn("MAIL_API_KEY not set, mail endpoint disabled")
	}

	h := adapthttp.New(authSvc, downloadSvc, mailSvc, cfg.DownloadsDir, cfg.WebDir, logg).Handler()
	srv := &http.Server{Addr: cfg.Addr, Handler: h}

	go func() {
		logg.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown failed", "error", err)
	}
}

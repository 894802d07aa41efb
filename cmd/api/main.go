package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"hearth/api/internal/app"
	"hearth/api/internal/assets"
	"hearth/api/internal/auth"
	"hearth/api/internal/config"
	"hearth/api/internal/email"
	"hearth/api/internal/export"
	"hearth/api/internal/history"
	"hearth/api/internal/promo"
	"hearth/api/internal/search"
	"hearth/api/internal/store"
)

func main() {
	// "api hash-password <password>" prints the bcrypt hash to put in
	// ADMIN_PASSWORD_HASH, then exits. Saves operators a separate tool.
	if len(os.Args) == 3 && os.Args[1] == "hash-password" {
		hash, err := auth.HashPassword(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg := config.Load()
	ctx := context.Background()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatal("create data dir", zap.Error(err))
	}

	// Postgres when configured, JSON files on disk otherwise.
	var dataStore app.DraftStore
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer db.Close()
		if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		dataStore = store.NewPostgresStore(db)
		logger.Info("using postgres store")
	} else {
		fileStore, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			logger.Fatal("file store init failed", zap.Error(err))
		}
		dataStore = fileStore
		logger.Info("using file store", zap.String("dir", cfg.DataDir))
	}

	promoStore, err := promo.NewRedisStore(cfg.RedisURL, cfg.PromoSlots)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	defer promoStore.Close()

	authService := auth.NewService(cfg.AdminPasswordHash, promoStore)
	if !authService.Enabled() {
		logger.Warn("admin password hash not set, admin routes disabled")
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, dataStore, logger)
	searchService.ReindexAll(ctx)

	var assetService *assets.Service
	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		blob, err := assets.NewMinioBlob(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			logger.Fatal("object storage init failed", zap.Error(err))
		}
		assetService = assets.NewService(blob)
	} else {
		logger.Warn("minio not configured, uploads disabled")
	}

	emailService := email.NewService(email.Config{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		From:        cfg.SMTPFrom,
		FromName:    cfg.SMTPFromName,
		StudioInbox: cfg.StudioInbox,
	})
	if !emailService.IsConfigured() {
		logger.Warn("smtp not configured, email disabled")
	}

	service := app.New(app.Deps{
		Store:   dataStore,
		Promo:   promoStore,
		Auth:    authService,
		History: history.New(cfg.DataDir + "/history"),
		Search:  searchService,
		Export:  export.NewService(dataStore),
		Assets:  assetService,
		Email:   emailService,
		Log:     logger,
	})

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin, logger)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("hearth api listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

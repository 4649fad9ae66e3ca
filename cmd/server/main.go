package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bakeryledger/backend/internal/backup"
	"bakeryledger/backend/internal/cache"
	"bakeryledger/backend/internal/clock"
	"bakeryledger/backend/internal/config"
	"bakeryledger/backend/internal/httpapi"
	"bakeryledger/backend/internal/logger"
	"bakeryledger/backend/internal/service"
	"bakeryledger/backend/internal/store"
	"bakeryledger/backend/internal/store/memory"
	pgstore "bakeryledger/backend/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stdout"})
	defer func() { _ = log.Sync() }()

	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatal("invalid security configuration", zap.Error(err))
	}
	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clk := clock.NewSystem(loc)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 3)
	defer func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.Warn("close error", zap.Error(err))
			}
		}
	}()

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres unavailable and DATABASE_URL is set, refusing in-memory fallback: %w", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Info("repository: postgres")
	} else if cfg.SeedDemoData {
		repo = memory.NewSeeded(clk, log)
		log.Info("repository: in-memory (demo bakery)")
	} else {
		repo = memory.New()
		log.Info("repository: in-memory")
	}

	reportCache := cache.ReportCache(cache.NoopReportCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisReportCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, using noop cache", zap.Error(err))
			_ = redisCache.Close()
		} else {
			reportCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Info("cache: redis", zap.String("addr", cfg.RedisAddr))
		}
	} else {
		log.Info("cache: noop")
	}

	uploader := backup.Uploader(backup.NoopUploader{})
	if cfg.BackupS3Bucket != "" {
		s3Uploader, err := backup.NewS3Uploader(ctx, backup.S3Config{
			Bucket:    cfg.BackupS3Bucket,
			Endpoint:  cfg.BackupS3Endpoint,
			Region:    cfg.BackupS3Region,
			AccessKey: cfg.BackupS3AccessKey,
			SecretKey: cfg.BackupS3SecretKey,
			Prefix:    cfg.BackupS3Prefix,
		}, backup.WithLogger(log.Named("backup")))
		if err != nil {
			return fmt.Errorf("off-site backups: %w", err)
		}
		uploader = s3Uploader
		log.Info("off-site backups: s3", zap.String("bucket", cfg.BackupS3Bucket))
	}

	codec, err := backup.NewCodec()
	if err != nil {
		return err
	}
	defer codec.Close()

	svc, err := service.Open(ctx, repo, service.Options{
		Clock:                     clk,
		Logger:                    log,
		Cache:                     reportCache,
		CacheTTL:                  cfg.ReportCacheTTL(),
		Codec:                     codec,
		Uploader:                  uploader,
		CompressBackups:           cfg.BackupCompress,
		ShopName:                  cfg.ShopName,
		InitialLoginPassword:      cfg.LoginPassword,
		InitialOperationsPassword: cfg.OperationsPassword,
	})
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	auth := httpapi.NewAuthManager(cfg.AuthSecret, cfg.TokenTTL(), svc)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin, log)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("bakery ledger listening", zap.String("addr", cfg.Address()), zap.String("timezone", loc.String()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-sigCtx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}
	if err := svc.WaitUploads(shutdownCtx); err != nil {
		log.Warn("backup uploads still running at shutdown", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.LoginPassword != "" {
		if err := validatePasswordStrength(cfg.LoginPassword); err != nil {
			return fmt.Errorf("LOGIN_PASSWORD is too weak: %w", err)
		}
	}
	if cfg.OperationsPassword != "" {
		if err := validatePasswordStrength(cfg.OperationsPassword); err != nil {
			return fmt.Errorf("OPERATIONS_PASSWORD is too weak: %w", err)
		}
		if cfg.OperationsPassword == cfg.LoginPassword {
			return fmt.Errorf("OPERATIONS_PASSWORD must differ from LOGIN_PASSWORD")
		}
	}
	return nil
}

// validatePasswordStrength rejects short passwords, a single repeated
// character, ascending or descending runs, and a known-weak list.
func validatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("at least 8 characters required")
	}
	known := map[string]bool{
		"password": true, "12345678": true, "87654321": true, "qwertyui": true,
		"bakery123": true, "password1": true, "admin123": true, "letmein1": true,
	}
	if known[strings.ToLower(password)] {
		return fmt.Errorf("common password not allowed")
	}

	allSame := true
	for i := 1; i < len(password); i++ {
		if password[i] != password[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("repeated-character password not allowed")
	}

	ascending, descending := true, true
	for i := 1; i < len(password); i++ {
		diff := int(password[i]) - int(password[i-1])
		if diff != 1 {
			ascending = false
		}
		if diff != -1 {
			descending = false
		}
	}
	if ascending || descending {
		return fmt.Errorf("sequential password not allowed")
	}
	return nil
}

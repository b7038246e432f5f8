package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mdrcore/internal/config"
	"github.com/kailas-cloud/mdrcore/internal/db"
	"github.com/kailas-cloud/mdrcore/internal/db/memory"
	dbRedis "github.com/kailas-cloud/mdrcore/internal/db/redis"
	"github.com/kailas-cloud/mdrcore/internal/domain/codelist"
	"github.com/kailas-cloud/mdrcore/internal/domain/ctterm"
	"github.com/kailas-cloud/mdrcore/internal/domain/epoch"
	"github.com/kailas-cloud/mdrcore/internal/domain/naming"
	logpkg "github.com/kailas-cloud/mdrcore/internal/logger"
	"github.com/kailas-cloud/mdrcore/internal/metrics"
	counterrepo "github.com/kailas-cloud/mdrcore/internal/repository/counter"
	libraryrepo "github.com/kailas-cloud/mdrcore/internal/repository/library"
	chiTransport "github.com/kailas-cloud/mdrcore/internal/transport/chi"
	healthuc "github.com/kailas-cloud/mdrcore/internal/usecase/health"
	libraryuc "github.com/kailas-cloud/mdrcore/internal/usecase/library"
	"github.com/kailas-cloud/mdrcore/internal/version"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic("failed to load .env: " + err.Error())
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mdrcore API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterLibraryMetrics()

	prefix := cfg.Storage.KeyPrefix
	counters := counterrepo.New(store, prefix)

	terms := newService[ctterm.Term](cfg.Query, ctterm.Kind, "term_uid",
		libraryrepo.New[ctterm.Term](store, libraryrepo.TermCodec{}, ctterm.Kind, prefix),
		naming.NewSequence(counters, ctterm.UIDPrefix))
	codelists := newService[codelist.Codelist](cfg.Query, codelist.Kind, "codelist_uid",
		libraryrepo.New[codelist.Codelist](store, libraryrepo.CodelistCodec{}, codelist.Kind, prefix),
		naming.NewSequence(counters, codelist.UIDPrefix))
	epochs := newService[epoch.Epoch](cfg.Query, epoch.Kind, "uid",
		libraryrepo.New[epoch.Epoch](store, libraryrepo.EpochCodec{}, epoch.Kind, prefix),
		naming.NewSequence(counters, epoch.UIDPrefix))

	healthSvc := healthuc.New(2*time.Second).WithCheck("storage", store)

	handler := chiTransport.NewRouter(logger, healthSvc, chiTransport.Options{
		APIKeys:          cfg.Auth.APIKeys,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowCredentials: cfg.CORS.AllowCredentials,
	},
		chiTransport.Resource[ctterm.Term]("/ct/terms", terms, chiTransport.TermKind()),
		chiTransport.Resource[codelist.Codelist]("/ct/codelists", codelists, chiTransport.CodelistKind(time.Now)),
		chiTransport.Resource[epoch.Epoch]("/studies/{study_uid}/study-epochs", epochs, chiTransport.EpochKind()),
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore connects the configured driver. Valkey speaks the Redis protocol.
func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis, config.DriverValkey:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func newService[T libraryuc.Entity[T]](
	q config.QueryConfig, kind, uidField string, repo libraryuc.Repository[T], uids libraryuc.UIDGenerator,
) *libraryuc.Service[T] {
	return libraryuc.New(kind, uidField, repo, uids).
		WithPagination(q.DefaultPageSize, q.MaxPageSize).
		WithConcurrency(q.AuditConcurrency)
}

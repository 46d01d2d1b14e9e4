// cmd/resource-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gammanik/resource-storage/internal/api"
	"github.com/Gammanik/resource-storage/internal/auth"
	"github.com/Gammanik/resource-storage/internal/chunkstore"
	"github.com/Gammanik/resource-storage/internal/config"
	"github.com/Gammanik/resource-storage/internal/logging"
	"github.com/Gammanik/resource-storage/internal/metastore"
	"github.com/Gammanik/resource-storage/internal/storage"
)

func main() {
	cfg := config.LoadConfig()
	log := logging.NewJSON(os.Stdout, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "server stopped", "error", err)
		os.Exit(1)
	}
}

// openMetaStore каталог метаданных создается при любом бэкенде
func openMetaStore(cfg *config.Config, log logging.Logger) (metastore.MetaStore, error) {
	if err := os.MkdirAll(cfg.MetaDir, 0o755); err != nil {
		return nil, fmt.Errorf("create meta dir %s: %w", cfg.MetaDir, err)
	}

	switch cfg.MetaBackend {
	case config.MetaBackendFile:
		return metastore.NewFileStore(cfg.MetaDir, log.With("module", "metastore"))
	case config.MetaBackendBolt:
		return metastore.NewBoltStore(cfg.BoltPath)
	default:
		return nil, fmt.Errorf("unknown meta backend %q", cfg.MetaBackend)
	}
}

func run(cfg *config.Config, log logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализируем хранилище метаданных
	store, err := openMetaStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open metastore: %w", err)
	}
	defer store.Close()

	chunks, err := chunkstore.New(cfg.ChunkDir)
	if err != nil {
		return err
	}

	svc, err := storage.New(storage.Options{
		Meta:         store,
		Chunks:       chunks,
		FileDir:      cfg.FileDir,
		VerifyChunks: cfg.VerifyChunks,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	authenticator, err := auth.NewAuthenticator(cfg.AdminUser, cfg.AdminPassword, []byte(cfg.SecretKey), cfg.TokenTTL)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.Addr,
		Handler: api.NewRouter(api.Options{
			Storage:       svc,
			Auth:          authenticator,
			MaxChunkBytes: cfg.MaxChunkBytes,
			AllowOrigin:   cfg.AllowOrigin,
			Logger:        log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       300 * time.Second,
		WriteTimeout:      300 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "resource server starting", "addr", cfg.Addr, "metaBackend", cfg.MetaBackend,
			"fileDir", cfg.FileDir, "verifyChunks", cfg.VerifyChunks)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/webdav"

	"github.com/debridav/debridav/internal/config"
	"github.com/debridav/debridav/internal/logger"
	"github.com/debridav/debridav/pkg/debrid"
	"github.com/debridav/debridav/pkg/metadata"
	"github.com/debridav/debridav/pkg/notifier"
	"github.com/debridav/debridav/pkg/persistence"
	"github.com/debridav/debridav/pkg/reconciler"
	"github.com/debridav/debridav/pkg/repair"
	"github.com/debridav/debridav/pkg/webdavfs"
)

const version = "1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.SetInstance(cfg)

	logger.SetLogLevel(cfg.LogLevel)
	logger.SetLogPath(cfg.CacheDir)

	log := logger.Default()
	log.Info().Str("version", version).Msg("debridav starting")

	debridClient := debrid.New(cfg)
	metadataClient := metadata.New(cfg)

	storePath := cfg.CacheDir + "/metadata.db"
	store, err := persistence.Open(storePath)
	if err != nil {
		log.Fatal().Err(err).Msg("opening persistence store failed")
	}
	defer store.Close()

	repairManager := repair.New(debridClient)
	jellyfinNotifier := notifier.New(cfg)
	rec := reconciler.New(cfg, debridClient, metadataClient, store, repairManager, jellyfinNotifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rec.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("starting reconciler failed")
	}

	fs := webdavfs.New(rec, debridClient, repairManager)
	handler := &webdav.Handler{
		FileSystem: fs,
		LockSystem: webdav.NewMemLS(),
		Logger: func(r *http.Request, err error) {
			if err != nil {
				log.Warn().Str("method", r.Method).Str("path", r.URL.Path).Err(err).Msg("webdav request error")
			}
		},
	}

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: cappedHandler(handler, cfg.MaxConnections),
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("webdav listener starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("webdav listener failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutdown signal received, draining connections")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("webdav listener shutdown did not complete cleanly")
	}
}

// cappedHandler rejects requests beyond a fixed-capacity semaphore (§5
// connection cap) rather than queueing them indefinitely.
func cappedHandler(next http.Handler, capacity int) http.Handler {
	if capacity <= 0 {
		capacity = 256
	}
	sem := make(chan struct{}, capacity)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
			next.ServeHTTP(w, r)
		default:
			http.Error(w, "server busy", http.StatusServiceUnavailable)
		}
	})
}

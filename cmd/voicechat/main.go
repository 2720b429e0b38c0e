package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Desarso/voicechat"
	"github.com/Desarso/voicechat/stores"
	"github.com/gin-gonic/gin"
)

const shutdownGracePeriod = 15 * time.Second

func main() {
	cfg, err := voicechat.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("voicechat: %v", err)
	}
}

func run(cfg *voicechat.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline, err := voicechat.BuildPipeline(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	if cfg.TraceStore != "" {
		store, err := stores.NewTraceStore(cfg.TraceStoreConfig())
		if err != nil {
			return fmt.Errorf("failed to open trace store: %w", err)
		}
		defer store.Close()

		logger := log.New(os.Stdout, "[traces] ", log.LstdFlags)
		retention, err := stores.StartRetention(store, cfg.TracePruneSchedule, cfg.TraceRetention, logger)
		if err != nil {
			return err
		}
		defer func() { <-retention.Stop().Done() }()

		pipeline.WithTraceStore(store)
		log.Printf("Recording stage traces in %s (retention %s)", cfg.TraceStore, cfg.TraceRetention)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           voicechat.NewRouter(pipeline),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	listenErrCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s (chat=%s, tts=%s)", srv.Addr, cfg.ChatProvider, cfg.TTSProvider)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-listenErrCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case sig := <-sigCh:
		log.Printf("Shutdown signal received: %s", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer shutdownCancel()
	err = srv.Shutdown(shutdownCtx)
	// Shutdown does not track hijacked websocket connections.
	cancel()
	if err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-listenErrCh; err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	log.Printf("Server stopped")
	return nil
}

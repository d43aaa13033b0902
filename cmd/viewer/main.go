package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/elyx-journey/backend/internal/config"
	"github.com/zhouzirui/elyx-journey/backend/internal/handler"
	"github.com/zhouzirui/elyx-journey/backend/internal/logger"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/persona"
	journeySvc "github.com/zhouzirui/elyx-journey/backend/internal/service/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	dataPath := flag.String("data", cfg.Paths.DataPath, "intermediate journey file written by simulate")
	addr := flag.String("addr", cfg.Server.Addr, "listen address")
	flag.Parse()

	journeyStore := store.NewFileStore(*dataPath)
	j, err := journeyStore.Read(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "viewer: %s does not exist. Run `go run ./cmd/simulate` first.\n", *dataPath)
		} else {
			fmt.Fprintf(os.Stderr, "viewer: %v\n", err)
		}
		os.Exit(1)
	}
	logger.Infof(ctx, "[viewer] serving journey member=%s messages=%d", j.MemberName, len(j.Messages))

	personaStore := persona.NewMemoryStore(persona.Seed())
	router := handler.NewRouter(personaStore, journeySvc.NewService(journeyStore), cfg.Replay.Interval)

	startServer(ctx, config.ServerConfig{Addr: *addr}, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Infof(ctx, "[viewer] listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Fatalf(ctx, "[viewer] server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockdash/internal/config"
	"stockdash/internal/feed"
	"stockdash/internal/registry"
	"stockdash/internal/series"
	"stockdash/internal/server"
	"stockdash/internal/store"
	"stockdash/internal/syncer"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] stockdash starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Open store and seed the catalog once
	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()

	if err := st.SeedSecurities(context.Background(), cfg.Securities); err != nil {
		log.Fatalf("[FATAL] seed securities: %v", err)
	}

	// Wire the read-through pipeline
	reg := registry.New(cfg.Securities)
	yf := feed.NewYahooFeed(cfg.Proxy, cfg.Upstream.RatePerMinute,
		time.Duration(cfg.Upstream.TimeoutSeconds)*time.Second)
	log.Printf("[INFO] data source: %s", yf.Name())

	eng := syncer.New(reg, st, yf)
	rd := series.New(reg, st, eng)
	srv := server.New(cfg.Server.Addr, st, rd)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[INFO] shutdown signal received, stopping...")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[FATAL] http server: %v", err)
	}
	log.Println("[INFO] stockdash stopped")
}

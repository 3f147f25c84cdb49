package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roilens/config"
	"roilens/extract"
	"roilens/finder"
	"roilens/geo"
	"roilens/httputil"
	"roilens/logging"
	"roilens/normalize"
	"roilens/query"
	"roilens/scheduler"
	"roilens/server"
	"roilens/store"
)

var (
	warmNow = flag.Bool("warm", false, "Load the data file once, print a summary and exit")
	logPath = flag.String("log", "roilens.log", "Log file path (empty for stdout only)")
)

func main() {
	flag.Parse()

	logFile, err := logging.Setup(*logPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting roilens...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	market := geo.DefaultMarket()
	markets, err := geo.LoadMarkets(cfg.Markets.Dir)
	if err != nil {
		log.Fatalf("Failed to load market configs: %v", err)
	}
	if m, ok := markets[cfg.Markets.Default]; ok {
		market = m
	}
	log.Printf("Market: %s (%d region codes)", market.ID, len(market.RegionCodes))

	norm := normalize.Config{
		RentBase:     cfg.Estimates.RentBase,
		RentPerBed:   cfg.Estimates.RentPerBed,
		FallbackBeds: cfg.Estimates.FallbackBeds,
		ExpenseRatio: cfg.Estimates.ExpenseRatio,
	}
	st := store.New(cfg.Data.File, cfg.Data.TTL, cfg.Data.MaxRows, norm)
	log.Printf("Data file: %s (cache TTL %s, row cap %d)", cfg.Data.File, cfg.Data.TTL, cfg.Data.MaxRows)

	ctx := context.Background()

	if *warmNow {
		listings, err := st.Listings(ctx)
		if err != nil {
			log.Fatalf("Load failed: %v", err)
		}
		engine := query.NewEngine(market, cfg.Query.HardMinPrice)
		summary := engine.Summarize(listings, "", "", "")
		out, _ := json.MarshalIndent(summary, "", "  ")
		log.Printf("Loaded %d listings:\n%s", len(listings), out)
		return
	}

	clients := httputil.NewClients(cfg.Fetch.Timeout, cfg.Fetch.ProxyURL)
	if cfg.Fetch.ProxyURL != "" {
		log.Printf("Proxy: %s", cfg.Fetch.ProxyURL)
	}

	engine := query.NewEngine(market, cfg.Query.HardMinPrice)
	extractor := extract.New(clients)

	var linkFinder server.LinkFinder
	if cfg.Finder.Enabled {
		f := finder.NewFinder()
		defer f.Close()
		linkFinder = f
		log.Println("Browser link finder enabled")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(cfg.Scheduler, st)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	srv := server.New(st, engine, market, extractor, linkFinder)
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Router(),
	}

	go func() {
		log.Printf("Listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
	}
	log.Println("Goodbye!")
}

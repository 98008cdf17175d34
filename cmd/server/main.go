package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/exec-dashboard/internal/api"
	"github.com/ignite/exec-dashboard/internal/collector"
	"github.com/ignite/exec-dashboard/internal/config"
	"github.com/ignite/exec-dashboard/internal/health"
	"github.com/ignite/exec-dashboard/internal/insight"
	"github.com/ignite/exec-dashboard/internal/repository/postgres"
	"github.com/ignite/exec-dashboard/internal/snowflake"
	"github.com/ignite/exec-dashboard/internal/storage"
)

// checkPortAvailable verifies that the target port is not already in use,
// so a stale process on the port fails fast instead of shadowing us.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Executive Dashboard server (cmd/server/main.go)")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check failed: %v", err)
	}

	// Threshold registry: built-in rules plus optional YAML overrides,
	// validated before anything classifies through it.
	registry := health.NewRegistry()
	if cfg.Thresholds.OverrideFile != "" {
		if err := registry.LoadOverrides(cfg.Thresholds.OverrideFile); err != nil {
			log.Fatalf("Loading threshold overrides: %v", err)
		}
		log.Printf("[thresholds] overrides loaded from %s", cfg.Thresholds.OverrideFile)
	}
	if err := registry.Validate(); err != nil {
		log.Fatalf("Threshold registry invalid: %v", err)
	}

	engine, err := insight.NewEngine(insight.DefaultRules())
	if err != nil {
		log.Fatalf("Building insight engine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(ctx, cfg.Storage, cfg.Redis)
	if err != nil {
		log.Fatalf("Initializing storage: %v", err)
	}
	defer store.Close()
	if cfg.Redis.Enabled {
		log.Printf("[storage] redis cache active at %s", cfg.Redis.Addr)
	}
	if cfg.Storage.S3Enabled {
		log.Printf("[storage] S3 archive active: s3://%s/%s", cfg.Storage.S3Bucket, cfg.Storage.S3Prefix)
	}

	insightStore := insight.NewStore()

	// Optional insight persistence
	var journal *postgres.InsightRepo
	if cfg.Postgres.Enabled && cfg.Postgres.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.Postgres.DatabaseURL)
		if err != nil {
			log.Fatalf("Connecting to postgres: %v", err)
		}
		defer db.Close()
		journal = postgres.NewInsightRepo(db)
		log.Println("[postgres] insight journal active")
	}

	// Readings source: warehouse when configured, demo data otherwise
	var source collector.Source
	if cfg.Collector.Source == "snowflake" && cfg.Snowflake.Enabled {
		client, err := snowflake.NewClient(cfg.Snowflake)
		if err != nil {
			log.Fatalf("Connecting to snowflake: %v", err)
		}
		defer client.Close()
		if err := client.Ping(ctx); err != nil {
			log.Fatalf("Pinging snowflake: %v", err)
		}
		source = client
		log.Printf("[snowflake] reading KPI rollups from %s.%s.%s",
			cfg.Snowflake.Database, cfg.Snowflake.Schema, cfg.Snowflake.Table)
	} else {
		source = collector.NewDemoSource()
		log.Println("[collector] using demo readings source")
	}

	var journalIface collector.InsightJournal
	if journal != nil {
		journalIface = journal
	}
	coll := collector.New(source, registry, engine, insightStore, store, journalIface, cfg.Collector)
	go coll.Start(ctx)

	var editJournal api.EditJournal
	if journal != nil {
		editJournal = journal
	}
	handlers := api.NewHandlers(store, insightStore, coll, editJournal)
	server := api.NewServer(cfg.Server, handlers)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

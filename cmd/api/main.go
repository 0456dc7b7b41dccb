package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	apiconfig "multifamily_underwriting/pkg/api/config"
	apiloan "multifamily_underwriting/pkg/api/loan"
	"multifamily_underwriting/pkg/api/underwrite"
	"multifamily_underwriting/pkg/core/config"
	"multifamily_underwriting/pkg/core/pipeline"
	"multifamily_underwriting/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfg, err := config.Load("config/engine.yaml")
	if err != nil {
		fmt.Printf("[FATAL] Config load failed: %v\n", err)
		os.Exit(1)
	}

	programs, err := config.ProgramsOrDefault("config/programs.hjson")
	if err != nil {
		fmt.Printf("[FATAL] Program config failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[CONFIG] %d loan programs loaded\n", len(programs))

	// Persistence is optional: without a database URL the API still
	// underwrites, it just can't store or replay runs.
	var repo store.UnderwritingRepository
	var cache *store.DocumentCache
	if dbURL := cfg.DatabaseURL(); dbURL != "" {
		if err := store.InitDB(context.Background(), dbURL); err != nil {
			fmt.Printf("[WARNING] Database init failed: %v. Running without persistence.\n", err)
		} else {
			defer store.Close()
			repo = store.NewUnderwritingRepo()
			cache = store.NewDocumentCache(store.GetPool(), "")
			fmt.Println("[STORE] Database connected")
		}
	} else {
		cache = store.NewDocumentCache(nil, "")
		fmt.Println("[STORE] No database configured, using file cache only")
	}

	orch := pipeline.NewOrchestrator(cfg, programs)
	if repo != nil {
		orch.SetRepository(repo)
	}
	orch.SetDocumentCache(cache)

	// Underwriting endpoints
	underwriteHandler := underwrite.NewHandler(orch, repo)
	http.HandleFunc("/api/underwrite/analyze", underwriteHandler.HandleUnderwrite)
	http.HandleFunc("/api/underwrite/run", underwriteHandler.HandleGetRun)
	http.HandleFunc("/api/underwrite/report", underwriteHandler.HandleReport)

	// Standalone loan sizing
	loanHandler := apiloan.NewHandler(programs, cfg.TreasuryCurve())
	http.HandleFunc("/api/loan/scenarios", loanHandler.HandleSizing)

	// Config endpoints
	configHandler := apiconfig.NewHandler(cfg, programs)
	http.HandleFunc("/api/config", configHandler.HandleConfig)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("API server starting on %s...\n", addr)
	fmt.Println("  - POST /api/underwrite/analyze")
	fmt.Println("  - GET  /api/underwrite/run?id=...")
	fmt.Println("  - GET  /api/underwrite/report?id=...")
	fmt.Println("  - POST /api/loan/scenarios")
	fmt.Println("  - GET  /api/config")

	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}

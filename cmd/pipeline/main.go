package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"multifamily_underwriting/pkg/core/config"
	"multifamily_underwriting/pkg/core/loan"
	"multifamily_underwriting/pkg/core/pipeline"
	"multifamily_underwriting/pkg/core/report"
	"multifamily_underwriting/pkg/core/store"
	"multifamily_underwriting/pkg/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	var (
		configPath   = flag.String("config", "config/engine.yaml", "engine config file")
		programsPath = flag.String("programs", "config/programs.hjson", "loan programs file")
		name         = flag.String("name", "", "property name")
		units        = flag.Int("units", 0, "unit count (config default when 0)")
		age          = flag.Int("age", 0, "property age in years (config default when 0)")
		txn          = flag.String("txn", "", "transaction type: refinance or acquisition")
		capRate      = flag.Float64("cap", 0, "cap rate for loan sizing, e.g. 0.06")
		value        = flag.Float64("value", 0, "property value for loan sizing")
		term         = flag.String("term", "", "treasury term for pricing, e.g. 10Y")
		stepDown     = flag.Bool("stepdown", false, "quote step-down prepay where available")
		outCSV       = flag.String("csv", "", "write flat export to this file")
		outMD        = flag.String("md", "", "write markdown report to this file")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("usage: pipeline [flags] <document files...>")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}
	programs, err := config.ProgramsOrDefault(*programsPath)
	if err != nil {
		log.Fatalf("Program config failed: %v", err)
	}

	prop := cfg.PropertyInfo()
	prop.PropertyName = *name
	if *units > 0 {
		prop.UnitCount = *units
	}
	if *age > 0 {
		prop.PropertyAge = *age
	}
	if *txn != "" {
		prop.TransactionType = models.TransactionType(*txn)
	}
	prop = prop.WithDefaults()

	var docs []pipeline.Document
	for _, path := range flag.Args() {
		content, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}
		docs = append(docs, pipeline.Document{
			Name:    filepath.Base(path),
			Content: content,
		})
	}

	orch := pipeline.NewOrchestrator(cfg, programs)
	orch.SetDocumentCache(store.NewDocumentCache(nil, ""))

	res, err := orch.Run(context.Background(), prop, docs, pipeline.Options{
		CapRate:        *capRate,
		PropertyValue:  *value,
		TreasuryTerm:   loan.TreasuryTerm(*term),
		StepDownPrepay: *stepDown,
	})
	if err != nil {
		log.Fatalf("Underwriting failed: %v", err)
	}

	md, err := report.RenderMarkdown(res)
	if err != nil {
		log.Fatalf("Report rendering failed: %v", err)
	}
	fmt.Println()
	fmt.Println(md)

	if *outMD != "" {
		if err := os.WriteFile(*outMD, []byte(md), 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", *outMD, err)
		}
		fmt.Printf("Markdown report written to %s\n", *outMD)
	}

	if *outCSV != "" {
		f, err := os.Create(*outCSV)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *outCSV, err)
		}
		defer f.Close()
		if err := report.WriteCSV(f, res); err != nil {
			log.Fatalf("Failed to write %s: %v", *outCSV, err)
		}
		fmt.Printf("Flat export written to %s\n", *outCSV)
	}
}

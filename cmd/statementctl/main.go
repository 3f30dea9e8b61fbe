// Command statementctl converts bank statement PDFs into CSV, XLSX, or
// JSON, either as a one-shot CLI batch, a watched directory re-scanned
// on a cron schedule, or an HTTP API server — grounded in the
// teacher's main.go flag set and server bootstrap, extended with the
// watch/strict/profile flags this expansion adds.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/bank-statement-converter/internal/api"
	"github.com/insightdelivered/bank-statement-converter/internal/bankresolver"
	"github.com/insightdelivered/bank-statement-converter/internal/config"
	"github.com/insightdelivered/bank-statement-converter/internal/engine"
	"github.com/insightdelivered/bank-statement-converter/internal/extractor"
	"github.com/insightdelivered/bank-statement-converter/internal/logging"
	"github.com/insightdelivered/bank-statement-converter/internal/profile"
	"github.com/insightdelivered/bank-statement-converter/internal/store"
	"github.com/insightdelivered/bank-statement-converter/internal/writer"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	log := logging.New(os.Stderr, cfg.Debug)

	if cfg.Version {
		fmt.Printf("statementctl v%s\n", version)
		os.Exit(0)
	}

	registry, err := cfg.LoadProfiles()
	if err != nil {
		log.Fatal().Err(err).Msg("loading profiles")
	}

	if cfg.Serve {
		runServer(cfg, registry, log)
		return
	}

	if cfg.WatchDir != "" {
		runWatch(cfg, registry, log)
		return
	}

	if cfg.Help || len(cfg.Inputs) == 0 {
		printUsage()
		os.Exit(0)
	}

	var db *store.Store
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		var dbErr error
		db, dbErr = store.Connect(ctx, cfg.DatabaseURL)
		cancel()
		if dbErr != nil {
			log.Fatal().Err(dbErr).Msg("connecting to database")
		}
		defer db.Close()
		schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := db.EnsureSchema(schemaCtx); err != nil {
			log.Fatal().Err(err).Msg("ensuring database schema")
		}
		schemaCancel()
	}

	exitCode := 0
	for _, inputPath := range cfg.Inputs {
		result, bank, err := convertFile(log, registry, inputPath, cfg.Bank)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error processing %s: %v\n", inputPath, err)
			exitCode = 1
			continue
		}
		outPath, err := writeResult(cfg, inputPath, bank, result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error writing output for %s: %v\n", inputPath, err)
			exitCode = 1
			continue
		}
		fmt.Printf("%s -> %s (%d transactions, confidence %d%%)\n", inputPath, outPath, len(result.Transactions), result.ConfidenceOverall)
		if db != nil {
			storeCtx, storeCancel := context.WithTimeout(context.Background(), 10*time.Second)
			if _, err := db.StoreStatement(storeCtx, bank.ID, inputPath, result); err != nil {
				log.Error().Err(err).Str("file", inputPath).Msg("persisting statement")
			}
			storeCancel()
		}
		if cfg.RequireStrict && !strictlyOK(result) {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

// convertFile runs extraction, bank resolution, and the engine for one
// input PDF, mirroring the teacher's processFile control flow.
func convertFile(log zerolog.Logger, registry *profile.Registry, inputPath, bankID string) (engine.StatementResult, *profile.Profile, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return engine.StatementResult{}, nil, fmt.Errorf("input file not found: %s", inputPath)
	}
	if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".pdf" {
		return engine.StatementResult{}, nil, fmt.Errorf("expected .pdf file, got %q", ext)
	}

	pages, _ := extractor.ExtractText(inputPath)
	bank, err := bankresolver.Resolve(bankID, pages, registry)
	if err != nil {
		return engine.StatementResult{}, nil, err
	}

	stream, coordsOK, err := extractor.ExtractTokenStream(inputPath)
	if err != nil {
		return engine.StatementResult{}, nil, fmt.Errorf("pdf extraction failed: %w", err)
	}
	if !coordsOK {
		log.Warn().Str("file", inputPath).Msg("falling back to line-only extraction; column geometry unavailable")
	}

	orchestrator := engine.NewCoreOrchestrator(logging.WarnFunc(log, inputPath))
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := orchestrator.Parse(ctx, stream, bank)
	if err != nil {
		return result, bank, fmt.Errorf("parsing failed: %w", err)
	}
	return result, bank, nil
}

func writeResult(cfg *config.Config, inputPath string, bank *profile.Profile, result engine.StatementResult) (string, error) {
	format := strings.ToLower(cfg.Format)
	ext := "." + format
	outPath := cfg.Output
	if outPath == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outPath = base + ext
	}

	switch format {
	case "xlsx":
		w := &writer.XLSXWriter{BankName: bank.Name}
		return outPath, w.WriteToFile(outPath, result)
	case "json":
		f, err := os.Create(outPath)
		if err != nil {
			return "", err
		}
		defer f.Close()
		return outPath, writer.WriteJSON(f, result)
	default:
		w := &writer.CSVWriter{IncludeHeader: cfg.IncludeHeader, BankName: bank.Name}
		return outPath, w.WriteToFile(outPath, result)
	}
}

// strictlyOK implements --require-strict: fail the run if any period
// did not reconcile or overall confidence is below a usable threshold.
func strictlyOK(result engine.StatementResult) bool {
	if result.ConfidenceOverall < 60 {
		return false
	}
	for _, p := range result.Periods {
		if !p.Reconciled {
			return false
		}
	}
	return true
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Bank Statement PDF Converter
by Insight Delivered (QEA AutoLens)

Converts bank statement PDFs into structured CSV, XLSX, or JSON output
using a declarative, data-driven bank profile registry.

Usage:
  statementctl [flags] <input.pdf> [input2.pdf ...]

  Web API mode:
  statementctl --serve [--port=8080] [--static=./web/dist]

  Watch mode:
  statementctl --watch-dir=./inbox [--watch-schedule="@every 5m"]

Flags:
  --bank             Bank profile id (auto-detected if omitted)
  --output           Output file path
  --format           csv, xlsx, or json (default csv)
  --header           Include account metadata header rows (default true)
  --profiles         Path to a YAML file of BankProfile definitions
  --require-strict   Exit non-zero on unreconciled periods or low confidence
  --serve            Start the HTTP API server
  --watch-dir        Re-scan a directory for new PDFs on a schedule

Examples:
  statementctl statement.pdf
  statementctl --bank=hsbc --format=xlsx statement.pdf
  statementctl --serve --port=3001
`)
}

func runServer(cfg *config.Config, registry *profile.Registry, log zerolog.Logger) {
	app := fiber.New(fiber.Config{
		AppName:   "Bank Statement Converter v" + version,
		BodyLimit: 32 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	handler := api.NewHandler(registry, log)
	handler.Register(app.Group("/api"))

	if cfg.Static != "" {
		app.Static("/", cfg.Static, fiber.Static{Index: "index.html"})
		app.Get("/*", func(c *fiber.Ctx) error {
			path := c.Path()
			if strings.HasPrefix(path, "/api/") {
				return c.SendStatus(fiber.StatusNotFound)
			}
			fullPath := filepath.Join(cfg.Static, path)
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				return c.SendFile(filepath.Join(cfg.Static, "index.html"))
			}
			return c.Next()
		})
	}

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("statementctl server starting")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// runWatch re-scans WatchDir on a cron schedule, converting any PDF
// that doesn't already have a sibling output file, grounded in
// syntheit-retrospend's cron.New/AddFunc worker loop.
func runWatch(cfg *config.Config, registry *profile.Registry, log zerolog.Logger) {
	c := cron.New()
	_, err := c.AddFunc(cfg.WatchSchedule, func() {
		scanOnce(cfg, registry, log)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid watch schedule")
	}

	log.Info().Str("dir", cfg.WatchDir).Str("schedule", cfg.WatchSchedule).Msg("watch mode starting")
	scanOnce(cfg, registry, log)
	c.Run()
}

func scanOnce(cfg *config.Config, registry *profile.Registry, log zerolog.Logger) {
	entries, err := os.ReadDir(cfg.WatchDir)
	if err != nil {
		log.Error().Err(err).Msg("reading watch directory")
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		inputPath := filepath.Join(cfg.WatchDir, e.Name())
		outPath := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "." + strings.ToLower(cfg.Format)
		if _, err := os.Stat(outPath); err == nil {
			continue // already converted
		}
		result, bank, err := convertFile(log, registry, inputPath, cfg.Bank)
		if err != nil {
			log.Error().Err(err).Str("file", inputPath).Msg("conversion failed")
			continue
		}
		if _, err := writeResult(cfg, inputPath, bank, result); err != nil {
			log.Error().Err(err).Str("file", inputPath).Msg("writing output failed")
			continue
		}
		log.Info().Str("file", inputPath).Int("transactions", len(result.Transactions)).Msg("converted")
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/invoice-processor/internal/common"
	"github.com/joseph-ayodele/invoice-processor/internal/entity"
	"github.com/joseph-ayodele/invoice-processor/internal/export"
	"github.com/joseph-ayodele/invoice-processor/internal/extract"
	processor "github.com/joseph-ayodele/invoice-processor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-processor/internal/repository"
	"github.com/joseph-ayodele/invoice-processor/internal/validate"
	"github.com/joseph-ayodele/invoice-processor/internal/vendor"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir   = flag.String("dir", "", "directory of .txt invoice files to process (required)")
		out   = flag.String("out", "", "output XLSX file path (optional, defaults to the export directory)")
		inmem = flag.Bool("inmem", false, "use in-memory SQLite database")
		dsn   = flag.String("dsn", "", "postgres DSN (overrides DB_URL; SQLite is used when neither is set)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}
	if *out == "" {
		if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
			logger.Error("failed to create export directory", "dir", cfg.Export.Dir, "error", err)
			os.Exit(1)
		}
		*out = filepath.Join(cfg.Export.Dir, "invoices.xlsx")
	}

	repo, cleanup, err := openRepository(ctx, cfg, *inmem, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	registry := vendor.DefaultRegistry()
	if cfg.Engine.VendorRegistryPath != "" {
		registry, err = vendor.LoadRegistry(cfg.Engine.VendorRegistryPath)
		if err != nil {
			logger.Error("failed to load vendor registry", "error", err)
			os.Exit(1)
		}
		logger.Info("loaded vendor registry", "path", cfg.Engine.VendorRegistryPath, "vendors", registry.Len())
	}

	engine := extract.NewEngine(
		vendor.NewFuzzyResolver(registry, logger),
		extract.Config{
			MinTextLength: cfg.Engine.MinTextLength,
			Validation: validate.Config{
				AutoApproveThreshold: cfg.Engine.AutoApproveThreshold,
				ReviewThreshold:      cfg.Engine.ReviewThreshold,
			},
		},
		logger,
	)
	proc, err := processor.NewProcessor(logger, engine, repo)
	if err != nil {
		logger.Error("failed to build processor", "error", err)
		os.Exit(1)
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Error("failed to read input directory", "dir", *dir, "error", err)
		os.Exit(1)
	}

	var docs []*entity.InvoiceDocument
	var failed int
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		path := filepath.Join(*dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read invoice file", "path", path, "error", err)
			failed++
			continue
		}
		res, err := proc.Run(ctx, string(data))
		if err != nil {
			logger.Error("failed to process invoice", "path", path, "error", err)
			failed++
			continue
		}
		docs = append(docs, res.Document)
	}

	if len(docs) == 0 {
		logger.Warn("no invoices processed", "dir", *dir, "failed", failed)
		os.Exit(1)
	}

	payload, err := export.NewService(logger).ExportBatchXLSX(docs)
	if err != nil {
		logger.Error("failed to build XLSX export", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, payload, 0o644); err != nil {
		logger.Error("failed to write XLSX export", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete", "processed", len(docs), "failed", failed, "out", *out)
}

// openRepository picks the backing store: Postgres when DB_URL is set,
// otherwise SQLite (in-memory with --inmem).
func openRepository(ctx context.Context, cfg *common.Config, inmem bool, logger *slog.Logger) (repository.InvoiceRepository, func(), error) {
	if !inmem && cfg.Database.DSN != "" {
		pool, err := repository.OpenPostgres(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewPostgresInvoiceRepository(pool, logger)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil
	}

	path := cfg.Database.SQLitePath
	if inmem {
		path = ":memory:"
	}
	repo, err := repository.OpenSQLite(ctx, path, logger)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() { _ = repo.Close() }, nil
}

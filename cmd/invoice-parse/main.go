package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/invoice-processor/internal/common"
	"github.com/joseph-ayodele/invoice-processor/internal/export"
	"github.com/joseph-ayodele/invoice-processor/internal/extract"
	processor "github.com/joseph-ayodele/invoice-processor/internal/pipeline"
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
		in        = flag.String("in", "", "invoice text file to parse (defaults to stdin)")
		out       = flag.String("out", "", "output file path (defaults to stdout)")
		formatStr = flag.String("format", "json", "export format: json, csv, xlsx, quickbooks, xero, sage")
		verbose   = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	// Logs go to stderr so stdout stays clean for the exported payload.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	format, err := export.ParseFormat(*formatStr)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	text, err := readInput(*in)
	if err != nil {
		printError("Error: reading input: %v\n", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	registry, err := loadRegistry(cfg.Engine.VendorRegistryPath, logger)
	if err != nil {
		printError("Error: loading vendor registry: %v\n", err)
		os.Exit(1)
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

	proc, err := processor.NewProcessor(logger, engine, nil)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	res, err := proc.Run(context.Background(), text)
	if err != nil {
		printError("Error: processing invoice: %v\n", err)
		os.Exit(1)
	}

	payload, err := export.NewService(logger).Export(res.Document, format)
	if err != nil {
		printError("Error: exporting invoice: %v\n", err)
		os.Exit(1)
	}

	if *out == "" {
		if _, err := os.Stdout.Write(payload); err != nil {
			printError("Error: writing output: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := os.WriteFile(*out, payload, 0o644); err != nil {
		printError("Error: writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	logger.Info("wrote export", "path", *out, "format", string(format))
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func loadRegistry(path string, logger *slog.Logger) (*vendor.Registry, error) {
	if path == "" {
		return vendor.DefaultRegistry(), nil
	}
	registry, err := vendor.LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded vendor registry", "path", path, "vendors", registry.Len())
	return registry, nil
}

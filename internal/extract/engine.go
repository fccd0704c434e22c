// Package extract turns raw OCR invoice text into a structured, judged
// document: ordered-regex metadata fields, a located and parsed line-item
// table, and an independently extracted totals block.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-processor/constants"
	"github.com/joseph-ayodele/invoice-processor/internal/entity"
	"github.com/joseph-ayodele/invoice-processor/internal/validate"
	"github.com/joseph-ayodele/invoice-processor/internal/vendor"
)

// minTextLength is the short-circuit boundary: anything shorter cannot be a
// usable OCR result and goes straight to manual processing.
const minTextLength = 50

// classifierPrefixLen is how much text the vendor resolver sees.
const classifierPrefixLen = 500

// Config holds engine thresholds and behavior flags.
type Config struct {
	MinTextLength int // default 50
	Validation    validate.Config
}

// Engine is the extraction-and-validation pipeline. It is purely
// synchronous and holds no mutable state across calls, so one Engine may
// serve concurrent parses as long as the resolver honors its contract.
type Engine struct {
	resolver vendor.Resolver
	fields   *FieldExtractor
	items    *LineItemParser
	totals   *TotalsExtractor
	check    *validate.Validator
	cfg      Config
	logger   *slog.Logger
}

func NewEngine(resolver vendor.Resolver, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinTextLength <= 0 {
		cfg.MinTextLength = minTextLength
	}
	return &Engine{
		resolver: resolver,
		fields:   NewFieldExtractor(logger),
		items:    NewLineItemParser(logger),
		totals:   NewTotalsExtractor(logger),
		check:    validate.NewValidator(cfg.Validation, logger),
		cfg:      cfg,
		logger:   logger,
	}
}

// Validator exposes the engine's validator for clock injection in tests.
func (e *Engine) Validator() *validate.Validator {
	return e.check
}

// Parse converts OCR text into a judged InvoiceDocument. It never returns
// an error: every failure mode degrades to a warning, an omitted field, or
// a fallback value, and the caller always receives a well-formed document.
func (e *Engine) Parse(ctx context.Context, text string) *entity.InvoiceDocument {
	start := time.Now()

	vendorName, confidence := e.resolver.Resolve(prefix(text, classifierPrefixLen))
	doc := entity.NewInvoiceDocument(text, entity.Vendor{Name: vendorName, Confidence: confidence})

	if len(text) < e.cfg.MinTextLength {
		doc.AddWarning("Insufficient text extracted from invoice")
		doc.Validation.Status = constants.StatusManualProcessing
		e.logger.Warn("parse short-circuit", "text_len", len(text))
		return doc
	}

	e.extract(doc, text)

	score, maxScore := e.check.Run(doc)
	e.logger.Info("parse.ok",
		"vendor", vendorName,
		"invoice_no", doc.InvoiceNo(),
		"items", len(doc.Items),
		"score", fmt.Sprintf("%d/%d", score, maxScore),
		"status", string(doc.Validation.Status),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc
}

// extract runs the three extractors. A panic anywhere inside is recovered
// and recorded as a warning so partial results still reach the caller.
func (e *Engine) extract(doc *entity.InvoiceDocument, text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction panic", "panic", r)
			doc.AddWarning(fmt.Sprintf("Error extracting items: %v", r))
		}
	}()

	metadata, warnings := e.fields.Extract(text)
	doc.Metadata = metadata
	for _, w := range warnings {
		doc.AddWarning(w)
	}

	lines := strings.Split(text, "\n")
	if start, end, ok := LocateItemTable(lines); ok {
		items, itemWarnings := e.items.Parse(lines, start, end)
		doc.Items = items
		for _, w := range itemWarnings {
			doc.AddWarning(w)
		}
	} else {
		e.logger.Debug("no item table header found")
	}

	totals, totalWarnings := e.totals.Extract(text)
	doc.Totals = totals
	for _, w := range totalWarnings {
		doc.AddWarning(w)
	}
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

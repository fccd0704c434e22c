// Package validate runs the plausibility checks over an extracted invoice
// document and turns the outcome into a confidence score and a terminal
// processing status.
package validate

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/joseph-ayodele/invoice-processor/constants"
	"github.com/joseph-ayodele/invoice-processor/internal/entity"
)

// crossCheckTolerance is the allowed rounding drift between the summed line
// items and the extracted invoice total.
const crossCheckTolerance = 0.02

// dateLayouts are tried in order; the first successful parse wins. Both
// zero-padded and bare variants are listed because OCR output carries
// either, and month-first is preferred over day-first.
var dateLayouts = []string{
	"01/02/2006", "02/01/2006",
	"1/2/2006", "2/1/2006",
	"01-02-2006", "02-01-2006",
	"1-2-2006", "2-1-2006",
	"01.02.2006", "02.01.2006",
	"1.2.2006", "2.1.2006",
}

// maxInvoiceAge is how far in the past an invoice date may sit before it is
// flagged as unusual.
const maxInvoiceAge = 365 * 24 * time.Hour

// Config carries the classification thresholds.
type Config struct {
	AutoApproveThreshold float64 // default 0.80
	ReviewThreshold      float64 // default 0.60
}

// Validator scores a parsed document and classifies it. Now is injectable
// so the date-plausibility window is testable; nil means wall clock.
type Validator struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func NewValidator(cfg Config, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AutoApproveThreshold <= 0 {
		cfg.AutoApproveThreshold = 0.80
	}
	if cfg.ReviewThreshold <= 0 {
		cfg.ReviewThreshold = 0.60
	}
	return &Validator{cfg: cfg, logger: logger, now: time.Now}
}

// WithClock overrides the validator's notion of "now". Test hook.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Run executes the checks, computes the overall confidence and assigns the
// terminal status. Warnings are appended to the document; the score and the
// maximum attainable score are returned for observability.
func (v *Validator) Run(doc *entity.InvoiceDocument) (score, maxScore int) {
	score = v.scoreEssentialFields(doc)
	score += v.scoreItemsCrossCheck(doc)
	score += v.scoreDate(doc)
	// Vendor identity is validated upstream by the resolver; its confidence
	// feeds the aggregation below instead of the point scale.

	maxScore = 3
	if len(doc.Items) > 0 {
		maxScore++
	}

	doc.Validation.OverallConfidence = aggregate(score, maxScore, doc.Vendor.Confidence)
	doc.Validation.Status = v.classify(doc.Validation.OverallConfidence, len(doc.Validation.Warnings))

	v.logger.Info("validation complete",
		"score", score, "max_score", maxScore,
		"overall_confidence", doc.Validation.OverallConfidence,
		"status", string(doc.Validation.Status),
		"warnings", len(doc.Validation.Warnings),
	)
	return score, maxScore
}

// scoreEssentialFields awards one point per essential metadata field, not
// gated on all three being present.
func (v *Validator) scoreEssentialFields(doc *entity.InvoiceDocument) int {
	score := 0
	if doc.Metadata.InvoiceNo != nil {
		score++
	}
	if doc.Metadata.Date != nil {
		score++
	}
	if doc.Metadata.TotalAmount != nil {
		score++
	}
	return score
}

// scoreItemsCrossCheck compares the summed line items against the totals
// block. Only evaluated when both sides exist; a mismatch beyond tolerance
// is a warning, never fatal.
func (v *Validator) scoreItemsCrossCheck(doc *entity.InvoiceDocument) int {
	if len(doc.Items) == 0 || doc.Totals.Total == nil {
		return 0
	}
	itemsTotal := doc.ItemsTotal()
	invoiceTotal := *doc.Totals.Total
	if math.Abs(itemsTotal-invoiceTotal) <= crossCheckTolerance {
		return 1
	}
	doc.AddWarning(fmt.Sprintf("Item total (%.2f) doesn't match invoice total (%.2f)", itemsTotal, invoiceTotal))
	return 0
}

// scoreDate parses the metadata date against the ordered layouts and awards
// a point when the date is no later than now and no older than a year.
func (v *Validator) scoreDate(doc *entity.InvoiceDocument) int {
	if doc.Metadata.Date == nil {
		return 0
	}
	dateStr := *doc.Metadata.Date

	var parsed time.Time
	ok := false
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			parsed, ok = t, true
			break
		}
	}
	if !ok {
		doc.AddWarning(fmt.Sprintf("Couldn't parse date: %s", dateStr))
		return 0
	}

	now := v.now()
	if parsed.After(now) || parsed.Before(now.Add(-maxInvoiceAge)) {
		doc.AddWarning(fmt.Sprintf("Invoice date %s seems unusual", dateStr))
		return 0
	}
	return 1
}

// aggregate folds the validation ratio and the vendor confidence into one
// scalar in [0,1]. The date check can push the score past the max, so the
// product is clamped. A zero max score only happens on degenerate input,
// where the vendor confidence is halved instead.
func aggregate(score, maxScore int, vendorConfidence float64) float64 {
	if maxScore > 0 {
		return math.Min((float64(score)/float64(maxScore))*vendorConfidence, 1.0)
	}
	return vendorConfidence * 0.5
}

// classify maps confidence plus warning presence to the terminal status.
// Transitions are one-way: the document starts at Pending Review and never
// re-enters it.
func (v *Validator) classify(confidence float64, warningCount int) constants.ProcessingStatus {
	switch {
	case confidence >= v.cfg.AutoApproveThreshold && warningCount == 0:
		return constants.StatusAutoApproved
	case confidence >= v.cfg.ReviewThreshold:
		return constants.StatusNeedsReview
	default:
		return constants.StatusManualProcessing
	}
}

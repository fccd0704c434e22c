package extract

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/joseph-ayodele/invoice-processor/internal/entity"
)

// totalsPatterns scan the entire text (not the table range) so a totals
// block survives even when the item table was never located. One pattern per
// field: optional currency glyph, comma-grouped digits.
var totalsPatterns = []struct {
	name    string
	pattern *regexp.Regexp
	assign  func(t *entity.Totals, v float64)
}{
	{"subtotal", regexp.MustCompile(`(?i)Sub[\s\-]?total[:.\s]*\s*\$?\s*([\d.,]+)`),
		func(t *entity.Totals, v float64) { t.Subtotal = &v }},
	{"tax", regexp.MustCompile(`(?i)(?:Tax|VAT|GST)[:.\s]*\s*\$?\s*([\d.,]+)`),
		func(t *entity.Totals, v float64) { t.Tax = &v }},
	{"shipping", regexp.MustCompile(`(?i)(?:Shipping|Freight|Delivery)[:.\s]*\s*\$?\s*([\d.,]+)`),
		func(t *entity.Totals, v float64) { t.Shipping = &v }},
	{"discount", regexp.MustCompile(`(?i)Discount[:.\s]*\s*\$?\s*([\d.,]+)`),
		func(t *entity.Totals, v float64) { t.Discount = &v }},
	{"total", regexp.MustCompile(`(?i)(?:Total|Balance\s*Due)[:.\s]*\s*\$?\s*([\d.,]+)`),
		func(t *entity.Totals, v float64) { t.Total = &v }},
}

// TotalsExtractor recovers the subtotal/tax/shipping/discount/total block.
type TotalsExtractor struct {
	logger *slog.Logger
}

func NewTotalsExtractor(logger *slog.Logger) *TotalsExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TotalsExtractor{logger: logger}
}

// Extract runs a single pass over the full text. A value that fails numeric
// parsing yields a warning and the field is omitted, unlike the metadata
// total_amount which falls back to 0.0.
func (e *TotalsExtractor) Extract(text string) (entity.Totals, []string) {
	var totals entity.Totals
	var warnings []string

	for _, tp := range totalsPatterns {
		m := tp.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := ParseDecimal(StripGrouping(m[1]))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Could not convert %s: %s", tp.name, m[1]))
			continue
		}
		tp.assign(&totals, v)
		e.logger.Debug("total extracted", "field", tp.name, "value", v)
	}
	return totals, warnings
}

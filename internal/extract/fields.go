package extract

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/joseph-ayodele/invoice-processor/internal/entity"
)

// fieldPatterns are the ordered regex candidates per metadata field.
// Order is a design decision: for each field the FIRST pattern that matches
// anywhere in the text wins, and the first occurrence in document order is
// authoritative. Patterns are loosely anchored so labels may sit mid-line.
var fieldPatterns = []struct {
	name     string
	patterns []*regexp.Regexp
	assign   func(m *entity.Metadata, v string)
}{
	{
		name: "invoice_no",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Invoice\s*(?:#|No|Number|num)[:.\s]*\s*([A-Za-z0-9-]+)`),
			regexp.MustCompile(`(?i)Invoice\s*ID[:.\s]*\s*([A-Za-z0-9-]+)`),
		},
		assign: func(m *entity.Metadata, v string) { m.InvoiceNo = &v },
	},
	{
		name: "date",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:Invoice\s*)?Date[:.\s]*\s*(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`),
			regexp.MustCompile(`(?i)(?:Invoice\s*)?Date[:.\s]*\s*(\d{1,2}\s+[A-Za-z]+\s+\d{2,4})`),
		},
		assign: func(m *entity.Metadata, v string) { m.Date = &v },
	},
	{
		name: "due_date",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Due\s*Date[:.\s]*\s*(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`),
			regexp.MustCompile(`(?i)Payment\s*Due[:.\s]*\s*(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})`),
		},
		assign: func(m *entity.Metadata, v string) { m.DueDate = &v },
	},
	{
		name: "po_number",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)P\.?O\.?\s*(?:Number|No|#)?[:.\s]*\s*([A-Za-z0-9-]+)`),
			regexp.MustCompile(`(?i)Purchase\s*Order\s*(?:Number|No|#)?[:.\s]*\s*([A-Za-z0-9-]+)`),
		},
		assign: func(m *entity.Metadata, v string) { m.PONumber = &v },
	},
	{
		name: "total_amount",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:Total|Amount\s*Due|Balance\s*Due)[:.\s]*\s*\$?\s*(\d+[,\d]*\.\d+)`),
			regexp.MustCompile(`(?i)(?:Total|Amount\s*Due|Balance\s*Due)[:.\s]*\s*\$?\s*(\d+[,\d]*)`),
		},
		assign: nil, // numeric coercion below
	},
}

// FieldExtractor recovers scalar metadata fields from the full invoice text.
type FieldExtractor struct {
	logger *slog.Logger
}

func NewFieldExtractor(logger *slog.Logger) *FieldExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldExtractor{logger: logger}
}

// Extract applies the ordered candidates for each field against the entire
// text, first-match-wins. A field no pattern matches is simply omitted.
// total_amount is coerced to a float; coercion failure appends a warning and
// falls back to 0.0 rather than omitting the field.
func (e *FieldExtractor) Extract(text string) (entity.Metadata, []string) {
	var md entity.Metadata
	var warnings []string

	for _, fp := range fieldPatterns {
		for _, re := range fp.patterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			value := m[1]
			e.logger.Debug("field extracted", "field", fp.name, "value", value)

			if fp.name == "total_amount" {
				amount, err := ParseDecimal(StripGrouping(value))
				if err != nil {
					warnings = append(warnings, fmt.Sprintf("Could not convert total amount: %s", value))
					amount = 0.0
				}
				md.TotalAmount = &amount
			} else {
				fp.assign(&md, value)
			}
			break
		}
	}
	return md, warnings
}

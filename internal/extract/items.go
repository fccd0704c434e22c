package extract

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/invoice-processor/internal/entity"
)

// itemPatterns is the ordered cascade of line shapes, loosest first. The
// stricter patterns exist to recover items the looser ones mis-segment;
// matching is strictly first-match-wins per line. Groups are always
// (description, quantity, unit price, total).
var itemPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([A-Za-z0-9\s\-()]+)[\s\t]+(\d+)[\s\t]+[€$£¥]?([\d.,]+)[\s\t]+[€$£¥]?([\d.,]+)`),
	regexp.MustCompile(`([A-Za-z0-9\s\-()]+?)[\s\t]{2,}(\d+)[\s\t]{2,}[€$£¥]?([\d.,]+)[\s\t]{2,}[€$£¥]?([\d.,]+)`),
	regexp.MustCompile(`^([A-Za-z0-9\s\-()/&]+?)[\s\t]+(\d+)[\s\t]+[€$£¥]?([\d.,]+)[\s\t]+[€$£¥]?([\d.,]+)$`),
	regexp.MustCompile(`^([A-Za-z0-9\s\-()/&]+)\s+(\d+)\s+[€$£¥]?([\d.,]+)\s+[€$£¥]?([\d.,]+)$`),
	regexp.MustCompile(`^(.*?)\s{2,}(\d+)\s{2,}[€$£¥]?([\d.,]+)\s{2,}[€$£¥]?([\d.,]+)$`),
}

// itemTolerance is the absolute tolerance for quantity*unit_price vs total.
const itemTolerance = 0.02

// LineItemParser turns the located table range into structured line items.
type LineItemParser struct {
	logger *slog.Logger
}

func NewLineItemParser(logger *slog.Logger) *LineItemParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &LineItemParser{logger: logger}
}

// Parse applies the cascade to every non-empty line in [start, end).
// A quantity or price that fails to parse voids the match for that pattern
// but the remaining cascade is still tried; a line matching nothing is
// recorded as a warning and skipped. Nothing here is fatal.
func (p *LineItemParser) Parse(lines []string, start, end int) ([]entity.LineItem, []string) {
	items := []entity.LineItem{}
	var warnings []string

	for i := start; i < end && i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		item, w, matched := p.parseLine(line)
		warnings = append(warnings, w...)
		if !matched {
			warnings = append(warnings, fmt.Sprintf("Could not extract item from line: '%s'", line))
			p.logger.Debug("unmatched item line", "line", line)
			continue
		}
		items = append(items, item)
		p.logger.Debug("item extracted",
			"description", item.Description, "quantity", item.Quantity,
			"unit_price", item.UnitPrice, "total", item.Total,
		)
	}
	return items, warnings
}

func (p *LineItemParser) parseLine(line string) (entity.LineItem, []string, bool) {
	for _, re := range itemPatterns {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		qty, err := strconv.Atoi(strings.TrimSpace(m[2]))
		if err != nil || qty <= 0 {
			continue
		}
		unitPrice, err := ParseDecimal(m[3])
		if err != nil {
			continue
		}
		total, err := ParseDecimal(m[4])
		if err != nil {
			continue
		}

		item := entity.LineItem{
			Description: strings.TrimSpace(m[1]),
			Quantity:    qty,
			UnitPrice:   unitPrice,
			Total:       total,
		}

		var warnings []string
		calculated := math.Round(float64(qty)*unitPrice*100) / 100
		if math.Abs(calculated-total) > itemTolerance {
			warnings = append(warnings, fmt.Sprintf(
				"Possible price calculation discrepancy: calculated %.2f, given %.2f", calculated, total))
		}
		return item, warnings, true
	}
	return entity.LineItem{}, nil, false
}

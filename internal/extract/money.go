package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reCurrency      = regexp.MustCompile(`[$€£¥]`)
	reSpace         = regexp.MustCompile(`\s+`)
	reCommaGrouped  = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
	rePeriodGrouped = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
)

// ParseDecimal parses a locale-variant monetary string into a float64.
// Currency glyphs and interior whitespace are stripped; grouping separators
// are stripped first, then a remaining comma becomes the decimal point, so
// "1.234,56", "1,234.56", "1234,56" and "1234.56" all parse to 1234.56.
func ParseDecimal(s string) (float64, error) {
	cleaned := reCurrency.ReplaceAllString(s, "")
	cleaned = reSpace.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty numeric value %q", s)
	}

	hasComma := strings.Contains(cleaned, ",")
	hasPoint := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasPoint:
		// The separator appearing last is the decimal point; the other is grouping.
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		if reCommaGrouped.MatchString(cleaned) {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			// Decimal comma; any earlier commas are grouping noise.
			last := strings.LastIndex(cleaned, ",")
			cleaned = strings.ReplaceAll(cleaned[:last], ",", "") + "." + cleaned[last+1:]
		}
	case hasPoint:
		if rePeriodGrouped.MatchString(cleaned) && strings.Count(cleaned, ".") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return v, nil
}

// StripGrouping removes comma thousands separators without any locale
// interpretation; used for fields that are documented as comma-grouped.
func StripGrouping(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

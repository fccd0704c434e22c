package extract

import "regexp"

// Header signature: a line carrying an item/description token, a quantity
// token, a price token and a total token. Two wording variants cover the
// common column orders seen on scanned invoices.
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Item|Description|Product)[\s\t]+(Qty|Quantity)[\s\t]+(Price|Rate|Unit\s*Price)[\s\t]+(Amount|Total)`),
	regexp.MustCompile(`(?i)(Description|Item|Product)[\s\t]+(Quantity|Qty)[\s\t]+(Unit\s*Price|Price|Rate)[\s\t]+(Line\s*Total|Total|Amount)`),
}

// reTableEnd marks the start of the totals section, which closes the table.
var reTableEnd = regexp.MustCompile(`(?i)(Sub)?Total|Tax|Discount|Balance`)

// tableLineCap bounds the scan when OCR noise obscures the closing
// signature; it trades recall for bounded worst-case cost.
const tableLineCap = 15

// LocateItemTable scans lines top-to-bottom for the header signature and
// returns the half-open item range [start, end). start is the line after the
// header; end is the first subsequent totals/tax/discount/balance line, or
// start+15 when no such line is found. ok is false when no header exists.
func LocateItemTable(lines []string) (start, end int, ok bool) {
	start = -1
	for i, line := range lines {
		for _, re := range headerPatterns {
			if re.MatchString(line) {
				start = i + 1
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return 0, 0, false
	}

	end = -1
	for i := start + 1; i < len(lines); i++ {
		if reTableEnd.MatchString(lines[i]) {
			end = i
			break
		}
	}
	if end < 0 {
		end = start + tableLineCap
		if end > len(lines) {
			end = len(lines)
		}
	}
	return start, end, true
}

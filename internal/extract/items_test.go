package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-processor/internal/entity"
)

func TestLineItemParser(t *testing.T) {
	lines := []string{
		"Description Qty Price Total",
		"Mouse 2 25.00 50.00",
		"Keyboard 1 45.00 45.00",
		"Monitor 3 350.00 1050.00",
		"Total: 1145.00",
	}

	items, warnings := NewLineItemParser(nil).Parse(lines, 1, 4)
	require.Len(t, items, 3)
	assert.Equal(t, entity.LineItem{Description: "Mouse", Quantity: 2, UnitPrice: 25.0, Total: 50.0}, items[0])
	assert.Equal(t, entity.LineItem{Description: "Keyboard", Quantity: 1, UnitPrice: 45.0, Total: 45.0}, items[1])
	assert.Equal(t, entity.LineItem{Description: "Monitor", Quantity: 3, UnitPrice: 350.0, Total: 1050.0}, items[2])
	assert.Empty(t, warnings)
}

func TestLineItemParserCurrencySymbols(t *testing.T) {
	lines := []string{"Lizenz 2 €10,50 €21,00"}
	items, warnings := NewLineItemParser(nil).Parse(lines, 0, 1)
	require.Len(t, items, 1)
	assert.Equal(t, "Lizenz", items[0].Description)
	assert.InDelta(t, 10.50, items[0].UnitPrice, 1e-9)
	assert.InDelta(t, 21.00, items[0].Total, 1e-9)
	assert.Empty(t, warnings)
}

func TestLineItemParserUnmatchedLineWarns(t *testing.T) {
	lines := []string{"*** illegible scan noise ***"}
	items, warnings := NewLineItemParser(nil).Parse(lines, 0, 1)
	assert.Empty(t, items)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Could not extract item from line")
	assert.Contains(t, warnings[0], "illegible scan noise")
}

func TestLineItemParserDiscrepancyWarning(t *testing.T) {
	lines := []string{"Cable 3 10.00 35.00"}
	items, warnings := NewLineItemParser(nil).Parse(lines, 0, 1)
	require.Len(t, items, 1)
	assert.InDelta(t, 35.00, items[0].Total, 1e-9)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Possible price calculation discrepancy")
	assert.Contains(t, warnings[0], "30.00")
	assert.Contains(t, warnings[0], "35.00")
}

func TestLineItemParserWithinTolerance(t *testing.T) {
	// 3 * 3.33 = 9.99 given as 10.00; 0.01 drift is inside the tolerance.
	lines := []string{"Tape 3 3.33 10.00"}
	items, warnings := NewLineItemParser(nil).Parse(lines, 0, 1)
	require.Len(t, items, 1)
	assert.Empty(t, warnings)
}

func TestLineItemParserSkipsEmptyLines(t *testing.T) {
	lines := []string{"", "Mouse 2 25.00 50.00", "   "}
	items, warnings := NewLineItemParser(nil).Parse(lines, 0, 3)
	require.Len(t, items, 1)
	assert.Empty(t, warnings)
}

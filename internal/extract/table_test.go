package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateItemTable(t *testing.T) {
	lines := strings.Split(
		"ACME invoice\n"+
			"Description Qty Price Total\n"+
			"Mouse 2 25.00 50.00\n"+
			"Keyboard 1 45.00 45.00\n"+
			"Subtotal: 95.00\n"+
			"Total: 95.00", "\n")

	start, end, ok := LocateItemTable(lines)
	require.True(t, ok)
	assert.Equal(t, 2, start)
	assert.Equal(t, 4, end)
}

func TestLocateItemTableHeaderVariants(t *testing.T) {
	for _, header := range []string{
		"Item Qty Price Amount",
		"Product Quantity Rate Total",
		"Description Quantity Unit Price Line Total",
	} {
		lines := []string{header, "Widget 1 2.00 2.00", "Total: 2.00"}
		start, end, ok := LocateItemTable(lines)
		require.True(t, ok, "header %q", header)
		assert.Equal(t, 1, start)
		assert.Equal(t, 2, end)
	}
}

func TestLocateItemTableNoHeader(t *testing.T) {
	_, _, ok := LocateItemTable([]string{"random text", "Total: 12.00"})
	assert.False(t, ok)
}

func TestLocateItemTableCapWithoutTotals(t *testing.T) {
	lines := []string{"Description Qty Price Total"}
	for i := 0; i < 30; i++ {
		lines = append(lines, "Widget 1 2.00 2.00")
	}
	start, end, ok := LocateItemTable(lines)
	require.True(t, ok)
	assert.Equal(t, 1, start)
	assert.Equal(t, 16, end) // start + 15 cap
}

func TestLocateItemTableCapClampedToInput(t *testing.T) {
	lines := []string{"Description Qty Price Total", "Widget 1 2.00 2.00"}
	start, end, ok := LocateItemTable(lines)
	require.True(t, ok)
	assert.Equal(t, 1, start)
	assert.Equal(t, 2, end)
}

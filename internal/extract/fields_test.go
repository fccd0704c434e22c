package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldExtractor(t *testing.T) {
	text := "Invoice No: INV123456\n" +
		"Date: 03/29/2024\n" +
		"Due Date: 04/28/2024\n" +
		"P.O. Number: PO-7788\n" +
		"Total: 1,195.00\n"

	md, warnings := NewFieldExtractor(nil).Extract(text)

	require.NotNil(t, md.InvoiceNo)
	assert.Equal(t, "INV123456", *md.InvoiceNo)
	require.NotNil(t, md.Date)
	assert.Equal(t, "03/29/2024", *md.Date)
	require.NotNil(t, md.DueDate)
	assert.Equal(t, "04/28/2024", *md.DueDate)
	require.NotNil(t, md.PONumber)
	assert.Equal(t, "PO-7788", *md.PONumber)
	require.NotNil(t, md.TotalAmount)
	assert.InDelta(t, 1195.00, *md.TotalAmount, 1e-9)
	assert.Empty(t, warnings)
}

func TestFieldExtractorFirstOccurrenceWins(t *testing.T) {
	text := "Invoice Number: A-1\nInvoice No: B-2\n"
	md, _ := NewFieldExtractor(nil).Extract(text)
	require.NotNil(t, md.InvoiceNo)
	assert.Equal(t, "A-1", *md.InvoiceNo)
}

func TestFieldExtractorAlternateLabels(t *testing.T) {
	text := "Invoice ID: X99\nPayment Due: 05/01/2024\nAmount Due: $42.50\n"
	md, warnings := NewFieldExtractor(nil).Extract(text)

	require.NotNil(t, md.InvoiceNo)
	assert.Equal(t, "X99", *md.InvoiceNo)
	require.NotNil(t, md.DueDate)
	assert.Equal(t, "05/01/2024", *md.DueDate)
	require.NotNil(t, md.TotalAmount)
	assert.InDelta(t, 42.50, *md.TotalAmount, 1e-9)
	assert.Empty(t, warnings)
}

func TestFieldExtractorMissingFieldsOmitted(t *testing.T) {
	md, warnings := NewFieldExtractor(nil).Extract("just some unrelated text without labels")
	assert.Nil(t, md.InvoiceNo)
	assert.Nil(t, md.Date)
	assert.Nil(t, md.DueDate)
	assert.Nil(t, md.TotalAmount)
	assert.Empty(t, warnings)
}

func TestFieldExtractorTotalAmountMatchesInsideSubtotal(t *testing.T) {
	// The total patterns are unanchored, so "Subtotal" satisfies "Total"
	// when it appears first in the document.
	text := "Subtotal: 25.50\nTotal: 28.05\n"
	md, _ := NewFieldExtractor(nil).Extract(text)
	require.NotNil(t, md.TotalAmount)
	assert.InDelta(t, 25.50, *md.TotalAmount, 1e-9)
}

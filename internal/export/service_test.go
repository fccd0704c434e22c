package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-processor/constants"
	"github.com/joseph-ayodele/invoice-processor/internal/entity"
)

func sampleDocument() *entity.InvoiceDocument {
	doc := entity.NewInvoiceDocument("", entity.Vendor{Name: "XYZ Traders Inc.", Confidence: 0.95})
	invoiceNo := "INV123456"
	date := "03/29/2024"
	dueDate := "04/28/2024"
	amount := 1145.00
	subtotal := 1145.00
	tax := 114.50
	doc.Metadata.InvoiceNo = &invoiceNo
	doc.Metadata.Date = &date
	doc.Metadata.DueDate = &dueDate
	doc.Metadata.TotalAmount = &amount
	doc.Items = []entity.LineItem{
		{Description: "Mouse", Quantity: 2, UnitPrice: 25, Total: 50},
		{Description: "Monitor", Quantity: 3, UnitPrice: 365, Total: 1095},
	}
	doc.Totals.Subtotal = &subtotal
	doc.Totals.Tax = &tax
	doc.Validation.OverallConfidence = 0.91
	doc.Validation.Status = constants.StatusNeedsReview
	return doc
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"csv", "JSON", " xlsx ", "QuickBooks", "xero", "sage"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFormatExt(t *testing.T) {
	assert.Equal(t, "iif", FormatQuickBooks.Ext())
	assert.Equal(t, "json", FormatJSON.Ext())
	assert.Equal(t, "xlsx", FormatXLSX.Ext())
	assert.Equal(t, "csv", FormatXero.Ext())
	assert.Equal(t, "csv", FormatSage.Ext())
}

func TestExportJSON(t *testing.T) {
	out, err := NewService(nil).ExportJSON(sampleDocument())
	require.NoError(t, err)
	assert.Contains(t, string(out), `"invoice_no": "INV123456"`)
	assert.Contains(t, string(out), `"Needs Review"`)
}

func TestExportCSV(t *testing.T) {
	out, err := NewService(nil).ExportCSV(sampleDocument())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Invoice Number", rows[0][0])
	assert.Equal(t, "INV123456", rows[1][0])
	assert.Equal(t, "XYZ Traders Inc.", rows[1][1])
	assert.Equal(t, "1145.00", rows[1][5])
}

func TestExportItemsCSV(t *testing.T) {
	svc := NewService(nil)

	out, err := svc.ExportItemsCSV(sampleDocument())
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"INV123456", "Mouse", "2", "25.00", "50.00"}, rows[1])

	empty := sampleDocument()
	empty.Items = nil
	out, err = svc.ExportItemsCSV(empty)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestExportXLSX(t *testing.T) {
	out, err := NewService(nil).ExportXLSX(sampleDocument())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{"Invoice", "Line Items"}, f.GetSheetList())

	got, err := f.GetCellValue("Invoice", "A2")
	require.NoError(t, err)
	assert.Equal(t, "INV123456", got)

	got, err = f.GetCellValue("Line Items", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Mouse", got)
}

func TestExportXLSXIncludesWarnings(t *testing.T) {
	doc := sampleDocument()
	doc.AddWarning("Couldn't parse date: 13/45/2024")

	out, err := NewService(nil).ExportXLSX(doc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := f.GetCellValue("Validation", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Couldn't parse date: 13/45/2024", got)
}

func TestExportBatchXLSX(t *testing.T) {
	docs := []*entity.InvoiceDocument{sampleDocument(), sampleDocument()}
	out, err := NewService(nil).ExportBatchXLSX(docs)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	assert.Len(t, rows, 3) // header + two invoices

	items, err := f.GetRows("Line Items")
	require.NoError(t, err)
	assert.Len(t, items, 5) // header + two items per invoice
}

func TestExportQuickBooksIIF(t *testing.T) {
	out, err := NewService(nil).ExportQuickBooksIIF(sampleDocument())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "!TRNS\t"))
	assert.True(t, strings.HasPrefix(lines[3], "TRNS\tBILL\t03/29/2024\tAccounts Payable\tXYZ Traders Inc.\t1145.00"))
	assert.True(t, strings.HasPrefix(lines[4], "SPL\tBILL\t03/29/2024\tExpense\tXYZ Traders Inc.\t50.00"))
	assert.Equal(t, "ENDTRNS", lines[6])
}

func TestExportXeroCSV(t *testing.T) {
	out, err := NewService(nil).ExportXeroCSV(sampleDocument())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "*ContactName", rows[0][0])
	assert.Equal(t, "XYZ Traders Inc.", rows[1][0])
	assert.Equal(t, "2024-03-29", rows[1][2]) // MM/DD/YYYY converted to ISO
	assert.Equal(t, "2024-04-28", rows[1][3])
	assert.Equal(t, "50.00", rows[1][4])
	assert.Equal(t, "5.00", rows[1][10]) // 10% effective tax rate on 50.00
}

func TestExportSageCSV(t *testing.T) {
	out, err := NewService(nil).ExportSageCSV(sampleDocument())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header, invoice row, two item rows
	assert.Equal(t, "XYZTRADE", rows[1][0])
	assert.Equal(t, "1145.00", rows[1][6])
	assert.Equal(t, "114.50", rows[1][8])
	assert.Equal(t, "1259.50", rows[1][9]) // gross back-filled from net + tax
}

func TestExportDispatch(t *testing.T) {
	svc := NewService(nil)
	for _, format := range []Format{FormatCSV, FormatJSON, FormatXLSX, FormatQuickBooks, FormatXero, FormatSage} {
		out, err := svc.Export(sampleDocument(), format)
		require.NoError(t, err, string(format))
		assert.NotEmpty(t, out, string(format))
	}
}

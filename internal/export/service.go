package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-processor/internal/entity"
)

// Format names a supported export target.
type Format string

const (
	FormatCSV        Format = "csv"
	FormatJSON       Format = "json"
	FormatXLSX       Format = "xlsx"
	FormatQuickBooks Format = "quickbooks"
	FormatXero       Format = "xero"
	FormatSage       Format = "sage"
)

// ParseFormat resolves a CLI flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatQuickBooks:
		return FormatQuickBooks, nil
	case FormatXero:
		return FormatXero, nil
	case FormatSage:
		return FormatSage, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatQuickBooks:
		return "iif"
	case FormatJSON, FormatXLSX:
		return string(f)
	default:
		return "csv"
	}
}

// Service renders parsed invoice documents into export payloads.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Export renders a single document in the requested format.
func (s *Service) Export(doc *entity.InvoiceDocument, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return s.ExportCSV(doc)
	case FormatJSON:
		return s.ExportJSON(doc)
	case FormatXLSX:
		return s.ExportXLSX(doc)
	case FormatQuickBooks:
		return s.ExportQuickBooksIIF(doc)
	case FormatXero:
		return s.ExportXeroCSV(doc)
	case FormatSage:
		return s.ExportSageCSV(doc)
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// ExportJSON renders the full document as indented JSON.
func (s *Service) ExportJSON(doc *entity.InvoiceDocument) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json export: %w", err)
	}
	s.logger.Info("export.json.ok", "invoice_no", doc.InvoiceNo())
	return out, nil
}

// ExportCSV renders a one-row summary of the invoice header.
func (s *Service) ExportCSV(doc *entity.InvoiceDocument) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{
		{"Invoice Number", "Vendor", "Date", "Due Date", "PO Number", "Total Amount", "Status", "Confidence"},
		{
			strOrEmpty(doc.Metadata.InvoiceNo),
			doc.Vendor.Name,
			strOrEmpty(doc.Metadata.Date),
			strOrEmpty(doc.Metadata.DueDate),
			strOrEmpty(doc.Metadata.PONumber),
			formatAmount(doc.Amount()),
			string(doc.Validation.Status),
			formatAmount(doc.Validation.OverallConfidence),
		},
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("csv export: %w", err)
	}
	s.logger.Info("export.csv.ok", "invoice_no", doc.InvoiceNo())
	return buf.Bytes(), nil
}

// ExportItemsCSV renders the line items, one row per item. Returns nil
// when the document has no items.
func (s *Service) ExportItemsCSV(doc *entity.InvoiceDocument) ([]byte, error) {
	if len(doc.Items) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{{"Invoice Number", "Description", "Quantity", "Unit Price", "Total Price"}}
	for _, item := range doc.Items {
		rows = append(rows, []string{
			strOrEmpty(doc.Metadata.InvoiceNo),
			item.Description,
			fmt.Sprintf("%d", item.Quantity),
			formatAmount(item.UnitPrice),
			formatAmount(item.Total),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("items csv export: %w", err)
	}
	s.logger.Debug("export.items_csv.ok", "invoice_no", doc.InvoiceNo(), "items", len(doc.Items))
	return buf.Bytes(), nil
}

// ExportXLSX returns a workbook with Invoice, Line Items and Validation sheets.
func (s *Service) ExportXLSX(doc *entity.InvoiceDocument) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()

	const invoiceSheet = "Invoice"
	if err := renameDefaultSheet(f, invoiceSheet); err != nil {
		return nil, err
	}

	write := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	headers := []string{"Invoice Number", "Vendor", "Date", "Due Date", "PO Number", "Total Amount", "Status", "Confidence"}
	for i, h := range headers {
		write(invoiceSheet, i+1, 1, h)
	}
	write(invoiceSheet, 1, 2, strOrEmpty(doc.Metadata.InvoiceNo))
	write(invoiceSheet, 2, 2, doc.Vendor.Name)
	write(invoiceSheet, 3, 2, strOrEmpty(doc.Metadata.Date))
	write(invoiceSheet, 4, 2, strOrEmpty(doc.Metadata.DueDate))
	write(invoiceSheet, 5, 2, strOrEmpty(doc.Metadata.PONumber))
	write(invoiceSheet, 6, 2, doc.Amount())
	write(invoiceSheet, 7, 2, string(doc.Validation.Status))
	write(invoiceSheet, 8, 2, doc.Validation.OverallConfidence)
	_ = f.SetColWidth(invoiceSheet, "A", "B", 24)
	_ = f.SetColWidth(invoiceSheet, "C", "E", 14)
	_ = f.SetColWidth(invoiceSheet, "F", "H", 16)

	if len(doc.Items) > 0 {
		const itemsSheet = "Line Items"
		if _, err := f.NewSheet(itemsSheet); err != nil {
			return nil, err
		}
		for i, h := range []string{"Description", "Quantity", "Unit Price", "Total Price"} {
			write(itemsSheet, i+1, 1, h)
		}
		for i, item := range doc.Items {
			row := i + 2
			write(itemsSheet, 1, row, item.Description)
			write(itemsSheet, 2, row, item.Quantity)
			write(itemsSheet, 3, row, item.UnitPrice)
			write(itemsSheet, 4, row, item.Total)
		}
		_ = f.SetColWidth(itemsSheet, "A", "A", 48)
		_ = f.SetColWidth(itemsSheet, "B", "D", 14)
	}

	if len(doc.Validation.Warnings) > 0 {
		const warningsSheet = "Validation"
		if _, err := f.NewSheet(warningsSheet); err != nil {
			return nil, err
		}
		write(warningsSheet, 1, 1, "Warning")
		for i, warning := range doc.Validation.Warnings {
			write(warningsSheet, 1, i+2, warning)
		}
		_ = f.SetColWidth(warningsSheet, "A", "A", 72)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"invoice_no", doc.InvoiceNo(),
		"items", len(doc.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportBatchXLSX returns a workbook summarizing many documents, one
// invoice per row plus a combined line-items sheet.
func (s *Service) ExportBatchXLSX(docs []*entity.InvoiceDocument) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()

	const invoicesSheet = "Invoices"
	if err := renameDefaultSheet(f, invoicesSheet); err != nil {
		return nil, err
	}

	write := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	headers := []string{"Invoice Number", "Vendor", "Date", "Total Amount", "Status", "Confidence", "Warnings"}
	for i, h := range headers {
		write(invoicesSheet, i+1, 1, h)
	}
	for i, doc := range docs {
		row := i + 2
		write(invoicesSheet, 1, row, doc.InvoiceNo())
		write(invoicesSheet, 2, row, doc.Vendor.Name)
		write(invoicesSheet, 3, row, strOrEmpty(doc.Metadata.Date))
		write(invoicesSheet, 4, row, doc.Amount())
		write(invoicesSheet, 5, row, string(doc.Validation.Status))
		write(invoicesSheet, 6, row, doc.Validation.OverallConfidence)
		write(invoicesSheet, 7, row, len(doc.Validation.Warnings))
	}
	_ = f.SetColWidth(invoicesSheet, "A", "B", 24)
	_ = f.SetColWidth(invoicesSheet, "C", "G", 14)

	const itemsSheet = "Line Items"
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}
	for i, h := range []string{"Invoice Number", "Description", "Quantity", "Unit Price", "Total Price"} {
		write(itemsSheet, i+1, 1, h)
	}
	row := 2
	for _, doc := range docs {
		for _, item := range doc.Items {
			write(itemsSheet, 1, row, doc.InvoiceNo())
			write(itemsSheet, 2, row, item.Description)
			write(itemsSheet, 3, row, item.Quantity)
			write(itemsSheet, 4, row, item.UnitPrice)
			write(itemsSheet, 5, row, item.Total)
			row++
		}
	}
	_ = f.SetColWidth(itemsSheet, "A", "A", 24)
	_ = f.SetColWidth(itemsSheet, "B", "B", 48)
	_ = f.SetColWidth(itemsSheet, "C", "E", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.batch_xlsx.ok",
		"invoices", len(docs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportQuickBooksIIF renders the invoice as a QuickBooks BILL transaction
// with one split line per item.
func (s *Service) ExportQuickBooksIIF(doc *entity.InvoiceDocument) ([]byte, error) {
	invoiceNo := strOrEmpty(doc.Metadata.InvoiceNo)
	date := strOrEmpty(doc.Metadata.Date)
	if parsed, err := time.Parse("01/02/2006", date); err == nil {
		date = parsed.Format("01/02/2006")
	}

	var buf bytes.Buffer
	buf.WriteString("!TRNS\tTRNSTYPE\tDATE\tACCNT\tNAME\tAMOUNT\tDOCNUM\tMEMO\n")
	buf.WriteString("!SPL\tTRNSTYPE\tDATE\tACCNT\tNAME\tAMOUNT\tDOCNUM\tMEMO\n")
	buf.WriteString("!ENDTRNS\n")
	fmt.Fprintf(&buf, "TRNS\tBILL\t%s\tAccounts Payable\t%s\t%s\t%s\tInvoice %s\n",
		date, doc.Vendor.Name, formatAmount(doc.Amount()), invoiceNo, invoiceNo)
	for _, item := range doc.Items {
		fmt.Fprintf(&buf, "SPL\tBILL\t%s\tExpense\t%s\t%s\t%s\t%s\n",
			date, doc.Vendor.Name, formatAmount(item.Total), invoiceNo, item.Description)
	}
	buf.WriteString("ENDTRNS\n")

	s.logger.Info("export.quickbooks.ok", "invoice_no", doc.InvoiceNo(), "splits", len(doc.Items))
	return buf.Bytes(), nil
}

// ExportXeroCSV renders the invoice in Xero's bill import layout, one row
// per line item with tax apportioned at the invoice's effective rate.
func (s *Service) ExportXeroCSV(doc *entity.InvoiceDocument) ([]byte, error) {
	invoiceNo := strOrEmpty(doc.Metadata.InvoiceNo)
	date := isoDate(strOrEmpty(doc.Metadata.Date))
	dueDate := isoDate(strOrEmpty(doc.Metadata.DueDate))

	taxRate := 0.0
	if doc.Totals.Tax != nil && doc.Totals.Subtotal != nil && *doc.Totals.Subtotal > 0 {
		taxRate = *doc.Totals.Tax / *doc.Totals.Subtotal
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{{
		"*ContactName", "*InvoiceNumber", "*InvoiceDate", "DueDate",
		"*LineAmount", "Description", "Quantity", "UnitAmount",
		"*AccountCode", "TaxType", "TaxAmount", "Currency", "PONumber",
	}}
	for _, item := range doc.Items {
		rows = append(rows, []string{
			doc.Vendor.Name,
			invoiceNo,
			date,
			dueDate,
			formatAmount(item.Total),
			item.Description,
			fmt.Sprintf("%d", item.Quantity),
			formatAmount(item.UnitPrice),
			"6000",
			"Tax Exclusive",
			formatAmount(item.Total * taxRate),
			"USD",
			strOrEmpty(doc.Metadata.PONumber),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("xero export: %w", err)
	}

	s.logger.Info("export.xero.ok", "invoice_no", doc.InvoiceNo(), "rows", len(doc.Items))
	return buf.Bytes(), nil
}

// ExportSageCSV renders the invoice in Sage's supplier invoice layout:
// a header row for the invoice followed by one detail row per item.
func (s *Service) ExportSageCSV(doc *entity.InvoiceDocument) ([]byte, error) {
	invoiceNo := strOrEmpty(doc.Metadata.InvoiceNo)
	date := strOrEmpty(doc.Metadata.Date)

	vendorRef := strings.ToUpper(strings.ReplaceAll(doc.Vendor.Name, " ", ""))
	if len(vendorRef) > 8 {
		vendorRef = vendorRef[:8]
	}

	netAmount := valueOrZero(doc.Totals.Subtotal)
	taxAmount := valueOrZero(doc.Totals.Tax)
	grossAmount := valueOrZero(doc.Totals.Total)
	if netAmount == 0 && len(doc.Items) > 0 {
		netAmount = doc.ItemsTotal()
	}
	if taxAmount == 0 && netAmount > 0 && grossAmount > 0 {
		taxAmount = grossAmount - netAmount
	}
	if grossAmount == 0 && netAmount > 0 {
		grossAmount = netAmount + taxAmount
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{
		{"A/C Reference", "Name", "Invoice Number", "Date", "Nominal Code", "Description", "Net Amount", "Tax Code", "Tax Amount", "Gross Amount"},
		{vendorRef, doc.Vendor.Name, invoiceNo, date, "5000", fmt.Sprintf("Invoice %s", invoiceNo),
			formatAmount(netAmount), "T1", formatAmount(taxAmount), formatAmount(grossAmount)},
	}
	for _, item := range doc.Items {
		itemTax := 0.0
		if netAmount > 0 {
			itemTax = (item.Total / netAmount) * taxAmount
		}
		rows = append(rows, []string{
			vendorRef, doc.Vendor.Name, invoiceNo, date, "5000", item.Description,
			formatAmount(item.Total), "T1", formatAmount(itemTax), formatAmount(item.Total + itemTax),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("sage export: %w", err)
	}

	s.logger.Info("export.sage.ok", "invoice_no", doc.InvoiceNo(), "rows", len(doc.Items))
	return buf.Bytes(), nil
}

// isoDate converts MM/DD/YYYY to YYYY-MM-DD, passing anything else through.
func isoDate(date string) string {
	if parsed, err := time.Parse("01/02/2006", date); err == nil {
		return parsed.Format("2006-01-02")
	}
	return date
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func valueOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func formatAmount(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func renameDefaultSheet(f *excelize.File, name string) error {
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return err
	}
	index, err := f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	return nil
}

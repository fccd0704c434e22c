package entity

import (
	"github.com/joseph-ayodele/invoice-processor/constants"
)

// InvoiceDocument is the unit of work: one OCR text in, one judged record out.
// It is owned by a single parse call and never shared across parses.
type InvoiceDocument struct {
	Vendor     Vendor           `json:"vendor"`
	Metadata   Metadata         `json:"metadata"`
	Items      []LineItem       `json:"items"`
	Totals     Totals           `json:"totals"`
	Validation ValidationResult `json:"validation"`

	// RawText is the immutable OCR input; excluded from the boundary record.
	RawText string `json:"-"`
}

// Vendor carries the upstream vendor identification and its confidence.
type Vendor struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Metadata holds the scalar fields recovered by the field extractor.
// Absence (nil) means "not extracted"; never null on the wire.
type Metadata struct {
	InvoiceNo   *string  `json:"invoice_no,omitempty"`
	Date        *string  `json:"date,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
	PONumber    *string  `json:"po_number,omitempty"`
	TotalAmount *float64 `json:"total_amount,omitempty"`
}

// LineItem is one row of the parsed goods/services table.
// round(Quantity*UnitPrice, 2) should equal Total within 0.02; a violation
// is a warning, not a rejection.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// Totals is the subtotal/tax/shipping/discount/total block, extracted
// independently of line items.
type Totals struct {
	Subtotal *float64 `json:"subtotal,omitempty"`
	Tax      *float64 `json:"tax,omitempty"`
	Shipping *float64 `json:"shipping,omitempty"`
	Discount *float64 `json:"discount,omitempty"`
	Total    *float64 `json:"total,omitempty"`
}

// ValidationResult accumulates warnings and the final judgement.
type ValidationResult struct {
	OverallConfidence float64                    `json:"overall_confidence"`
	Warnings          []string                   `json:"warnings"`
	Status            constants.ProcessingStatus `json:"status"`
}

// NewInvoiceDocument returns a document in its initial state.
func NewInvoiceDocument(text string, vendor Vendor) *InvoiceDocument {
	return &InvoiceDocument{
		Vendor:  vendor,
		Items:   []LineItem{},
		RawText: text,
		Validation: ValidationResult{
			Warnings: []string{},
			Status:   constants.StatusPendingReview,
		},
	}
}

// AddWarning appends to the document's warning list.
func (d *InvoiceDocument) AddWarning(w string) {
	d.Validation.Warnings = append(d.Validation.Warnings, w)
}

// ItemsTotal is the sum of line-item totals.
func (d *InvoiceDocument) ItemsTotal() float64 {
	var sum float64
	for _, it := range d.Items {
		sum += it.Total
	}
	return sum
}

// Amount is the authoritative invoice amount for downstream consumers:
// metadata.total_amount, falling back to totals.total, else 0.
func (d *InvoiceDocument) Amount() float64 {
	if d.Metadata.TotalAmount != nil {
		return *d.Metadata.TotalAmount
	}
	if d.Totals.Total != nil {
		return *d.Totals.Total
	}
	return 0
}

// InvoiceNo returns the extracted invoice number, or "Unknown" when absent.
// Persistence upserts by this key.
func (d *InvoiceDocument) InvoiceNo() string {
	if d.Metadata.InvoiceNo != nil && *d.Metadata.InvoiceNo != "" {
		return *d.Metadata.InvoiceNo
	}
	return "Unknown"
}

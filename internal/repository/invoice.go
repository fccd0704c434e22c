package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-processor/internal/entity"
)

// InvoiceRecord is a persisted invoice row. The full boundary document is
// kept as JSON alongside the flat columns used for listing and reporting.
type InvoiceRecord struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceNo   string          `json:"invoice_no"`
	VendorName  string          `json:"vendor_name"`
	InvoiceDate string          `json:"invoice_date"`
	Amount      float64         `json:"amount"`
	Status      string          `json:"status"`
	Confidence  float64         `json:"confidence"`
	ProcessedAt time.Time       `json:"processed_at"`
	Document    json.RawMessage `json:"document"`
}

// InvoiceRepository persists parsed invoice documents, upserting by
// invoice number ("Unknown" when none was extracted).
type InvoiceRepository interface {
	Upsert(ctx context.Context, doc *entity.InvoiceDocument) (*InvoiceRecord, error)
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*InvoiceRecord, error)
	ListInvoices(ctx context.Context) ([]*InvoiceRecord, error)
}

// newRecord flattens a document into its row shape.
func newRecord(doc *entity.InvoiceDocument, now time.Time) (*InvoiceRecord, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	date := "Unknown"
	if doc.Metadata.Date != nil {
		date = *doc.Metadata.Date
	}

	return &InvoiceRecord{
		ID:          uuid.New(),
		InvoiceNo:   doc.InvoiceNo(),
		VendorName:  doc.Vendor.Name,
		InvoiceDate: date,
		Amount:      doc.Amount(),
		Status:      string(doc.Validation.Status),
		Confidence:  doc.Validation.OverallConfidence,
		ProcessedAt: now.UTC(),
		Document:    payload,
	}, nil
}

package repository

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/invoice-processor/internal/common"
	"github.com/joseph-ayodele/invoice-processor/internal/entity"
)

//go:embed schema_postgres.sql
var schemaPostgres string

// PostgresInvoiceRepository stores invoices in Postgres, one row per
// invoice number.
type PostgresInvoiceRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresInvoiceRepository(pool *pgxpool.Pool, logger *slog.Logger) *PostgresInvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresInvoiceRepository{pool: pool, logger: logger}
}

// Migrate applies the invoices schema. Safe to call on every startup.
func (r *PostgresInvoiceRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaPostgres); err != nil {
		return common.NewAppError("DB_MIGRATE", "failed to apply invoices schema", err)
	}
	return nil
}

func (r *PostgresInvoiceRepository) Upsert(ctx context.Context, doc *entity.InvoiceDocument) (*InvoiceRecord, error) {
	rec, err := newRecord(doc, time.Now())
	if err != nil {
		return nil, common.NewAppError("DB_UPSERT", "failed to serialize invoice document", err)
	}

	const q = `
		INSERT INTO invoices (id, invoice_no, vendor_name, invoice_date, amount, status, confidence, processed_at, document)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (invoice_no) DO UPDATE SET
			vendor_name = EXCLUDED.vendor_name,
			invoice_date = EXCLUDED.invoice_date,
			amount = EXCLUDED.amount,
			status = EXCLUDED.status,
			confidence = EXCLUDED.confidence,
			processed_at = EXCLUDED.processed_at,
			document = EXCLUDED.document
		RETURNING id`
	if err := r.pool.QueryRow(ctx, q,
		rec.ID, rec.InvoiceNo, rec.VendorName, rec.InvoiceDate,
		rec.Amount, rec.Status, rec.Confidence, rec.ProcessedAt, rec.Document,
	).Scan(&rec.ID); err != nil {
		return nil, common.NewAppError("DB_UPSERT", "failed to upsert invoice", err)
	}

	r.logger.Debug("invoice.upsert.ok", "invoice_no", rec.InvoiceNo, "vendor", rec.VendorName)
	return rec, nil
}

func (r *PostgresInvoiceRepository) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*InvoiceRecord, error) {
	const q = `
		SELECT id, invoice_no, vendor_name, invoice_date, amount, status, confidence, processed_at, document
		FROM invoices WHERE invoice_no = $1`
	rec := &InvoiceRecord{}
	err := r.pool.QueryRow(ctx, q, invoiceNo).Scan(
		&rec.ID, &rec.InvoiceNo, &rec.VendorName, &rec.InvoiceDate,
		&rec.Amount, &rec.Status, &rec.Confidence, &rec.ProcessedAt, &rec.Document,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.NewAppError("DB_GET", "failed to fetch invoice", err)
	}
	return rec, nil
}

func (r *PostgresInvoiceRepository) ListInvoices(ctx context.Context) ([]*InvoiceRecord, error) {
	const q = `
		SELECT id, invoice_no, vendor_name, invoice_date, amount, status, confidence, processed_at, document
		FROM invoices ORDER BY processed_at DESC, invoice_no`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, common.NewAppError("DB_LIST", "failed to list invoices", err)
	}
	defer rows.Close()

	var out []*InvoiceRecord
	for rows.Next() {
		rec := &InvoiceRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.InvoiceNo, &rec.VendorName, &rec.InvoiceDate,
			&rec.Amount, &rec.Status, &rec.Confidence, &rec.ProcessedAt, &rec.Document,
		); err != nil {
			return nil, common.NewAppError("DB_LIST", "failed to scan invoice row", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

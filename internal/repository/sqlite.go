package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/invoice-processor/internal/common"
	"github.com/joseph-ayodele/invoice-processor/internal/entity"
)

//go:embed schema_sqlite.sql
var schemaSQLite string

// SQLiteInvoiceRepository stores invoices in a local SQLite file. Used by
// the CLI tools when no Postgres DSN is configured.
type SQLiteInvoiceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the database at path and applies the
// schema. Use ":memory:" for an ephemeral store.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteInvoiceRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.NewAppError("DB_OPEN", "failed to open sqlite database", err)
	}
	// modernc sqlite is not safe for concurrent writers on one file.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		_ = db.Close()
		return nil, common.NewAppError("DB_MIGRATE", "failed to apply invoices schema", err)
	}
	logger.Debug("sqlite.open.ok", "path", path)
	return &SQLiteInvoiceRepository{db: db, logger: logger}, nil
}

func (r *SQLiteInvoiceRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteInvoiceRepository) Upsert(ctx context.Context, doc *entity.InvoiceDocument) (*InvoiceRecord, error) {
	rec, err := newRecord(doc, time.Now())
	if err != nil {
		return nil, common.NewAppError("DB_UPSERT", "failed to serialize invoice document", err)
	}

	// RETURNING surfaces the surviving id when the conflict branch keeps
	// the original row, mirroring the Postgres path.
	const q = `
		INSERT INTO invoices (id, invoice_no, vendor_name, invoice_date, amount, status, confidence, processed_at, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (invoice_no) DO UPDATE SET
			vendor_name = excluded.vendor_name,
			invoice_date = excluded.invoice_date,
			amount = excluded.amount,
			status = excluded.status,
			confidence = excluded.confidence,
			processed_at = excluded.processed_at,
			document = excluded.document
		RETURNING id`
	var id string
	if err := r.db.QueryRowContext(ctx, q,
		rec.ID.String(), rec.InvoiceNo, rec.VendorName, rec.InvoiceDate,
		rec.Amount, rec.Status, rec.Confidence, rec.ProcessedAt.Format(time.RFC3339Nano), string(rec.Document),
	).Scan(&id); err != nil {
		return nil, common.NewAppError("DB_UPSERT", "failed to upsert invoice", err)
	}
	storedID, err := uuid.Parse(id)
	if err != nil {
		return nil, common.NewAppError("DB_UPSERT", "invalid stored invoice id", err)
	}
	rec.ID = storedID

	r.logger.Debug("invoice.upsert.ok", "invoice_no", rec.InvoiceNo, "vendor", rec.VendorName)
	return rec, nil
}

func (r *SQLiteInvoiceRepository) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*InvoiceRecord, error) {
	const q = `
		SELECT id, invoice_no, vendor_name, invoice_date, amount, status, confidence, processed_at, document
		FROM invoices WHERE invoice_no = ?`
	rec, err := scanSQLiteRow(r.db.QueryRowContext(ctx, q, invoiceNo))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.NewAppError("DB_GET", "failed to fetch invoice", err)
	}
	return rec, nil
}

func (r *SQLiteInvoiceRepository) ListInvoices(ctx context.Context) ([]*InvoiceRecord, error) {
	const q = `
		SELECT id, invoice_no, vendor_name, invoice_date, amount, status, confidence, processed_at, document
		FROM invoices ORDER BY processed_at DESC, invoice_no`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, common.NewAppError("DB_LIST", "failed to list invoices", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*InvoiceRecord
	for rows.Next() {
		rec, err := scanSQLiteRow(rows)
		if err != nil {
			return nil, common.NewAppError("DB_LIST", "failed to scan invoice row", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRow(row rowScanner) (*InvoiceRecord, error) {
	rec := &InvoiceRecord{}
	var id, processedAt, document string
	if err := row.Scan(
		&id, &rec.InvoiceNo, &rec.VendorName, &rec.InvoiceDate,
		&rec.Amount, &rec.Status, &rec.Confidence, &processedAt, &document,
	); err != nil {
		return nil, err
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	rec.ID = parsedID
	ts, err := time.Parse(time.RFC3339Nano, processedAt)
	if err != nil {
		return nil, err
	}
	rec.ProcessedAt = ts
	rec.Document = []byte(document)
	return rec, nil
}

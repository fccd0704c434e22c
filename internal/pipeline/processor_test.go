package processor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-processor/constants"
	"github.com/joseph-ayodele/invoice-processor/internal/extract"
	"github.com/joseph-ayodele/invoice-processor/internal/repository"
	"github.com/joseph-ayodele/invoice-processor/internal/vendor"
)

const sampleInvoice = `XYZ Traders Inc.
456 Trading Ave, Commerce City

Invoice No: INV123456
Date: 03/29/2024

Description Qty Price Total
Mouse 2 25.00 50.00
Keyboard 1 45.00 45.00

Total: 95.00
`

func newTestProcessor(t *testing.T, repo repository.InvoiceRepository) *Processor {
	t.Helper()
	engine := extract.NewEngine(vendor.NewFuzzyResolver(vendor.DefaultRegistry(), nil), extract.Config{}, nil)
	engine.Validator().WithClock(func() time.Time {
		return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	})
	proc, err := NewProcessor(nil, engine, repo)
	require.NoError(t, err)
	return proc
}

func TestProcessorRunWithoutPersistence(t *testing.T) {
	res, err := newTestProcessor(t, nil).Run(context.Background(), sampleInvoice)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.JobID)
	assert.Nil(t, res.Record)
	require.NotNil(t, res.Document)
	assert.Equal(t, "INV123456", res.Document.InvoiceNo())
	assert.Len(t, res.Document.Items, 2)
	assert.Equal(t, constants.StatusAutoApproved, res.Document.Validation.Status)
}

func TestProcessorRunPersists(t *testing.T) {
	repo, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	res, err := newTestProcessor(t, repo).Run(context.Background(), sampleInvoice)
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.Equal(t, "INV123456", res.Record.InvoiceNo)
	assert.Equal(t, "XYZ Traders Inc.", res.Record.VendorName)
	assert.InDelta(t, 95.00, res.Record.Amount, 1e-9)

	got, err := repo.GetByInvoiceNo(context.Background(), "INV123456")
	require.NoError(t, err)
	assert.Equal(t, res.Record.ID, got.ID)
}

func TestProcessorShortTextStillValidates(t *testing.T) {
	res, err := newTestProcessor(t, nil).Run(context.Background(), "short")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusManualProcessing, res.Document.Validation.Status)
}

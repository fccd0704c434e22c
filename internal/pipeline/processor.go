package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/invoice-processor/internal/common"
	"github.com/joseph-ayodele/invoice-processor/internal/contract"
	"github.com/joseph-ayodele/invoice-processor/internal/entity"
	"github.com/joseph-ayodele/invoice-processor/internal/extract"
	"github.com/joseph-ayodele/invoice-processor/internal/repository"
)

// Processor runs the extraction engine over raw invoice text, checks the
// result against the boundary schema, and optionally persists it.
type Processor struct {
	Logger *slog.Logger
	Engine *extract.Engine
	Repo   repository.InvoiceRepository // nil disables persistence
	schema *jsonschema.Schema
}

func NewProcessor(logger *slog.Logger, engine *extract.Engine, repo repository.InvoiceRepository) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := contract.CompileSchema(contract.BuildInvoiceJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("compile invoice schema: %w", err)
	}
	return &Processor{
		Logger: logger,
		Engine: engine,
		Repo:   repo,
		schema: schema,
	}, nil
}

// Result summarizes one processed invoice.
type Result struct {
	JobID    uuid.UUID
	Document *entity.InvoiceDocument
	Record   *repository.InvoiceRecord // nil when persistence is disabled
}

// Run parses one invoice text end to end.
// Effects: validates the parsed document against the output contract and,
// when a repository is configured, upserts the invoice row.
func (p *Processor) Run(ctx context.Context, text string) (*Result, error) {
	start := time.Now()
	jobID := uuid.New()
	ctx = common.WithJobID(ctx, jobID.String())

	p.Logger.Info("invoice parse start", "job_id", jobID, "text_bytes", len(text))

	doc := p.Engine.Parse(ctx, text)

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	if err := contract.ValidateJSON(p.schema, payload); err != nil {
		return nil, fmt.Errorf("document contract: %w", err)
	}

	res := &Result{JobID: jobID, Document: doc}
	if p.Repo != nil {
		rec, err := p.Repo.Upsert(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("persist invoice: %w", err)
		}
		res.Record = rec
	}

	p.Logger.Info("invoice parsed successfully",
		"job_id", jobID,
		"invoice_no", doc.InvoiceNo(),
		"vendor", doc.Vendor.Name,
		"status", string(doc.Validation.Status),
		"confidence", doc.Validation.OverallConfidence,
		"warnings", len(doc.Validation.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

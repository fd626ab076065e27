// Package pipeline runs a day's batch end to end: classify, extract, infer,
// file, and assemble the ledger, one document at a time.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/ntorreslo/ndf-letters/constants"
	"github.com/ntorreslo/ndf-letters/internal/classify"
	"github.com/ntorreslo/ndf-letters/internal/extract"
	"github.com/ntorreslo/ndf-letters/internal/filing"
	"github.com/ntorreslo/ndf-letters/internal/journal"
	"github.com/ntorreslo/ndf-letters/internal/ledger"
	"github.com/ntorreslo/ndf-letters/internal/llm"
)

// TextExtractor is the document-to-text step. *extract.Extractor satisfies it.
type TextExtractor interface {
	Extract(ctx context.Context, path string, strat constants.Strategy) (extract.Result, error)
}

type Config struct {
	OutputRoot     string
	ProcessDate    time.Time
	BaseID         int // ledger id of the batch's first document
	MaxPromptChars int
}

type Processor struct {
	cfg       Config
	extractor TextExtractor
	generator llm.ResponseGenerator
	jrnl      *journal.Journal // nil disables the rerun guard
	logger    *slog.Logger
}

func NewProcessor(cfg Config, extractor TextExtractor, generator llm.ResponseGenerator, jrnl *journal.Journal, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseID <= 0 {
		cfg.BaseID = 1001
	}
	if cfg.MaxPromptChars <= 0 {
		cfg.MaxPromptChars = llm.DefaultMaxPromptChars
	}
	return &Processor{cfg: cfg, extractor: extractor, generator: generator, jrnl: jrnl, logger: logger}
}

// Run processes the batch sequentially. One ledger record per document, in
// discovery order, with ids counting up from BaseID. A document that fails
// becomes an error record; it never aborts the rest of the batch.
func (p *Processor) Run(ctx context.Context, docs []filing.Document) ([]ledger.Record, error) {
	p.logger.Info("pipeline.batch.start",
		"documents", len(docs),
		"process_date", p.cfg.ProcessDate.Format("2006-01-02"))

	p.generator.WarmUp(ctx)

	var batchID string
	if p.jrnl != nil {
		id, err := p.jrnl.StartBatch(ctx, p.cfg.ProcessDate)
		if err != nil {
			return nil, err
		}
		batchID = id
	}

	records := make([]ledger.Record, 0, len(docs))
	for i, doc := range docs {
		rec := p.processOne(ctx, doc, p.cfg.BaseID+i, batchID)
		records = append(records, rec)
	}

	p.logger.Info("pipeline.batch.done", "documents", len(docs), "errors", countErrors(records))
	return records, nil
}

func (p *Processor) processOne(ctx context.Context, doc filing.Document, id int, batchID string) ledger.Record {
	start := time.Now()
	logger := p.logger.With("file", doc.Filename, "ledger_id", id)
	logger.Info("pipeline.document.start")

	issuer := classify.ByFilename(doc.Filename)
	strat := constants.StrategyFor(issuer)

	res, err := p.extractor.Extract(ctx, doc.Path, strat)
	if err != nil {
		// Unreadable source: nothing to infer and nothing worth filing.
		logger.Error("pipeline.document.extract_failed", "error", err)
		rec := ledger.Assemble(doc.Filename, "", issuer, llm.Outcome{Err: err}, id, p.cfg.ProcessDate)
		p.journalRecord(ctx, batchID, doc, rec, logger)
		return rec
	}
	if issuer == constants.UnknownIssuer {
		// Classification on the raw text, before normalization strips the
		// accents several bank names carry.
		issuer = classify.ByText(res.Text)
	}
	logger.Info("pipeline.document.extracted",
		"issuer", string(issuer), "method", res.Method, "chars", len(res.Text))

	outcome := p.infer(ctx, res.Text, logger)
	outcome.Warnings = append(res.Warnings, outcome.Warnings...)
	if !outcome.Failed() && len(outcome.Warnings) > 0 {
		logger.Warn("pipeline.document.flagged", "warnings", outcome.Warnings)
	}

	newName := p.file(ctx, doc, issuer, id, logger)

	rec := ledger.Assemble(doc.Filename, newName, issuer, outcome, id, p.cfg.ProcessDate)
	p.journalRecord(ctx, batchID, doc, rec, logger)

	logger.Info("pipeline.document.done",
		"issuer", string(issuer),
		"failed", outcome.Failed(),
		"duration_ms", time.Since(start).Milliseconds())
	return rec
}

func (p *Processor) infer(ctx context.Context, text string, logger *slog.Logger) llm.Outcome {
	prompt := llm.BuildPrompt(extract.NormalizeText(text), p.cfg.MaxPromptChars)
	response, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		logger.Error("pipeline.document.inference_failed", "error", err)
		return llm.Outcome{Err: err}
	}
	outcome := llm.ParseResponse(response)
	if outcome.Failed() {
		logger.Error("pipeline.document.parse_failed", "error", outcome.Err)
	}
	return outcome
}

// file copies the letter into the signature tree unless the journal says an
// earlier run already did; in that case the prior filed name is reported.
// A copy failure degrades to an unfiled row rather than an error record: the
// extracted fields are still worth keeping.
func (p *Processor) file(ctx context.Context, doc filing.Document, issuer constants.Issuer, id int, logger *slog.Logger) string {
	if p.jrnl != nil {
		hash, err := journal.ContentHash(doc.Path)
		if err == nil {
			if seen, serr := p.jrnl.Seen(ctx, hash); serr == nil && seen {
				_, prior, lerr := p.jrnl.Lookup(ctx, hash)
				if lerr == nil {
					logger.Info("pipeline.document.already_filed", "filed_as", prior)
					return prior
				}
			}
		}
	}
	newName, err := filing.FileCopy(doc, p.cfg.OutputRoot, issuer, p.cfg.ProcessDate, id)
	if err != nil {
		logger.Error("pipeline.document.file_failed", "error", err)
		return ""
	}
	return newName
}

func (p *Processor) journalRecord(ctx context.Context, batchID string, doc filing.Document, rec ledger.Record, logger *slog.Logger) {
	if p.jrnl == nil {
		return
	}
	hash, err := journal.ContentHash(doc.Path)
	if err != nil {
		logger.Warn("pipeline.journal.hash_failed", "error", err)
		return
	}
	if err := p.jrnl.RecordDocument(ctx, batchID, hash, rec); err != nil {
		logger.Warn("pipeline.journal.record_failed", "error", err)
	}
}

func countErrors(records []ledger.Record) int {
	n := 0
	for _, r := range records {
		if r.ErrorMessage != "" {
			n++
		}
	}
	return n
}

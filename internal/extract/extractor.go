// Package extract turns a confirmation letter into raw text, choosing between
// the PDF's embedded text layer and rasterization plus OCR per issuer.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ntorreslo/ndf-letters/constants"
	"github.com/ntorreslo/ndf-letters/internal/common"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Languages  string // tesseract language set, default "eng+spa"
	DefaultDPI int    // rasterization DPI when the strategy carries none, default 300
	MaxPages   int    // 0 = no limit

	PDFPassword string // passphrase for encrypted letters
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr"
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Languages == "" {
		cfg.Languages = "eng+spa"
	}
	if cfg.DefaultDPI <= 0 {
		cfg.DefaultDPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Extract runs the issuer's strategy on the document at path.
// Direct strategies whose text layer comes back empty degrade to OCR at the
// default DPI: several counterparties send pure scans under generic names.
func (e *Extractor) Extract(ctx context.Context, path string, strat constants.Strategy) (Result, error) {
	start := time.Now()
	e.logger.Debug("starting text extraction", "path", path, "strategy", string(strat.Kind))

	switch strat.Kind {
	case constants.StrategyDirect:
		res, err := e.extractText(ctx, path, strat)
		if err != nil {
			res.Duration = time.Since(start)
			return res, err
		}
		if strings.TrimSpace(res.Text) == "" {
			e.logger.Warn("empty text layer, falling back to ocr", "path", path)
			ocrRes, ocrErr := e.extractOCR(ctx, path, e.cfg.DefaultDPI)
			ocrRes.Warnings = append(ocrRes.Warnings, "empty text layer")
			ocrRes.Duration = time.Since(start)
			return ocrRes, ocrErr
		}
		res.Duration = time.Since(start)
		return res, nil
	case constants.StrategyOptical:
		dpi := strat.DPI
		if dpi <= 0 {
			dpi = e.cfg.DefaultDPI
		}
		res, err := e.extractOCR(ctx, path, dpi)
		res.Duration = time.Since(start)
		return res, err
	default:
		return Result{}, common.NewAppError("EXTRACT_ERROR",
			fmt.Sprintf("unsupported strategy: %q", strat.Kind), common.ErrDocumentIO)
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ntorreslo/ndf-letters/constants"
	"github.com/ntorreslo/ndf-letters/internal/classify"
	"github.com/ntorreslo/ndf-letters/internal/common"
	"github.com/ntorreslo/ndf-letters/internal/extract"
)

// Debug tool: classify one letter and dump its extracted text, without
// touching the model, the journal, or the filing tree.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <letter.pdf>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()

	extractor := extract.NewExtractor(extract.Config{
		Pdftotext:   cfg.Paths.Pdftotext,
		Pdftoppm:    cfg.Paths.Pdftoppm,
		Tesseract:   cfg.Paths.Tesseract,
		Languages:   cfg.OCR.Languages,
		DefaultDPI:  cfg.OCR.DefaultDPI,
		MaxPages:    cfg.OCR.MaxPages,
		PDFPassword: cfg.Ledger.PDFPassword,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	filename := filepath.Base(path)
	issuer := classify.ByFilename(filename)
	strat := constants.StrategyFor(issuer)

	start := time.Now()
	res, err := extractor.Extract(ctx, path, strat)
	dur := time.Since(start)
	if err != nil {
		logger.Error("text extraction failed", "file", filename, "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	if issuer == constants.UnknownIssuer {
		issuer = classify.ByText(res.Text)
	}

	logger.Info("text extraction OK",
		"file", filename,
		"issuer", string(issuer),
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"warnings", res.Warnings,
		"duration_ms", dur.Milliseconds(),
	)

	fmt.Println(extract.NormalizeText(res.Text))
}

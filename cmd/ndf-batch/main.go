package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ntorreslo/ndf-letters/internal/common"
	"github.com/ntorreslo/ndf-letters/internal/extract"
	"github.com/ntorreslo/ndf-letters/internal/filing"
	"github.com/ntorreslo/ndf-letters/internal/journal"
	"github.com/ntorreslo/ndf-letters/internal/ledger"
	"github.com/ntorreslo/ndf-letters/internal/llm/ollama"
	"github.com/ntorreslo/ndf-letters/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		dateStr     = flag.String("date", "", "run date YYYY-MM-DD (defaults to today)")
		input       = flag.String("input", "", "input root (overrides NDF_INPUT_ROOT)")
		output      = flag.String("output", "", "output root (overrides NDF_OUTPUT_ROOT)")
		ledgerOut   = flag.String("ledger", "", "output XLSX path (defaults to the output day directory)")
		journalPath = flag.String("journal", "", "run journal path (overrides NDF_JOURNAL_PATH)")
		noJournal   = flag.Bool("no-journal", false, "disable the run journal and its rerun guard")
	)
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Load configuration, with flags overriding the environment
	cfg := common.LoadConfig()
	if *input != "" {
		cfg.Paths.InputRoot = *input
	}
	if *output != "" {
		cfg.Paths.OutputRoot = *output
	}
	if *journalPath != "" {
		cfg.Paths.JournalPath = *journalPath
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	day := time.Now()
	if *dateStr != "" {
		parsed, err := time.Parse("2006-01-02", *dateStr)
		if err != nil {
			printError("Error: invalid --date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		day = parsed
	}

	// Discover the day's letters
	docs, err := filing.Discover(cfg.Paths.InputRoot, day)
	if err != nil {
		logger.Error("failed to discover input documents", "error", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		logger.Warn("no documents for the run date", "dir", filing.DayDir(cfg.Paths.InputRoot, day))
	}

	// Setup the run journal
	var jrnl *journal.Journal
	if !*noJournal {
		jrnl, err = journal.Open(ctx, cfg.Paths.JournalPath, logger)
		if err != nil {
			logger.Error("failed to open run journal", "error", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := jrnl.Close(); cerr != nil {
				logger.Error("close journal", "error", cerr)
			}
		}()
	}

	// Setup text extraction
	extractor := extract.NewExtractor(extract.Config{
		Pdftotext:   cfg.Paths.Pdftotext,
		Pdftoppm:    cfg.Paths.Pdftoppm,
		Tesseract:   cfg.Paths.Tesseract,
		Languages:   cfg.OCR.Languages,
		DefaultDPI:  cfg.OCR.DefaultDPI,
		MaxPages:    cfg.OCR.MaxPages,
		PDFPassword: cfg.Ledger.PDFPassword,
	}, logger)

	// Setup the inference client
	client := ollama.NewClient(ollama.Config{
		BaseURL:       cfg.Inference.BaseURL,
		Model:         cfg.Inference.Model,
		Temperature:   cfg.Inference.Temperature,
		KeepAlive:     cfg.Inference.KeepAlive,
		Timeout:       cfg.Inference.Timeout,
		WarmupTimeout: cfg.Inference.WarmupTimeout,
	}, logger)
	logger.Info("inference client initialized", "model", cfg.Inference.Model, "url", cfg.Inference.BaseURL)

	processor := pipeline.NewProcessor(pipeline.Config{
		OutputRoot:     cfg.Paths.OutputRoot,
		ProcessDate:    day,
		BaseID:         cfg.Ledger.BaseID,
		MaxPromptChars: cfg.Inference.MaxPromptChars,
	}, extractor, client, jrnl, logger)

	records, err := processor.Run(ctx, docs)
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	// Export the day's ledger
	out := *ledgerOut
	if out == "" {
		dayDir := filing.DayDir(cfg.Paths.OutputRoot, day)
		if err := os.MkdirAll(dayDir, 0o755); err != nil {
			logger.Error("failed to create output directory", "error", err)
			os.Exit(1)
		}
		out = filepath.Join(dayDir, ledger.WorkbookName(day))
	}

	xlsxBytes, err := ledger.WriteXLSX(records, logger)
	if err != nil {
		logger.Error("failed to build ledger workbook", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write ledger workbook", "error", err)
		os.Exit(1)
	}

	errCount := 0
	for _, rec := range records {
		if rec.ErrorMessage != "" {
			errCount++
		}
	}

	// Log summary
	logger.Info("batch complete",
		"documents", len(records),
		"errors", errCount,
		"ledger", out)

	fmt.Printf("Batch complete!\n")
	fmt.Printf("- Documents: %d\n", len(records))
	fmt.Printf("- Errors: %d\n", errCount)
	fmt.Printf("- Ledger: %s\n", out)
}

package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/ntorreslo/ndf-letters/constants"
	"github.com/ntorreslo/ndf-letters/internal/common"
)

// extractText reads one page of the embedded text layer. Encrypted letters
// are first decrypted and rewritten into a temp copy; the rewrite also
// flattens the structural quirks that keep pdftotext from reading the
// original in place.
func (e *Extractor) extractText(ctx context.Context, path string, strat constants.Strategy) (Result, error) {
	readPath := path
	var warnings []string

	if strat.Encrypted {
		if e.cfg.PDFPassword == "" {
			return Result{}, common.NewAppError("EXTRACT_ERROR",
				"encrypted document but no passphrase configured", common.ErrDocumentIO)
		}
		tmpDir, err := os.MkdirTemp("", "ndf-dec-*")
		if err != nil {
			return Result{}, common.NewAppError("EXTRACT_ERROR", "temp dir", common.ErrDocumentIO)
		}
		defer func() {
			if rerr := os.RemoveAll(tmpDir); rerr != nil {
				e.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", rerr)
			}
		}()

		flat := filepath.Join(tmpDir, "flat.pdf")
		conf := model.NewAESConfiguration(e.cfg.PDFPassword, e.cfg.PDFPassword, 256)
		if err := api.DecryptFile(path, flat, conf); err != nil {
			// Some senders flip encryption off without renaming; retry as plain.
			if optErr := api.OptimizeFile(path, flat, model.NewDefaultConfiguration()); optErr != nil {
				return Result{}, common.NewAppError("EXTRACT_ERROR",
					fmt.Sprintf("decrypt %s", filepath.Base(path)), common.ErrDocumentIO)
			}
			warnings = append(warnings, "document was not encrypted; flattened without decryption")
		}
		readPath = flat
	}

	page := strat.PageIndex + 1 // pdftotext pages are 1-based
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext,
		"-layout", "-enc", "UTF-8", "-eol", "unix",
		"-f", fmt.Sprintf("%d", page), "-l", fmt.Sprintf("%d", page),
		readPath, "-")
	if err != nil {
		return Result{Warnings: append(warnings, string(errb))},
			common.NewAppError("EXTRACT_ERROR",
				fmt.Sprintf("pdftotext page %d of %s", page, filepath.Base(path)), common.ErrDocumentIO)
	}

	text := string(out)
	pages := 1 + strings.Count(text, "\f")
	return Result{Text: text, Pages: pages, Method: "pdf-text", Warnings: warnings}, nil
}

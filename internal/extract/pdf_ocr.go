package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ntorreslo/ndf-letters/internal/common"
)

// extractOCR rasterizes every page at the given DPI and recognizes each image
// with the bilingual symbol set, concatenating results in page order.
func (e *Extractor) extractOCR(ctx context.Context, path string, dpi int) (Result, error) {
	tmpDir, err := os.MkdirTemp("", "ndf-pp-*")
	if err != nil {
		return Result{}, common.NewAppError("EXTRACT_ERROR", "temp dir", common.ErrDocumentIO)
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			e.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", rerr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", dpi), "-png", path, prefix)
	if err != nil {
		return Result{Warnings: []string{string(errb)}},
			common.NewAppError("EXTRACT_ERROR",
				fmt.Sprintf("rasterize %s at %d dpi", filepath.Base(path), dpi), common.ErrDocumentIO)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return Result{Warnings: []string{"pdftoppm produced no images"}},
			common.NewAppError("EXTRACT_ERROR",
				fmt.Sprintf("no pages rendered for %s", filepath.Base(path)), common.ErrDocumentIO)
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		txt, w, err := e.tesseractOCR(ctx, img)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		b.WriteString(txt)
		warns = append(warns, w...)
	}
	if strings.TrimSpace(b.String()) == "" {
		// Every page rendered but none recognized: unreadable document,
		// not an empty contract body for the model to hallucinate over.
		return Result{Warnings: warns},
			common.NewAppError("EXTRACT_ERROR",
				fmt.Sprintf("no text recognized in %s", filepath.Base(path)), common.ErrDocumentIO)
	}
	return Result{Text: b.String(), Pages: len(matches), Method: "pdf-ocr", Warnings: warns}, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	// tesseract <img> stdout -l eng+spa
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.Languages)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}

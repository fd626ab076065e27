// Package filing discovers a run's input documents and files renamed copies
// of processed letters for the signature workflow.
package filing

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ntorreslo/ndf-letters/constants"
)

// Document is a single input file discovered in the day's batch.
type Document struct {
	Path     string
	Filename string
}

// DayDir resolves the dated directory for a run: root/YYYY/MM/ddmmyy.
func DayDir(root string, day time.Time) string {
	return filepath.Join(root, day.Format("2006"), day.Format("01"), day.Format("020106"))
}

// Discover lists the day's candidate documents in lexicographic order, which
// fixes the discovery order the ledger and sequential ids are built on.
// A missing day directory is the one batch-fatal precondition.
func Discover(inputRoot string, day time.Time) ([]Document, error) {
	dir := DayDir(inputRoot, day)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("input directory %s: %w", dir, err)
	}

	var docs []Document
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if constants.NormalizeExt(filepath.Ext(name)) != constants.DocumentExt {
			continue
		}
		docs = append(docs, Document{Path: filepath.Join(dir, name), Filename: name})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs, nil
}

// NewFilename builds the filed name: "{ISSUER} {dd-mm-yy} {id}.pdf".
func NewFilename(issuer constants.Issuer, day time.Time, id int) string {
	return fmt.Sprintf("%s %s %d.%s", issuer, day.Format("02-01-06"), id, constants.DocumentExt)
}

// FileCopy copies a document under outputRoot/YYYY/MM/ddmmyy/<issuer>/ with
// its filed name. The source is never mutated or moved. Returns the new
// filename.
func FileCopy(doc Document, outputRoot string, issuer constants.Issuer, day time.Time, id int) (string, error) {
	destDir := filepath.Join(DayDir(outputRoot, day), string(issuer))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", destDir, err)
	}

	newName := NewFilename(issuer, day, id)
	src, err := os.Open(doc.Path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", doc.Path, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(filepath.Join(destDir, newName))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", newName, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("copy %s: %w", newName, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", newName, err)
	}
	return newName, nil
}

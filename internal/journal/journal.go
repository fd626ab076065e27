// Package journal keeps a durable record of processed documents across runs,
// so rerunning a day's batch does not file the same letter twice.
package journal

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ntorreslo/ndf-letters/constants"
	"github.com/ntorreslo/ndf-letters/internal/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id         TEXT PRIMARY KEY,
	run_date   TEXT NOT NULL,
	started_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	content_hash      TEXT PRIMARY KEY,
	batch_id          TEXT NOT NULL REFERENCES batches(id),
	ledger_id         INTEGER NOT NULL,
	original_filename TEXT NOT NULL,
	new_filename      TEXT NOT NULL,
	issuer            TEXT NOT NULL,
	error_message     TEXT NOT NULL DEFAULT '',
	processed_at      TEXT NOT NULL
);
`

type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the journal database and ensures the schema exists.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// modernc sqlite is happiest with a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal schema: %w", err)
	}
	return &Journal{db: db, logger: logger}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// StartBatch records a new run and returns its identifier.
func (j *Journal) StartBatch(ctx context.Context, runDate time.Time) (string, error) {
	id := uuid.New().String()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO batches (id, run_date, started_at) VALUES (?, ?, ?)`,
		id, runDate.Format("2006-01-02"), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("start batch: %w", err)
	}
	return id, nil
}

// Seen reports whether a document with this content hash was already filed
// by an earlier run.
func (j *Journal) Seen(ctx context.Context, contentHash string) (bool, error) {
	var one int
	err := j.db.QueryRowContext(ctx,
		`SELECT 1 FROM documents WHERE content_hash = ?`, contentHash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("journal lookup: %w", err)
	}
	return true, nil
}

// RecordDocument journals one processed document. Idempotent per content
// hash: a rerun that reprocesses a seen document keeps the first entry.
func (j *Journal) RecordDocument(ctx context.Context, batchID, contentHash string, rec ledger.Record) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO documents
			(content_hash, batch_id, ledger_id, original_filename, new_filename, issuer, error_message, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_hash) DO NOTHING`,
		contentHash, batchID, rec.ID, rec.OriginalFilename, rec.NewFilename,
		string(rec.Issuer), rec.ErrorMessage, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("journal document: %w", err)
	}
	return nil
}

// Lookup returns the issuer and filed name a seen document was journaled
// with, so a rerun can report the original filing instead of copying again.
func (j *Journal) Lookup(ctx context.Context, contentHash string) (constants.Issuer, string, error) {
	var issuer, newFilename string
	err := j.db.QueryRowContext(ctx,
		`SELECT issuer, new_filename FROM documents WHERE content_hash = ?`, contentHash).
		Scan(&issuer, &newFilename)
	if err != nil {
		return constants.UnknownIssuer, "", err
	}
	return constants.Issuer(issuer), newFilename, nil
}

// ContentHash hashes a document's bytes; the hash keys journal entries so a
// renamed copy of the same letter still deduplicates.
func ContentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

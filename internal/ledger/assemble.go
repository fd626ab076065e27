// Package ledger folds per-document outcomes into the batch's tabular record.
package ledger

import (
	"time"

	"github.com/ntorreslo/ndf-letters/constants"
	"github.com/ntorreslo/ndf-letters/internal/llm"
)

// Record is one row of the batch ledger: exactly one per processed document,
// success or failure. Immutable once assembled.
type Record struct {
	ID               int
	OriginalFilename string
	NewFilename      string
	Issuer           constants.Issuer
	ProcessDate      string // dd/mm/yyyy
	TasaFwd          string
	ValorNominalUSD  string
	FechaInicio      string
	ErrorMessage     string // empty when the outcome succeeded
	Warnings         []string
}

// Assemble builds the ledger row for one document. Deterministic given its
// inputs. Error outcomes fill the three field columns with the error marker;
// successful outcomes copy fields through, absent fields as empty strings
// for spreadsheet compatibility.
func Assemble(originalFilename, newFilename string, issuer constants.Issuer, outcome llm.Outcome, id int, processDate time.Time) Record {
	rec := Record{
		ID:               id,
		OriginalFilename: originalFilename,
		NewFilename:      newFilename,
		Issuer:           issuer,
		ProcessDate:      processDate.Format("02/01/2006"),
		Warnings:         outcome.Warnings,
	}
	if outcome.Failed() {
		rec.TasaFwd = constants.ErrorMarker
		rec.ValorNominalUSD = constants.ErrorMarker
		rec.FechaInicio = constants.ErrorMarker
		rec.ErrorMessage = outcome.Err.Error()
		return rec
	}
	rec.TasaFwd = strOrEmpty(outcome.Fields.TasaFwd)
	rec.ValorNominalUSD = strOrEmpty(outcome.Fields.ValorNominalUSD)
	rec.FechaInicio = strOrEmpty(outcome.Fields.FechaInicio)
	return rec
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

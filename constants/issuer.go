package constants

import "regexp"

// Issuer identifies the bank that issued a confirmation letter.
type Issuer string

// Stable values (these exact strings appear in ledger rows and filed names).
const (
	JPMorgan         Issuer = "JPMORGAN"
	Bancolombia      Issuer = "BANCOLOMBIA"
	Scotiabank       Issuer = "SCOTIABANK"
	Itau             Issuer = "ITAU"
	Davivienda       Issuer = "DAVIVIENDA"
	BancoOccidente   Issuer = "BANCO DE OCCIDENTE"
	BancoSantander   Issuer = "BANCO SANTANDER"
	CitibankColombia Issuer = "CITIBANK COLOMBIA"
	UnknownIssuer    Issuer = "UNKNOWN"
)

// StrategyKind selects how text is obtained from a document.
type StrategyKind string

const (
	// StrategyDirect reads the PDF's embedded text layer.
	StrategyDirect StrategyKind = "direct"
	// StrategyOptical rasterizes pages and runs OCR on the images.
	StrategyOptical StrategyKind = "optical"
)

// Strategy carries the per-issuer extraction parameters.
type Strategy struct {
	Kind StrategyKind

	// Direct parameters.
	PageIndex int  // zero-based page to read
	Encrypted bool // decrypt with the configured passphrase, then flatten

	// Optical parameters.
	DPI int // rasterization resolution
}

// FilenameRule matches a curated filename against one issuer.
// Exactly one of Contains or Pattern is set.
type FilenameRule struct {
	Issuer   Issuer
	Contains string
	Pattern  *regexp.Regexp
}

// FilenameRules is evaluated in order; first match wins. Filename rules are
// cheaper than text extraction and the names are curated upstream, so they
// dominate text patterns.
var FilenameRules = []FilenameRule{
	{Issuer: JPMorgan, Contains: "Confirmation-AE"},
	{Issuer: Bancolombia, Contains: "COLOMBIA TELECO"},
	{Issuer: Scotiabank, Pattern: regexp.MustCompile(`\b\d{7}\b`)},
	{Issuer: Itau, Contains: "_NDFV_FW"},
}

// TextPattern matches extracted text against one issuer.
type TextPattern struct {
	Issuer  Issuer
	Pattern *regexp.Regexp
}

// TextPatterns is the fallback when no filename rule matches, evaluated in
// order, first match wins. Ordered most-specific-first: ITAU also matches
// the accented form, and the bank-qualified names precede anything that
// could collide with a brand fragment.
var TextPatterns = []TextPattern{
	{Scotiabank, regexp.MustCompile(`(?i)SCOTIABANK`)},
	{Davivienda, regexp.MustCompile(`(?i)DAVIVIENDA`)},
	{Itau, regexp.MustCompile(`(?i)ITA[UÚ]`)},
	{Bancolombia, regexp.MustCompile(`(?i)BANCOLOMBIA`)},
	{JPMorgan, regexp.MustCompile(`(?i)JPMORGAN`)},
	{BancoOccidente, regexp.MustCompile(`(?i)BANCO DE OCCIDENTE`)},
	{BancoSantander, regexp.MustCompile(`(?i)BANCO SANTANDER`)},
	{CitibankColombia, regexp.MustCompile(`(?i)CITIBANK COLOMBIA`)},
}

// strategies maps each issuer to its extraction strategy. Issuers recognized
// only by text pattern send letters with a readable text layer on the first
// page, so they share the default.
var strategies = map[Issuer]Strategy{
	JPMorgan:    {Kind: StrategyDirect, PageIndex: 1},
	Bancolombia: {Kind: StrategyDirect, PageIndex: 0, Encrypted: true},
	Scotiabank:  {Kind: StrategyOptical, DPI: 400},
	Itau:        {Kind: StrategyOptical, DPI: 500},
}

// DefaultStrategy is used for issuers without a dedicated entry and for the
// UNKNOWN sentinel: first-page text layer, with the extractor falling back
// to OCR when the layer is empty.
var DefaultStrategy = Strategy{Kind: StrategyDirect, PageIndex: 0}

// StrategyFor returns the extraction strategy for an issuer.
func StrategyFor(is Issuer) Strategy {
	if s, ok := strategies[is]; ok {
		return s
	}
	return DefaultStrategy
}

package extract

import "regexp"

// Keeps ASCII letters, digits, whitespace, comma, period, colon and hyphen.
// Deliberately lossy: accents, currency symbols and parentheses are noise to
// the extraction model, so issuer classification must happen before this.
var reNoise = regexp.MustCompile(`[^a-zA-Z0-9\s,.:-]`)

// NormalizeText strips formatting noise from extracted or OCR text while
// preserving the numeric and date tokens the model needs. Pure and idempotent.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	return reNoise.ReplaceAllString(s, "")
}

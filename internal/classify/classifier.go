// Package classify maps confirmation letters to their issuing bank.
package classify

import (
	"strings"

	"github.com/ntorreslo/ndf-letters/constants"
)

// ByFilename applies the ordered filename rules; first match wins.
// Returns the UNKNOWN sentinel when nothing matches.
func ByFilename(filename string) constants.Issuer {
	for _, r := range constants.FilenameRules {
		if r.Pattern != nil {
			if r.Pattern.MatchString(filename) {
				return r.Issuer
			}
			continue
		}
		if strings.Contains(filename, r.Contains) {
			return r.Issuer
		}
	}
	return constants.UnknownIssuer
}

// ByText scans extracted text against the ordered bank-name patterns;
// first match wins. Must run on text that still carries accents, so callers
// classify before normalizing.
func ByText(text string) constants.Issuer {
	for _, p := range constants.TextPatterns {
		if p.Pattern.MatchString(text) {
			return p.Issuer
		}
	}
	return constants.UnknownIssuer
}

// Classify resolves the issuer for a document. Filename rules dominate:
// they are curated upstream and cost nothing, while text is only available
// after extraction. Never errors; an unmatched document is UNKNOWN.
func Classify(filename, text string) constants.Issuer {
	if is := ByFilename(filename); is != constants.UnknownIssuer {
		return is
	}
	if text == "" {
		return constants.UnknownIssuer
	}
	return ByText(text)
}

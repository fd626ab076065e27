package constants

import "strings"

// DocumentExt is the extension confirmation letters arrive with.
const DocumentExt = "pdf"

// ErrorMarker is the literal written into ledger field columns when the
// extraction outcome for a document is an error.
const ErrorMarker = "ERROR"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

package ingest

import "strings"

// CleanText collapses every run of whitespace and newlines into a single
// space and trims the result. Purely textual normalization.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

package domain

import "fmt"

// FormatNumber renders the human-readable sequential identifier for a
// document: "{PREFIX}-{YEAR}-{sequence zero-padded to 3}". Sequences
// past 999 simply widen.
func FormatNumber(prefix string, year, sequence int) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, sequence)
}

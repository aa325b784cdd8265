package fetcher

import "strings"

// extractQuoted returns the payload between the first and last double-quote
// character of raw. Identity markers arrive as quoted header tokens (for
// weak ETags the W/ prefix sits outside the quotes and is dropped here).
// Returns the empty string when raw holds no well-formed quoted value.
func extractQuoted(raw string) string {
	start := strings.IndexByte(raw, '"')
	if start < 0 {
		return ""
	}
	end := strings.LastIndexByte(raw, '"')
	if end <= start {
		return ""
	}
	return raw[start+1 : end]
}

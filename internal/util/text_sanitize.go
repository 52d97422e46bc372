package util

import "strings"

// SanitizeText strips characters that would break storing or matching
// clause text: NUL bytes (PDF extractors emit them, Postgres rejects them)
// and other non-printing controls.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")

	// Keep newline, carriage return and tab; drop the rest below 0x20.
	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}

package util

import "testing"

func TestSanitizeTextRemovesNulAndControls(t *testing.T) {
	in := "ab\x00cd\x01\x02\n\txy"
	out := SanitizeText(in)
	if out != "abcd\n\txy" {
		t.Fatalf("unexpected sanitized output: %q", out)
	}
}

func TestSanitizeTextKeepsDiacritics(t *testing.T) {
	in := "zażółć gęślą jaźń\x00"
	if out := SanitizeText(in); out != "zażółć gęślą jaźń" {
		t.Fatalf("diacritics mangled: %q", out)
	}
}

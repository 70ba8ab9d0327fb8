package extractor

import (
	"strings"
	"testing"
)

func TestIsReadableText(t *testing.T) {
	readable := []string{
		`TD Canada Trust
Statement Date: January 14, 2024
Previous Balance $100.00
New Balance $150.00`,
	}
	if !isReadableText(readable) {
		t.Error("statement text rejected as unreadable")
	}

	// Identity-encoded fonts decode into accented garbage; the gate must
	// reject it even when it is long enough.
	garbage := []string{strings.Repeat("þã¶¡", 50)}
	if isReadableText(garbage) {
		t.Error("garbage text accepted as readable")
	}

	if isReadableText([]string{"short"}) {
		t.Error("short text accepted as readable")
	}

	// ASCII-clean but nothing statement-like.
	noWords := []string{strings.Repeat("abc xyz qrs ", 20)}
	if isReadableText(noWords) {
		t.Error("text without statement words accepted")
	}
}

func TestTextQuality(t *testing.T) {
	if q := textQuality([]string{"Account balance 123.45"}); q < 0.99 {
		t.Errorf("clean ASCII quality: got %f, want ~1.0", q)
	}
	if q := textQuality([]string{"þã¶¡"}); q != 0 {
		t.Errorf("garbage quality: got %f, want 0", q)
	}
	if q := textQuality(nil); q != 0 {
		t.Errorf("empty quality: got %f, want 0", q)
	}
}

func TestExtractTextRejectsGarbageBytes(t *testing.T) {
	_, err := ExtractText([]byte("not a pdf at all"))
	if err == nil {
		t.Fatal("expected an error for non-PDF bytes")
	}
}

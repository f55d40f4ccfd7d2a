package fileutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeNewlines(t *testing.T) {
	t.Parallel()

	got := SanitizeNewlines("a\r\nb\rc\nd")
	if got != `a\nb\nc\nd` {
		t.Fatalf("SanitizeNewlines=%q", got)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("  short  ", 100); got != "short" {
		t.Fatalf("Truncate=%q, want trimmed", got)
	}
	long := strings.Repeat("x", 50)
	got := Truncate(long, 10)
	if !strings.HasPrefix(got, "xxxxxxxxxx") || !strings.HasSuffix(got, "…") {
		t.Fatalf("Truncate=%q, want 10 chars plus ellipsis", got)
	}
	if got := Truncate(long, 0); got != long {
		t.Fatalf("Truncate with max=0 should not truncate")
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	t.Parallel()

	// max 1 falls inside the two-byte "ś" that opens the string.
	got := Truncate("świetnie", 1)
	if !utf8.ValidString(got) {
		t.Fatalf("Truncate=%q is not valid UTF-8", got)
	}
	if got != "…" {
		t.Fatalf("Truncate=%q, want the cut backed up before the split rune", got)
	}

	got = Truncate("ab😀cd", 4) // max lands mid-emoji (4-byte rune at offset 2)
	if !utf8.ValidString(got) {
		t.Fatalf("Truncate=%q is not valid UTF-8", got)
	}
	if got != "ab…" {
		t.Fatalf("Truncate=%q, want %q", got, "ab…")
	}

	if got := Truncate("żółw idzie", 7); !utf8.ValidString(got) || !strings.HasSuffix(got, "…") {
		t.Fatalf("Truncate=%q, want valid UTF-8 with ellipsis", got)
	}
}

func TestWriteJSONFileAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "out.json")
	if err := WriteJSONFileAtomic(path, map[string]int{"a": 1}, true); err != nil {
		t.Fatalf("WriteJSONFileAtomic: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(b), `"a": 1`) {
		t.Fatalf("content=%q", b)
	}
	if !FileExists(path) {
		t.Fatalf("FileExists=false for written file")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp_artifact_") {
			t.Fatalf("temp file %q left behind", e.Name())
		}
	}
}

func TestDecodeModelJSON(t *testing.T) {
	t.Parallel()

	var v struct {
		A int `json:"a"`
	}
	if err := DecodeModelJSON(`{"a": 2}`, &v); err != nil || v.A != 2 {
		t.Fatalf("plain decode: err=%v v=%+v", err, v)
	}
	if err := DecodeModelJSON("Sure, here you go:\n```json\n{\"a\": 3}\n```", &v); err != nil || v.A != 3 {
		t.Fatalf("wrapped decode: err=%v v=%+v", err, v)
	}
	if err := DecodeModelJSON("no json here", &v); err == nil {
		t.Fatalf("expected error for proseless input")
	}
	if err := DecodeModelJSON("", &v); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractHTMLStripsTags(t *testing.T) {
	e := NewExtractor()
	html := `<html><head><title>Attention</title><style>p{color:red}</style></head>
<body><h1>Attention Is All You Need</h1><p>We propose the <b>Transformer</b>.</p>
<script>var x = "ignore me";</script></body></html>`
	got, err := e.ExtractBytes([]byte(html), ".html")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	for _, want := range []string{"Attention Is All You Need", "We propose the Transformer ."} {
		if !strings.Contains(got, want) {
			t.Errorf("extracted text missing %q: %q", want, got)
		}
	}
	for _, reject := range []string{"color:red", "ignore me", "<p>", "<b>"} {
		if strings.Contains(got, reject) {
			t.Errorf("extracted text contains %q: %q", reject, got)
		}
	}
}

func TestExtractHTMLCollapsesWhitespace(t *testing.T) {
	got, err := extractHTML([]byte("<p>a</p>\n\n\t <p>b</p>"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "a b" {
		t.Errorf("got %q, want %q", got, "a b")
	}
}

func TestExtractHTMLUnterminatedTag(t *testing.T) {
	got, err := extractHTML([]byte("text <img src=\"x"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "text" {
		t.Errorf("got %q, want %q", got, "text")
	}
}

func TestExtractHTMLRunesThatShrinkUnderUnicodeLowering(t *testing.T) {
	// U+212A (Kelvin sign) is 3 bytes but lowercases to the 1-byte "k";
	// lowering must stay byte-aligned with the original or offsets desync.
	kelvins := strings.Repeat("K", 10)
	got, err := extractHTML([]byte(kelvins + "<p>hi</p><STYLE>p{}</STYLE>after"))
	if err != nil {
		t.Fatal(err)
	}
	if got != kelvins+" hi after" {
		t.Errorf("got %q, want %q", got, kelvins+" hi after")
	}
}

func TestExtractPlainPassthrough(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("plain notes"), ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "plain notes" {
		t.Errorf("got %q", got)
	}
}

func TestExtractPlainInvalidUTF8Replaced(t *testing.T) {
	got, err := extractPlain([]byte{'a', 0xff, 'b'})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "a") || !strings.Contains(got, "b") {
		t.Errorf("got %q", got)
	}
	if strings.Contains(got, "\xff") {
		t.Errorf("invalid byte survived: %q", got)
	}
}

func TestExtractReadsFromDisk(t *testing.T) {
	e := NewExtractor()
	dir := t.TempDir()
	p := filepath.Join(dir, "note.md")
	if err := os.WriteFile(p, []byte("# heading"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := e.Extract(p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "# heading" {
		t.Errorf("got %q", got)
	}
}

func TestExtractMissingFile(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Extract(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("Extract on missing file: expected error")
	}
}

func TestExtractInvalidPDF(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a pdf"), ".pdf"); err == nil {
		t.Error("ExtractBytes on junk PDF: expected error")
	}
}

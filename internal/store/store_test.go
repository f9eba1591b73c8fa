package store

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	content := "hello\nworld"
	if err := s.Write("notes/a.txt", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.ReadText("notes/a.txt")
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if got != content {
		t.Errorf("round trip: got %q, want %q", got, content)
	}
}

func TestReadBinary(t *testing.T) {
	s := newTestStore(t)
	raw := []byte{0x00, 0xff, 0x10, 0x89}
	if err := os.WriteFile(filepath.Join(s.Root(), "blob.bin"), raw, 0644); err != nil {
		t.Fatal(err)
	}
	got, err := s.ReadBinary("blob.bin")
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}
	if string(got) != string(raw) {
		t.Errorf("ReadBinary: got %v, want %v", got, raw)
	}
}

func TestReadMissingFile(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ReadText("nope.txt"); err == nil {
		t.Error("ReadText on missing file: expected error")
	}
	if _, err := s.ReadBinary("nope.bin"); err == nil {
		t.Error("ReadBinary on missing file: expected error")
	}
}

func TestCopyInFlattensToBasename(t *testing.T) {
	s := newTestStore(t)
	src := filepath.Join(t.TempDir(), "deep", "nested")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	srcFile := filepath.Join(src, "paper.html")
	if err := os.WriteFile(srcFile, []byte("<html></html>"), 0644); err != nil {
		t.Fatal(err)
	}
	name, err := s.CopyIn(srcFile)
	if err != nil {
		t.Fatalf("CopyIn: %v", err)
	}
	if name != "paper.html" {
		t.Errorf("CopyIn name: got %q, want %q", name, "paper.html")
	}
	got, err := s.ReadText("paper.html")
	if err != nil {
		t.Fatalf("ReadText after CopyIn: %v", err)
	}
	if got != "<html></html>" {
		t.Errorf("copied content: got %q", got)
	}
}

func TestCopyInMissingSource(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CopyIn(filepath.Join(t.TempDir(), "ghost.pdf"))
	if !errors.Is(err, ErrSourceMissing) {
		t.Errorf("CopyIn missing source: got %v, want ErrSourceMissing", err)
	}
}

func TestCopyInAtPreservesSubpath(t *testing.T) {
	s := newTestStore(t)
	src := filepath.Join(t.TempDir(), "fig1.png")
	if err := os.WriteFile(src, []byte{0x89, 0x50}, 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.CopyInAt(src, "images/fig1.png"); err != nil {
		t.Fatalf("CopyInAt: %v", err)
	}
	got, err := s.ReadBinary("images/fig1.png")
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}
	if len(got) != 2 || got[0] != 0x89 {
		t.Errorf("asset bytes: got %v", got)
	}
}

func TestListReturnsRelativeForwardSlashPaths(t *testing.T) {
	s := newTestStore(t)
	names := []string{"a.txt", "sub/b.txt", "sub/deeper/c.txt"}
	for _, n := range names {
		if err := s.Write(n, "x"); err != nil {
			t.Fatalf("Write %s: %v", n, err)
		}
	}
	got, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(got)
	want := append([]string(nil), names...)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("List: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListEmptyStore(t *testing.T) {
	s := newTestStore(t)
	got, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("List on empty store: got %v", got)
	}
}

func TestExists(t *testing.T) {
	s := newTestStore(t)
	ok, err := s.Exists("missing.txt")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("Exists on missing file: got true")
	}
	if err := s.Write("here.txt", "x"); err != nil {
		t.Fatal(err)
	}
	ok, err = s.Exists("here.txt")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Error("Exists on present file: got false")
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete("never-existed.txt"); err != nil {
		t.Errorf("Delete nonexistent: %v", err)
	}
	if err := s.Write("gone.txt", "x"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("gone.txt"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := s.Delete("gone.txt"); err != nil {
		t.Errorf("Delete twice: %v", err)
	}
	ok, _ := s.Exists("gone.txt")
	if ok {
		t.Error("file still exists after Delete")
	}
}

func TestOverwrite(t *testing.T) {
	s := newTestStore(t)
	if err := s.Write("f.txt", "one"); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("f.txt", "two"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.ReadText("f.txt")
	if got != "two" {
		t.Errorf("overwrite: got %q, want %q", got, "two")
	}
}

func TestPathEscapeRejected(t *testing.T) {
	s := newTestStore(t)
	escaping := []string{"../secret.txt", "a/../../secret.txt", "/etc/passwd", "..", "a/../.."}
	for _, name := range escaping {
		if err := s.Write(name, "x"); !errors.Is(err, ErrPathEscape) {
			t.Errorf("Write(%q): got %v, want ErrPathEscape", name, err)
		}
		if _, err := s.ReadText(name); !errors.Is(err, ErrPathEscape) {
			t.Errorf("ReadText(%q): got %v, want ErrPathEscape", name, err)
		}
		if _, err := s.Exists(name); !errors.Is(err, ErrPathEscape) {
			t.Errorf("Exists(%q): got %v, want ErrPathEscape", name, err)
		}
	}
	// Inner ".." that stays under the root is fine after cleaning.
	if err := s.Write("a/../b.txt", "x"); err != nil {
		t.Errorf("Write(a/../b.txt): %v", err)
	}
	ok, _ := s.Exists("b.txt")
	if !ok {
		t.Error("cleaned name not written to b.txt")
	}
}

func TestEmptyNameRejected(t *testing.T) {
	s := newTestStore(t)
	if err := s.Write("", "x"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Write(\"\"): got %v, want ErrInvalidName", err)
	}
}

package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/bunko/internal/docid"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestUpsertAndGet(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	e := &Entry{
		ID:         docid.ForName("paper.html"),
		Name:       "paper.html",
		SourcePath: "/home/u/Downloads/paper.html",
		Title:      "paper",
		SizeBytes:  1234,
	}
	if err := c.Upsert(ctx, e); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := c.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "paper.html" || got.SizeBytes != 1234 {
		t.Errorf("Get: got %+v", got)
	}
}

func TestUpsertUpdatesInPlace(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	id := docid.ForName("paper.html")
	if err := c.Upsert(ctx, &Entry{ID: id, Name: "paper.html", SizeBytes: 10}); err != nil {
		t.Fatal(err)
	}
	if err := c.Upsert(ctx, &Entry{ID: id, Name: "paper.html", SizeBytes: 20}); err != nil {
		t.Fatal(err)
	}
	n, err := c.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count after re-upsert: got %d, want 1", n)
	}
	got, _ := c.Get(ctx, id)
	if got.SizeBytes != 20 {
		t.Errorf("SizeBytes after update: got %d, want 20", got.SizeBytes)
	}
}

func TestGetMissing(t *testing.T) {
	c := newTestCatalog(t)
	if _, err := c.Get(context.Background(), "doc:missing"); err == nil {
		t.Error("Get on unknown id: expected error")
	}
}

func TestDeleteRemovesDocumentAndHistory(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	id := docid.ForName("paper.html")
	if err := c.Upsert(ctx, &Entry{ID: id, Name: "paper.html"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.RecordIngestion(ctx, id, 2, 1); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, id); err == nil {
		t.Error("document still present after Delete")
	}
	ings, err := c.Ingestions(ctx, id)
	if err != nil {
		t.Fatalf("Ingestions: %v", err)
	}
	if len(ings) != 0 {
		t.Errorf("ingestion history survived delete: %v", ings)
	}
	// Idempotent
	if err := c.Delete(ctx, id); err != nil {
		t.Errorf("Delete twice: %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	for _, name := range []string{"a.html", "b.html", "c.html"} {
		if err := c.Upsert(ctx, &Entry{ID: docid.ForName(name), Name: name}); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := c.List(ctx, 0, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("List: got %d entries, want 3", len(entries))
	}
	limited, err := c.List(ctx, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("List with limit 2: got %d", len(limited))
	}
}

func TestRecordIngestion(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	id := docid.ForName("paper.html")
	if err := c.Upsert(ctx, &Entry{ID: id, Name: "paper.html"}); err != nil {
		t.Fatal(err)
	}
	ing, err := c.RecordIngestion(ctx, id, 3, 1)
	if err != nil {
		t.Fatalf("RecordIngestion: %v", err)
	}
	if ing.ID == "" {
		t.Error("ingestion id is empty")
	}
	if _, err := c.RecordIngestion(ctx, id, 0, 0); err != nil {
		t.Fatal(err)
	}
	ings, err := c.Ingestions(ctx, id)
	if err != nil {
		t.Fatalf("Ingestions: %v", err)
	}
	if len(ings) != 2 {
		t.Fatalf("Ingestions: got %d, want 2", len(ings))
	}
	if ings[0].ID == ings[1].ID {
		t.Error("ingestion ids not unique")
	}
}

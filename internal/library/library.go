// Package library coordinates the file store, catalog, and search index.
// Store mutations flow through here so that catalog rows and index entries
// follow the files; the store itself stays usable on its own.
package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/bunko/internal/catalog"
	"github.com/hyperjump/bunko/internal/docid"
	"github.com/hyperjump/bunko/internal/extract"
	"github.com/hyperjump/bunko/internal/ingest"
	"github.com/hyperjump/bunko/internal/search"
	"github.com/hyperjump/bunko/internal/store"
	"go.uber.org/zap"
)

// Library ties the sandboxed store to its catalog and search index.
type Library struct {
	store     *store.FileStore
	ingestor  *ingest.Ingestor
	catalog   *catalog.Catalog
	index     *search.Index
	extractor *extract.Extractor
	logger    *zap.Logger
}

// New returns a Library over the given components. logger may be nil.
func New(s *store.FileStore, cat *catalog.Catalog, idx *search.Index, logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Library{
		store:     s,
		ingestor:  ingest.New(s, logger),
		catalog:   cat,
		index:     idx,
		extractor: extract.NewExtractor(),
		logger:    logger,
	}
}

// Store exposes the underlying file store.
func (l *Library) Store() *store.FileStore { return l.store }

// Catalog exposes the underlying catalog.
func (l *Library) Catalog() *catalog.Catalog { return l.catalog }

// Index exposes the underlying search index.
func (l *Library) Index() *search.Index { return l.index }

// AddFile flatten-copies sourcePath into the store and records it.
func (l *Library) AddFile(ctx context.Context, sourcePath string) (string, error) {
	name, err := l.store.CopyIn(sourcePath)
	if err != nil {
		return "", err
	}
	l.record(ctx, name, sourcePath)
	return name, nil
}

// IngestHTML ingests an HTML document with its local image assets, records
// the document and its ingestion outcome. Asset files are stored but not
// cataloged individually; the filesystem is their source of truth.
func (l *Library) IngestHTML(ctx context.Context, sourcePath string) (*ingest.Result, error) {
	res, err := l.ingestor.IngestHTML(sourcePath)
	if err != nil {
		return nil, err
	}
	l.record(ctx, res.StoredName, sourcePath)
	if _, err := l.catalog.RecordIngestion(ctx, docid.ForName(res.StoredName), res.AssetsCopied, res.AssetsSkipped); err != nil {
		l.logger.Warn("failed to record ingestion", zap.String("name", res.StoredName), zap.Error(err))
	}
	return res, nil
}

// Write stores content under name and records it.
func (l *Library) Write(ctx context.Context, name, content string) error {
	if err := l.store.Write(name, content); err != nil {
		return err
	}
	l.record(ctx, name, "")
	return nil
}

// Delete removes the named file, its catalog row, and its index entry.
func (l *Library) Delete(ctx context.Context, name string) error {
	if err := l.store.Delete(name); err != nil {
		return err
	}
	l.forget(ctx, name)
	return nil
}

// SyncPath records a file inside the store root given its absolute path.
// Used by the watcher when files change out-of-band. Paths outside the root
// are ignored.
func (l *Library) SyncPath(ctx context.Context, absPath string) {
	name, ok := l.relName(absPath)
	if !ok {
		return
	}
	l.record(ctx, name, "")
}

// ForgetPath drops catalog and index entries for a removed file given its
// absolute path.
func (l *Library) ForgetPath(ctx context.Context, absPath string) {
	name, ok := l.relName(absPath)
	if !ok {
		return
	}
	l.forget(ctx, name)
}

func (l *Library) relName(absPath string) (string, bool) {
	rel, err := filepath.Rel(l.store.Root(), absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// record upserts the catalog row and re-indexes extracted text. Catalog and
// index failures are logged, never surfaced: they must not fail the store
// operation that already succeeded.
func (l *Library) record(ctx context.Context, name, sourcePath string) {
	id := docid.ForName(name)
	p, resolveErr := l.store.Resolve(name)
	var size int64
	if resolveErr == nil {
		if info, statErr := os.Stat(p); statErr == nil {
			size = info.Size()
		}
	}
	entry := &catalog.Entry{
		ID:         id,
		Name:       name,
		SourcePath: sourcePath,
		Title:      titleFor(name),
		SizeBytes:  size,
	}
	if err := l.catalog.Upsert(ctx, entry); err != nil {
		l.logger.Warn("catalog upsert failed", zap.String("name", name), zap.Error(err))
	}

	if resolveErr != nil {
		return
	}
	text, err := l.extractor.Extract(p)
	if err != nil {
		l.logger.Debug("extraction skipped", zap.String("name", name), zap.Error(err))
		return
	}
	doc := &search.Document{ID: id, Title: name, Content: text}
	if err := l.index.Put(ctx, doc); err != nil {
		l.logger.Warn("index update failed", zap.String("name", name), zap.Error(err))
	}
}

func (l *Library) forget(ctx context.Context, name string) {
	id := docid.ForName(name)
	if err := l.catalog.Delete(ctx, id); err != nil {
		l.logger.Warn("catalog delete failed", zap.String("name", name), zap.Error(err))
	}
	if err := l.index.Delete(ctx, id); err != nil {
		l.logger.Warn("index delete failed", zap.String("name", name), zap.Error(err))
	}
}

// titleFor derives a display title from a stored name: the basename without
// its extension.
func titleFor(name string) string {
	base := filepath.Base(filepath.FromSlash(name))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

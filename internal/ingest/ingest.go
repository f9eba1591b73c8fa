// Package ingest copies user-selected documents into the store. HTML
// documents are ingested together with every locally referenced image so the
// page renders from the store without rewriting its references: assets land
// beside the HTML at the same relative paths they had next to the source.
package ingest

import (
	"os"
	"path/filepath"

	"github.com/hyperjump/bunko/internal/store"
	"go.uber.org/zap"
)

// Result reports one ingestion. The primary document's stored name is the
// success payload; asset counts are diagnostic and never fail the ingestion.
type Result struct {
	StoredName    string `json:"filename"`
	AssetsCopied  int    `json:"assets_copied"`
	AssetsSkipped int    `json:"assets_skipped"`
}

// Ingestor copies documents and their local image assets into a FileStore.
type Ingestor struct {
	store   *store.FileStore
	scanner func(content string) refScanner
	logger  *zap.Logger
}

// New returns an Ingestor writing into s. logger may be nil.
func New(s *store.FileStore, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		store:   s,
		scanner: func(content string) refScanner { return newImgScanner(content) },
		logger:  logger,
	}
}

// IngestHTML copies the HTML file at sourcePath into the store under its
// basename, then scans it for img tags and replicates each accepted local
// image at the same relative path. The primary copy failing aborts the whole
// operation; everything after it is best-effort. Unreadable content is
// treated as empty and individual asset failures are skipped and counted.
func (g *Ingestor) IngestHTML(sourcePath string) (*Result, error) {
	storedName, err := g.store.CopyIn(sourcePath)
	if err != nil {
		return nil, err
	}
	sourceDir := filepath.Dir(sourcePath)

	// Best effort: the primary copy already succeeded, so a read failure
	// here degrades to "no assets" rather than undoing the ingestion.
	raw, err := os.ReadFile(sourcePath)
	if err != nil {
		g.logger.Warn("ingest: unreadable content, skipping asset scan",
			zap.String("source", sourcePath), zap.Error(err))
		raw = nil
	}

	res := &Result{StoredName: storedName}
	sc := g.scanner(string(raw))
	for {
		rawRef, found := sc.next()
		if !found {
			break
		}
		if rawRef == "" {
			continue
		}
		g.copyAsset(sourceDir, rawRef, res)
	}

	g.logger.Info("ingested document",
		zap.String("filename", storedName),
		zap.Int("assets_copied", res.AssetsCopied),
		zap.Int("assets_skipped", res.AssetsSkipped))
	return res, nil
}

// copyAsset classifies one raw reference and, when it names an existing local
// file, replicates it into the store at the same relative path. Failures are
// counted, never surfaced: asset loss is non-fatal to the ingestion.
func (g *Ingestor) copyAsset(sourceDir, rawRef string, res *Result) {
	ref, ok := classifyRef(rawRef)
	if !ok {
		return
	}
	decoded := percentDecode(ref)
	assetSource := filepath.Join(sourceDir, filepath.FromSlash(decoded))
	if _, err := os.Stat(assetSource); err != nil {
		res.AssetsSkipped++
		return
	}
	if err := g.store.CopyInAt(assetSource, decoded); err != nil {
		g.logger.Debug("ingest: asset copy skipped",
			zap.String("ref", decoded), zap.Error(err))
		res.AssetsSkipped++
		return
	}
	res.AssetsCopied++
}

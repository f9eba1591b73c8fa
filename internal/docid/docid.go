// Package docid provides a deterministic document ID from a stored file's
// relative name.
package docid

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"path/filepath"
)

const prefix = "doc:"

// ForName returns a stable document ID for the given store-relative name.
// The same name always yields the same ID regardless of host separator
// conventions. Used to key catalog rows and search index entries.
func ForName(name string) string {
	normalized := path.Clean(filepath.ToSlash(name))
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}

package config

import (
	"os"
	"path/filepath"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8765
	}
	base := DefaultBaseDir()
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = filepath.Join(base, "data")
	}
	if cfg.Storage.CatalogPath == "" {
		cfg.Storage.CatalogPath = filepath.Join(base, "catalog.db")
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = filepath.Join(base, "index.bleve")
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".html", ".htm", ".pdf", ".txt", ".md"}
	}
}

// DefaultBaseDir returns the application directory under the platform's local
// application-data area: $XDG_DATA_HOME/bunko, falling back to
// ~/.local/share/bunko, then ./.bunko when no home is resolvable.
func DefaultBaseDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "bunko")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "bunko")
	}
	return ".bunko"
}

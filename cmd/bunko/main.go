// Package main is the Bunko CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/bunko/internal/catalog"
	"github.com/hyperjump/bunko/internal/config"
	"github.com/hyperjump/bunko/internal/library"
	"github.com/hyperjump/bunko/internal/search"
	"github.com/hyperjump/bunko/internal/server"
	"github.com/hyperjump/bunko/internal/store"
	"github.com/hyperjump/bunko/internal/watcher"
	"github.com/hyperjump/bunko/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. A missing default config file is not an error: the built-in
// defaults apply. Returns the config and the path that was actually loaded
// ("" when defaults were used).
func loadConfig(path string) (*config.Config, string, error) {
	defaultPath := filepath.Join(config.DefaultBaseDir(), "config.yaml")
	if path == defaultPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			var cfg config.Config
			config.ApplyDefaults(&cfg)
			return &cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "add":
		runAdd()
	case "ingest":
		runIngest()
	case "ls":
		runList()
	case "cat":
		runCat()
	case "rm":
		runRemove()
	case "exists":
		runExists()
	case "root":
		runRoot()
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("bunko version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	return filepath.Join(config.DefaultBaseDir(), "config.yaml")
}

// Components holds initialized services.
type Components struct {
	Store   *store.FileStore
	Catalog *catalog.Catalog
	Index   *search.Index
	Library *library.Library
}

func (c *Components) Close() {
	if c.Catalog != nil {
		_ = c.Catalog.Close()
	}
	if c.Index != nil {
		_ = c.Index.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	st, err := store.New(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	cat, err := catalog.Open(cfg.Storage.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}
	idx, err := search.Open(cfg.Storage.IndexPath)
	if err != nil {
		_ = cat.Close()
		return nil, fmt.Errorf("failed to initialize search index: %w", err)
	}
	return &Components{
		Store:   st,
		Catalog: cat,
		Index:   idx,
		Library: library.New(st, cat, idx, logger),
	}, nil
}

// setup is the shared preamble for subcommands that need storage access.
func setup(configPath string, debugFlag bool) (*config.Config, *zap.Logger, *Components) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if resolvedPath != "" {
		logger.Debug("config loaded", zap.String("config_path", resolvedPath))
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, logger, components
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (store changes, ingestion details, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	logger.Info("storage ready",
		zap.String("data_dir", cfg.Storage.DataDir),
		zap.String("catalog", cfg.Storage.CatalogPath),
		zap.String("index", cfg.Storage.IndexPath),
	)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if cfg.Watch.EnabledOrDefault() {
		lib := components.Library
		watchOpts := []watcher.Option{}
		if cfg.Debug || *debug {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc = watcher.New(
			cfg.Storage.DataDir,
			cfg.Watch.Extensions,
			func(path string) { lib.SyncPath(context.Background(), path) },
			func(path string) { lib.ForgetPath(context.Background(), path) },
			watchOpts...,
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExisting()
	}

	srv := server.NewServer(components.Library, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	if watchSvc != nil {
		watchSvc.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: bunko add [flags] <source-file>")
		os.Exit(1)
	}
	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	name, err := components.Library.AddFile(context.Background(), fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Add failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Added: %s\n", name)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: bunko ingest [flags] <html-file>")
		os.Exit(1)
	}
	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	res, err := components.Library.IngestHTML(context.Background(), fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Ingested: %s (%d asset(s) copied, %d skipped)\n",
		res.StoredName, res.AssetsCopied, res.AssetsSkipped)
}

func runList() {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "config file path")
	_ = fs.Parse(os.Args[2:])

	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	files, err := components.Store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	for _, f := range files {
		fmt.Println(f)
	}
}

func runCat() {
	fs := flag.NewFlagSet("cat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: bunko cat [flags] <name>")
		os.Exit(1)
	}
	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	content, err := components.Store.ReadText(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(content)
}

func runRemove() {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: bunko rm [flags] <name>")
		os.Exit(1)
	}
	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	name := fs.Arg(0)
	if err := components.Library.Delete(context.Background(), name); err != nil {
		fmt.Fprintf(os.Stderr, "Remove failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Removed: %s\n", name)
}

func runExists() {
	fs := flag.NewFlagSet("exists", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: bunko exists [flags] <name>")
		os.Exit(1)
	}
	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	exists, err := components.Store.Exists(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(exists)
	if !exists {
		os.Exit(1)
	}
}

func runRoot() {
	fs := flag.NewFlagSet("root", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "config file path")
	_ = fs.Parse(os.Args[2:])

	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	fmt.Println(components.Store.Root())
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "config file path")
	limit := fs.Int("limit", 10, "number of results")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: bunko search [flags] <query>")
		os.Exit(1)
	}
	query := fs.Arg(0)

	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	hits, err := components.Index.Search(context.Background(), query, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(hits); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		for _, h := range hits {
			fmt.Printf("%-8.4f %s\n", h.Score, h.Title)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	docCount, err := components.Catalog.Count(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count documents failed: %v\n", err)
		os.Exit(1)
	}
	indexed, err := components.Index.DocCount()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Index count failed: %v\n", err)
		os.Exit(1)
	}
	files, err := components.Store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("files:      %d   # files under the store root\n", len(files))
	fmt.Printf("documents:  %d   # cataloged documents\n", docCount)
	fmt.Printf("indexed:    %d   # documents in the search index\n", indexed)
	fmt.Println()
	fmt.Println("# paths")
	fmt.Printf("data_dir:   %s\n", cfg.Storage.DataDir)
	fmt.Printf("catalog:    %s\n", cfg.Storage.CatalogPath)
	fmt.Printf("index:      %s\n", cfg.Storage.IndexPath)
}

func printUsage() {
	fmt.Println(`bunko - Local document store for the Hyperjump reader

Usage:
  bunko server [flags]            Start the HTTP server
  bunko add [flags] <file>        Copy a document into the store
  bunko ingest [flags] <html>     Copy an HTML document with its local images
  bunko ls [flags]                List stored files
  bunko cat [flags] <name>        Print a stored file
  bunko rm [flags] <name>         Remove a stored file
  bunko exists [flags] <name>     Check whether a file is stored
  bunko root [flags]              Print the store root path
  bunko search [flags] <query>    Search stored documents
  bunko status [flags]            Show store/catalog/index status
  bunko version                   Show version
  bunko help                      Show this help

Server Flags:
  --config string    Config file path (default: <data-dir>/config.yaml)
  --debug            Enable debug logging (store changes, ingestion details, etc.)

Search Flags:
  --config string    Config file path
  --limit int        Number of results (default: 10)
  --output string    Output format: text or json (default: text)

Examples:
  bunko server
  bunko add ~/Downloads/paper.pdf
  bunko ingest ~/Downloads/article.html
  bunko ls
  bunko search "neural networks"
  bunko rm paper.pdf`)
}

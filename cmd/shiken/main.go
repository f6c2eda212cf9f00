// Package main is the Shiken CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/shiken/internal/agent"
	"github.com/hyperjump/shiken/internal/chunker"
	"github.com/hyperjump/shiken/internal/config"
	"github.com/hyperjump/shiken/internal/embedding"
	"github.com/hyperjump/shiken/internal/knowledge"
	"github.com/hyperjump/shiken/internal/parser"
	"github.com/hyperjump/shiken/internal/pipeline"
	"github.com/hyperjump/shiken/internal/server"
	"github.com/hyperjump/shiken/internal/storage"
	"github.com/hyperjump/shiken/internal/vector"
	"github.com/hyperjump/shiken/internal/watcher"
	"github.com/hyperjump/shiken/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/shiken/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory takes precedence if it exists, so running from the
// project dir uses the project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
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
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Local .env files carry API keys during development; absence is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "build":
		runBuild()
	case "query":
		runQuery()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("shiken version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	var watch *watcher.Watcher
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.Enabled {
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		pl := components.Pipeline
		uploads := components.Uploads
		watch = watcher.New(cfg.Storage.UploadDir, cfg.Upload.AllowedExtensions(), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			paths, err := uploads.Paths(ctx)
			if err != nil {
				logger.Warn("watch rebuild: list uploads failed", zap.Error(err))
				return
			}
			if len(paths) == 0 {
				return
			}
			if _, err := pl.Build(ctx, paths, true); err != nil {
				logger.Warn("watch rebuild failed", zap.Error(err))
			}
		}, watchOpts...)
		if err := watch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(
		components.Pipeline,
		components.Uploads,
		components.TestAgent,
		components.ScriptAgent,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watch != nil {
		watch.Stop()
	}
	if err := components.Collection.Save(cfg.Storage.CollectionPath); err != nil {
		logger.Warn("collection save failed", zap.String("path", cfg.Storage.CollectionPath), zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	clearExisting := fs.Bool("clear", true, "clear the existing collection before building")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := mustInitialize(*configPath)
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	paths := fs.Args()
	if len(paths) == 0 {
		var err error
		paths, err = components.Uploads.Paths(ctx)
		if err != nil {
			fmt.Printf("Failed to list uploads: %v\n", err)
			os.Exit(1)
		}
	}
	if len(paths) == 0 {
		fmt.Println("Nothing to build: no files given and no uploads registered")
		os.Exit(1)
	}

	result, err := components.Pipeline.Build(ctx, paths, *clearExisting)
	if err != nil {
		fmt.Printf("Build failed: %v\n", err)
		os.Exit(1)
	}
	if err := components.Collection.Save(cfg.Storage.CollectionPath); err != nil {
		fmt.Printf("Failed to save collection: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Built %d chunks from %d document(s)\n", result.ChunkCount, result.DocumentCount)
	for _, f := range result.ProcessedFiles {
		fmt.Printf("  %s\n", f)
	}
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	topK := fs.Int("top-k", 0, "number of results (default from config)")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	queryText := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if queryText == "" {
		fmt.Println("Usage: shiken query [flags] <text>")
		os.Exit(1)
	}

	cfg, logger, components := mustInitialize(*configPath)
	defer logger.Sync()
	defer components.Close()

	k := *topK
	if k <= 0 {
		k = cfg.Retrieval.TopK
	}
	result, err := components.Pipeline.Query(context.Background(), queryText, k)
	if err != nil {
		fmt.Printf("Query failed: %v\n", err)
		os.Exit(1)
	}

	if *output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
		return
	}
	fmt.Println(result.Context)
	if len(result.Sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(result.Sources, ", "))
	}
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	_, logger, components := mustInitialize(*configPath)
	defer logger.Sync()
	defer components.Close()

	stats := components.Pipeline.Stats()
	if *output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(stats)
		return
	}
	fmt.Printf("Total chunks:   %d\n", stats.TotalChunks)
	fmt.Printf("Unique sources: %d\n", stats.UniqueSources)
	for _, s := range stats.Sources {
		fmt.Printf("  %s\n", s)
	}
}

func mustInitialize(configPath string) (*config.Config, *zap.Logger, *Components) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger, components
}

// Components holds initialized services.
type Components struct {
	Store       storage.Store
	Uploads     *storage.UploadManager
	Embedder    embedding.Embedder
	Collection  vector.Collection
	Pipeline    *pipeline.Pipeline
	TestAgent   *agent.TestCaseAgent
	ScriptAgent *agent.ScriptAgent
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Collection != nil {
		_ = c.Collection.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	uploads, err := storage.NewUploadManager(store, cfg.Storage.UploadDir,
		cfg.Upload.MaxDocuments, cfg.Upload.MaxFileSize, cfg.Upload.AllowedExtensions(), logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize uploads: %w", err)
	}

	var embedder embedding.Embedder
	if cfg.Embedding.BaseURL == "mock" {
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
		logger.Warn("using mock embedder; retrieval quality will be poor")
	} else {
		embedder = embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			BaseURL:    cfg.Embedding.BaseURL,
			APIKeyEnv:  cfg.Embedding.APIKeyEnv,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			CacheSize:  cfg.Embedding.CacheSize,
		})
	}

	collection, err := vector.NewMemoryCollection(cfg.Storage.CollectionName, cfg.Embedding.Dimensions, cfg.Storage.CollectionPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize collection: %w", err)
	}
	if err := collection.Load(cfg.Storage.CollectionPath); err != nil {
		logger.Warn("collection load skipped", zap.String("path", cfg.Storage.CollectionPath), zap.Error(err))
	}
	logger.Info("collection initialized",
		zap.String("name", cfg.Storage.CollectionName),
		zap.Int("chunks", collection.Count()))

	idx := knowledge.NewIndex(collection, embedder, logger)
	ch, err := chunker.NewChunker(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("invalid chunking config: %w", err)
	}
	pl := pipeline.New(parser.NewParser(), ch, idx, logger)

	// Generation is optional: without an API key the server still serves
	// retrieval, and the generation endpoints respond 503.
	var testAgent *agent.TestCaseAgent
	var scriptAgent *agent.ScriptAgent
	genClient, err := agent.NewClient(agent.ClientConfig{
		BaseURL:     cfg.Generation.BaseURL,
		APIKeyEnv:   cfg.Generation.APIKeyEnv,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		MaxRetries:  cfg.Generation.MaxRetries,
	}, logger)
	if err != nil {
		logger.Warn("generation disabled", zap.Error(err))
	} else {
		testAgent = agent.NewTestCaseAgent(genClient, logger)
		scriptAgent = agent.NewScriptAgent(genClient, logger)
	}

	return &Components{
		Store:       store,
		Uploads:     uploads,
		Embedder:    embedder,
		Collection:  collection,
		Pipeline:    pl,
		TestAgent:   testAgent,
		ScriptAgent: scriptAgent,
	}, nil
}

func printUsage() {
	fmt.Println(`shiken - grounded QA knowledge base and test generation service

Usage:
  shiken server [flags]           Start the HTTP server
  shiken build [flags] [file...]  Build the knowledge base (from files or registered uploads)
  shiken query [flags] <text>     Retrieve context for a query
  shiken stats [flags]            Show knowledge base statistics
  shiken version                  Show version
  shiken help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/shiken/config.yaml)
  --debug            Enable debug logging

Build Flags:
  --config string    Config file path
  --clear            Clear the existing collection before building (default: true)

Query Flags:
  --config string    Config file path
  --top-k int        Number of results (default from config)
  --output string    Output format: text or json (default: text)

Stats Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)

Examples:
  shiken server
  shiken build docs/spec.md assets/checkout.html
  shiken query "discount code validation"
  shiken stats --output json`)
}

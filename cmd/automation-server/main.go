// Pokeclicker Automation MCP Server
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rsned/pokeclicker-automation-server/internal/automation/config"
	"github.com/rsned/pokeclicker-automation-server/internal/automation/db"
	"github.com/rsned/pokeclicker-automation-server/internal/automation/engine"
	"github.com/rsned/pokeclicker-automation-server/internal/automation/mcp"
	"github.com/rsned/pokeclicker-automation-server/internal/automation/sync"
)

func main() {
	// Parse flags
	dbPath := flag.String("db", "data/automation/automation.db", "Path to SQLite database")
	configPath := flag.String("config", "", "Path to YAML settings file")
	importData := flag.String("import-data", "", "Import game data (routes, dungeons) from JSON file")
	importSave := flag.String("import-save", "", "Import player save from JSON file")
	autoCure := flag.Bool("autocure", false, "Start the pokérus cure loop on startup")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Create context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down...")
		cancel()
	}()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Open database
	database, err := db.OpenAndInit(ctx, *dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	// Handle import commands
	if *importData != "" || *importSave != "" {
		syncer := sync.NewSyncer(database)

		if *importData != "" {
			logger.Info("importing game data", "file", *importData)
			result, err := syncer.ImportGameDataFromFile(ctx, *importData)
			if err != nil {
				logger.Error("failed to import game data", "error", err)
				os.Exit(1)
			}
			logger.Info("game data imported successfully", "routes", result.Routes, "dungeons", result.Dungeons)
		}

		if *importSave != "" {
			logger.Info("importing save", "file", *importSave)
			result, err := syncer.ImportSaveFromFile(ctx, *importSave)
			if err != nil {
				logger.Error("failed to import save", "error", err)
				os.Exit(1)
			}
			logger.Info("save imported successfully", "party", result.Party, "highest_region", result.HighestRegion)
		}

		// If only doing imports, exit
		if flag.NArg() == 0 && !*autoCure {
			return
		}
	}

	// Create engine and server
	eng, err := engine.New(database, cfg, nil, logger)
	if err != nil {
		logger.Error("failed to create engine", "error", err)
		os.Exit(1)
	}
	defer eng.Shutdown()

	if err := eng.Load(ctx); err != nil {
		logger.Error("failed to load game model", "error", err)
		os.Exit(1)
	}

	if *autoCure {
		if _, err := eng.CureStart(ctx); err != nil {
			logger.Warn("could not start the cure loop", "error", err)
		}
	}

	server := mcp.NewServer(eng, logger)

	// Run MCP server
	logger.Info("starting MCP server", "db", *dbPath)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, "server stopped")
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/climatewatch/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file (required)")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		force      = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun     = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Check if YAML file exists
	if _, err := os.Stat(*yamlFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: YAML file does not exist: %s\n", *yamlFile)
		os.Exit(1)
	}

	// Check if SQLite file already exists
	if _, err := os.Stat(*sqliteFile); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: SQLite file already exists: %s\n", *sqliteFile)
		fmt.Fprintf(os.Stderr, "Use -force to overwrite or choose a different filename\n")
		os.Exit(1)
	}

	fmt.Printf("Converting YAML configuration to SQLite...\n")
	fmt.Printf("  Source: %s\n", *yamlFile)
	fmt.Printf("  Target: %s\n", *sqliteFile)

	if *dryRun {
		fmt.Println("DRY RUN - No changes will be made")
	}

	// Load YAML configuration
	fmt.Printf("Loading YAML configuration...\n")
	configData, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("  Loaded upstream %s and %d room overrides\n", configData.Upstream.Driver, len(configData.Rooms))

	if *dryRun {
		printConfigSummary(configData)
		fmt.Println("DRY RUN complete - no database created")
		return
	}

	// Remove existing SQLite file if force is specified
	if *force {
		if err := os.Remove(*sqliteFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error removing existing SQLite file: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Loading configuration into SQLite database...\n")
	if err := loadConfigIntoSQLite(*sqliteFile, configData); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration into SQLite: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Conversion completed successfully!\n")
	fmt.Printf("You can now use the SQLite backend with: -config-backend sqlite -config %s\n", *sqliteFile)
}

func loadConfigIntoSQLite(dbPath string, configData *config.ConfigData) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// The provider creates its schema on open
	sqliteProvider, err := config.NewSQLiteProvider(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create SQLite provider: %w", err)
	}
	defer sqliteProvider.Close()

	if err := sqliteProvider.SaveConfig(configData); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("  Configuration successfully inserted into database\n")
	return nil
}

func printConfigSummary(configData *config.ConfigData) {
	fmt.Println("\nConfiguration Summary:")
	fmt.Printf("Upstream: %s %s/%s\n", configData.Upstream.Driver, configData.Upstream.Server, configData.Upstream.Database)
	fmt.Printf("Snapshot root: %s\n", configData.Cache.Root)
	fmt.Printf("Memo TTL: %s\n", configData.Cache.MemoTTL)
	fmt.Printf("REST server: %s:%d\n", configData.RESTServer.ListenAddr, configData.RESTServer.Port)

	fmt.Printf("\nRooms (%d):\n", len(configData.Rooms))
	for _, room := range configData.Rooms {
		fmt.Printf("  - %s -> %s\n", room.Name, room.Table)
	}
}

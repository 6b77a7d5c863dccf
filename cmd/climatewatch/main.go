package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chrissnell/climatewatch/internal/app"
	"github.com/chrissnell/climatewatch/internal/log"
	"github.com/chrissnell/climatewatch/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source:\n\t\t\t  YAML: config.yaml\n\t\t\t  SQLite: config.db\n\t\t\t  Use 'config-convert' tool to convert YAML→SQLite")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("climatewatch %s\n", version)
		os.Exit(0)
	}

	// Load configuration
	filename, _ := filepath.Abs(*cfgFile)
	cfgData, err := config.Load(filename, *cfgBackend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading config file. Did you pass the -config flag? Run with -h for help: %v\n", err)
		os.Exit(1)
	}

	// Set up logging
	err = log.InitWithFile(*debug, log.FileConfig{
		Path:       cfgData.Log.File,
		MaxSizeMB:  cfgData.Log.MaxSizeMB,
		MaxBackups: cfgData.Log.MaxBackups,
		MaxAgeDays: cfgData.Log.MaxAgeDays,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Create and run the application
	application := app.New(cfgData, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/chrissnell/climatewatch/internal/app"
	"github.com/chrissnell/climatewatch/internal/calendar"
	"github.com/chrissnell/climatewatch/internal/log"
	"github.com/chrissnell/climatewatch/internal/retrieval"
	"github.com/chrissnell/climatewatch/internal/rooms"
	"github.com/chrissnell/climatewatch/pkg/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	cfgBackend string
	debug      bool
	roomName   string
	redownload bool
)

var rootCmd = &cobra.Command{
	Use:   "climatewatch-cli",
	Short: "Query plant climate sensor data from the command line",
	Long: `climatewatch-cli reads the same upstream database and snapshot archive as the
climatewatch server. Pass one date for a single day or two dates for a range.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file or SQLite config database")
	rootCmd.PersistentFlags().StringVar(&cfgBackend, "config-backend", "yaml", "configuration backend: yaml or sqlite")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "turn on debugging output")
	rootCmd.PersistentFlags().StringVar(&roomName, "room", rooms.CBC1to8.String(), "room to query")
	rootCmd.PersistentFlags().BoolVar(&redownload, "redownload", false, "bypass the snapshot archive and memo")
}

// openComponents loads the configuration and connects to the upstream database
func openComponents(ctx context.Context) (*app.Components, error) {
	if err := log.Init(debug); err != nil {
		return nil, err
	}

	filename, _ := filepath.Abs(cfgFile)
	cfg, err := config.Load(filename, cfgBackend)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return app.Build(ctx, cfg, log.GetSugaredLogger())
}

// parseQuery turns one or two date arguments into a query
func parseQuery(args []string) (retrieval.Query, error) {
	dates := make([]calendar.Date, len(args))
	for i, a := range args {
		d, err := calendar.Parse(a)
		if err != nil {
			return retrieval.Query{}, fmt.Errorf("invalid date %q: %w", a, err)
		}
		dates[i] = d
	}

	switch len(dates) {
	case 1:
		return retrieval.DayQuery(dates[0]), nil
	case 2:
		return retrieval.RangeQuery(dates[0], dates[1]), nil
	default:
		return retrieval.Query{}, fmt.Errorf("expected one or two dates, got %d", len(args))
	}
}

// runQuery parses the date arguments and room flag and opens the shared components
func runQuery(ctx context.Context, args []string) (*app.Components, rooms.Room, retrieval.Query, error) {
	q, err := parseQuery(args)
	if err != nil {
		return nil, rooms.Unsupported, retrieval.Query{}, err
	}

	c, err := openComponents(ctx)
	if err != nil {
		return nil, rooms.Unsupported, retrieval.Query{}, err
	}

	// Unknown rooms are read from the default table without column selection
	room, err := rooms.Parse(roomName)
	if errors.Is(err, rooms.ErrUnknownRoom) {
		log.Warnf("%v; passing the table through unnormalized", err)
	}
	return c, room, q, nil
}

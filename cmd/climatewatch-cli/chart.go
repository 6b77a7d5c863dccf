package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrissnell/climatewatch/internal/chart"
	"github.com/chrissnell/climatewatch/internal/rooms"
	"github.com/spf13/cobra"
)

var (
	chartID     string
	chartDir    string
	chartWidth  int
	chartHeight int
)

var chartCmd = &cobra.Command{
	Use:   "chart <date> [end-date]",
	Short: "Render the room's charts as PNG files",
	Long: `Renders every chart of the room, or only the one named with --id, and writes
each to <dir>/<room>_<chart>_<dates>.png.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runChart,
}

func init() {
	chartCmd.Flags().StringVar(&chartID, "id", "", "chart to render (climate or handler)")
	chartCmd.Flags().StringVar(&chartDir, "dir", ".", "directory to write images into")
	chartCmd.Flags().IntVar(&chartWidth, "width", chart.DefaultSize.Width, "image width in pixels")
	chartCmd.Flags().IntVar(&chartHeight, "height", chart.DefaultSize.Height, "image height in pixels")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, room, q, err := runQuery(ctx, args)
	if err != nil {
		return err
	}
	defer c.Close()

	layouts := room.Charts()
	if chartID != "" {
		layout, ok := room.Chart(chartID)
		if !ok {
			return fmt.Errorf("room %s has no chart %q", room, chartID)
		}
		layouts = []rooms.ChartLayout{layout}
	}
	if len(layouts) == 0 {
		return fmt.Errorf("room %s has no charts", room)
	}

	res, err := c.Service.GetData(ctx, q, room, redownload)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", room, err)
	}

	size := chart.Size{Width: chartWidth, Height: chartHeight}
	dates := strings.Join(args, "_")
	for _, layout := range layouts {
		png, err := chart.Render(layout, res.Frame, res.Title, size)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", layout.ID, err)
		}

		name := fmt.Sprintf("%s_%s_%s.png", strings.ReplaceAll(room.String(), " ", "_"), layout.ID, dates)
		path := filepath.Join(chartDir, name)
		if err := os.WriteFile(path, png, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/chrissnell/climatewatch/internal/table"
	"github.com/spf13/cobra"
)

var fetchCount bool

var fetchCmd = &cobra.Command{
	Use:   "fetch <date> [end-date]",
	Short: "Fetch normalized sensor data as CSV",
	Long: `Fetches one day or an inclusive range of days for a room, normalizes it and
writes the result to stdout as CSV. Past days are served from the snapshot
archive when present.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchCount, "count", false, "print only the row count")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, room, q, err := runQuery(ctx, args)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.Service.GetData(ctx, q, room, redownload)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", room, err)
	}

	if fetchCount {
		fmt.Println(res.Frame.Len())
		return nil
	}
	return writeFrame(res.Frame)
}

func writeFrame(f *table.Frame) error {
	w := csv.NewWriter(os.Stdout)
	if err := w.Write(f.Columns); err != nil {
		return err
	}

	record := make([]string, len(f.Columns))
	for _, row := range f.Rows {
		for i, cell := range row {
			record[i] = cell.String()
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/climatewatch/internal/export"
	"github.com/spf13/cobra"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export <date> [end-date]",
	Short: "Write the room's export columns to an xlsx workbook",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "directory to write the workbook into")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	book, err := export.Workbook(res.Frame, room.ExportColumns())
	if err != nil {
		return fmt.Errorf("building workbook: %w", err)
	}

	path := filepath.Join(exportDir, export.FileName(room, q))
	if err := os.WriteFile(path, book, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("Wrote %d rows to %s\n", res.Frame.Len(), path)
	return nil
}

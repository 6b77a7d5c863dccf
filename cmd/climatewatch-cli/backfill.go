package main

import (
	"fmt"

	"github.com/chrissnell/climatewatch/internal/retrieval"
	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill <start-date> <end-date>",
	Short: "Archive past days into the snapshot store",
	Long: `Downloads every past day in the inclusive range that is not yet archived and
writes its snapshot. Days already archived are left untouched and today is
skipped because it is still being recorded.`,
	Args: cobra.ExactArgs(2),
	RunE: runBackfill,
}

func init() {
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, room, q, err := runQuery(ctx, args)
	if err != nil {
		return err
	}
	defer c.Close()

	today := c.Retriever.Today()
	if !q.Start.Before(today) {
		return fmt.Errorf("nothing to archive: %s is not before today (%s)", q.Start, today)
	}

	tableName := c.Service.Table(room)
	var archived, skipped int
	for _, day := range q.Days() {
		if !day.Before(today) {
			break
		}
		exists, err := c.Snapshots.Exists(tableName, day)
		if err != nil {
			return err
		}
		if exists {
			skipped++
			continue
		}

		raw, err := c.Retriever.Fetch(ctx, retrieval.DayQuery(day), tableName, false)
		if err != nil {
			return fmt.Errorf("archiving %s: %w", day, err)
		}
		fmt.Printf("  %s  %d rows\n", day, raw.Len())
		archived++
	}

	fmt.Printf("Archived %d days of %s, %d already present\n", archived, tableName, skipped)
	return nil
}

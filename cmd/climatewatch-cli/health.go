package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health <date> [end-date]",
	Short: "Report data completeness per day",
	Long: `Prints the percentage of the expected 2880 samples present for each day of
the query, followed by their mean.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
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

	fmt.Println(res.Title)
	for i, day := range q.Days() {
		if i >= len(res.HealthList) {
			break
		}
		fmt.Printf("  %s  %6.2f%%\n", day, res.HealthList[i])
	}
	fmt.Printf("Overall: %.2f%%\n", res.Health)
	return nil
}

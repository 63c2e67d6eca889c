package arg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/pomodoro/internal/display"
)

var historyMonth string

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"h"},
	Short:   "Show completed pomodoros for a month",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
		if historyMonth != "" {
			parsed, err := time.ParseInLocation("2006-01", historyMonth, time.Local)
			if err != nil {
				return fmt.Errorf("month must look like 2024-03: %w", err)
			}
			month = parsed
		}
		return withClient(cmd, func(ctx context.Context, c Controller) error {
			daily, err := c.History(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), display.Calendar(month.Year(), month.Month(), daily, now))
			return nil
		})
	},
}

var resetStatsYes bool

var resetStatsCmd = &cobra.Command{
	Use:   "reset-stats",
	Short: "Clear counters, cumulative times and all daily history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetStatsYes {
			return errors.New("refusing to clear statistics without --yes")
		}
		return withClient(cmd, func(ctx context.Context, c Controller) error {
			if err := c.ResetStats(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Statistics cleared")
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyMonth, "month", "", "month to show as YYYY-MM (default current)")
	resetStatsCmd.Flags().BoolVar(&resetStatsYes, "yes", false, "confirm clearing all statistics")
	rootCmd.AddCommand(historyCmd, resetStatsCmd)
}

package arg

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var startWork, startBreak time.Duration

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start or resume the countdown",
	Long: `Start or resume the countdown. --work and --break replace the stored
durations before starting. A session that has not counted down yet starts
at the new length; a partly elapsed one keeps its remaining time, capped
at the new length.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		work, err := seconds(startWork)
		if err != nil {
			return err
		}
		brk, err := seconds(startBreak)
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c Controller) error {
			if err := c.Start(ctx, work, brk); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Timer started")
			return nil
		})
	},
}

var pauseCmd = &cobra.Command{
	Use:     "pause",
	Aliases: []string{"p"},
	Short:   "Pause the countdown",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c Controller) error {
			if err := c.Pause(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Timer paused")
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Stop the countdown and refill the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c Controller) error {
			if err := c.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Timer reset")
			return nil
		})
	},
}

var toggleCmd = &cobra.Command{
	Use:       "toggle <work|break>",
	Short:     "Switch to a work or break session",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"work", "break"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var isWork bool
		switch args[0] {
		case "work":
			isWork = true
		case "break":
		default:
			return fmt.Errorf("session must be work or break, got %q", args[0])
		}
		return withClient(cmd, func(ctx context.Context, c Controller) error {
			if err := c.ToggleSession(ctx, isWork); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to %s session\n", args[0])
			return nil
		})
	},
}

var settingsWork, settingsBreak time.Duration

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Change the work and break durations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		work, err := seconds(settingsWork)
		if err != nil {
			return err
		}
		brk, err := seconds(settingsBreak)
		if err != nil {
			return err
		}
		if work == 0 && brk == 0 {
			return fmt.Errorf("at least one of --work or --break is required")
		}
		return withClient(cmd, func(ctx context.Context, c Controller) error {
			if err := c.UpdateSettings(ctx, work, brk); err != nil {
				return err
			}
			st, err := c.State(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Durations set to %s work, %s break\n",
				time.Duration(st.WorkDuration)*time.Second, time.Duration(st.BreakDuration)*time.Second)
			return nil
		})
	},
}

func init() {
	startCmd.Flags().DurationVar(&startWork, "work", 0, "work duration, e.g. 25m")
	startCmd.Flags().DurationVar(&startBreak, "break", 0, "break duration, e.g. 5m")
	settingsCmd.Flags().DurationVar(&settingsWork, "work", 0, "work duration, e.g. 25m")
	settingsCmd.Flags().DurationVar(&settingsBreak, "break", 0, "break duration, e.g. 5m")

	rootCmd.AddCommand(startCmd, pauseCmd, resetCmd, toggleCmd, settingsCmd)
}

package arg

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/pomodoro/internal/display"
	"github.com/SoarinFerret/pomodoro/internal/ipc"
	"github.com/SoarinFerret/pomodoro/internal/session"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the countdown and completion signals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchInterval <= 0 {
			return fmt.Errorf("interval must be positive")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := dial(systemBus)
		if err != nil {
			return fmt.Errorf("cannot reach pomodorod: %w", err)
		}
		defer c.Close()

		completed, err := c.Subscribe(ctx)
		if err != nil {
			return err
		}
		return watch(ctx, cmd, c, completed)
	},
}

func watch(ctx context.Context, cmd *cobra.Command, c Controller, completed <-chan ipc.Completed) error {
	out := cmd.OutOrStdout()
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	var last session.TimerState
	first := true
	poll := func() error {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()
		st, err := c.State(callCtx)
		if err != nil {
			return err
		}
		if first || changed(last, st) {
			fmt.Fprintln(out, display.Line(st))
		}
		last, first = st, false
		return nil
	}

	if err := poll(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case done, ok := <-completed:
			if !ok {
				completed = nil
				continue
			}
			fmt.Fprintf(out, "%s (%d today)\n", done.Message, done.TotalToday)
		case <-ticker.C:
			if err := poll(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func changed(a, b session.TimerState) bool {
	return a.IsRunning != b.IsRunning || a.IsWorkSession != b.IsWorkSession || a.TimeRemaining != b.TimeRemaining
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 500*time.Millisecond, "polling interval")
	rootCmd.AddCommand(watchCmd)
}

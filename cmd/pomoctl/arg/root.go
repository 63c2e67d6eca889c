package arg

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/pomodoro/internal/ipc"
	"github.com/SoarinFerret/pomodoro/internal/session"
)

const callTimeout = 5 * time.Second

// Controller is the subset of the daemon API the commands use.
type Controller interface {
	State(ctx context.Context) (session.TimerState, error)
	History(ctx context.Context) (session.DailyCompletions, error)
	Start(ctx context.Context, work, brk int) error
	Pause(ctx context.Context) error
	Reset(ctx context.Context) error
	UpdateSettings(ctx context.Context, work, brk int) error
	ToggleSession(ctx context.Context, isWork bool) error
	ResetStats(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan ipc.Completed, error)
	Close() error
}

var dial = func(system bool) (Controller, error) {
	c, err := ipc.Dial(system)
	if err != nil {
		return nil, err
	}
	return c, nil
}

var systemBus bool

var rootCmd = &cobra.Command{
	Use:   "pomoctl",
	Short: "pomoctl is the command line tool for pomodorod",
	Long: `pomoctl talks to the pomodorod timer over D-Bus.
Use it to start and pause sessions, change durations and browse history.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withClient dials the daemon and runs fn under the per-call timeout.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c Controller) error) error {
	c, err := dial(systemBus)
	if err != nil {
		return fmt.Errorf("cannot reach pomodorod: %w", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
	defer cancel()
	return fn(ctx, c)
}

// seconds converts a duration flag to whole seconds, 0 meaning unset.
func seconds(d time.Duration) (int, error) {
	if d < 0 {
		return 0, fmt.Errorf("duration %s must not be negative", d)
	}
	if d > 0 && d < time.Second {
		return 0, fmt.Errorf("duration %s is shorter than a second", d)
	}
	return int(d / time.Second), nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&systemBus, "system", false, "talk to a daemon on the system bus")
}

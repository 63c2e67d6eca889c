package arg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/SoarinFerret/pomodoro/internal/display"
)

type statusView struct {
	Session          string `json:"session" yaml:"session"`
	Running          bool   `json:"running" yaml:"running"`
	Remaining        string `json:"remaining" yaml:"remaining"`
	RemainingSeconds int    `json:"remainingSeconds" yaml:"remaining_seconds"`
	WorkDuration     int    `json:"workDuration" yaml:"work_duration"`
	BreakDuration    int    `json:"breakDuration" yaml:"break_duration"`
	SessionsDone     int    `json:"sessionsDone" yaml:"sessions_done"`
	TotalWorkTime    int    `json:"totalWorkTime" yaml:"total_work_time"`
	TotalBreakTime   int    `json:"totalBreakTime" yaml:"total_break_time"`
	Today            int    `json:"today" yaml:"today"`
}

var statusOutput string

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"s"},
	Short:   "Show the current timer state",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c Controller) error {
			st, err := c.State(ctx)
			if err != nil {
				return err
			}
			daily, err := c.History(ctx)
			if err != nil {
				return err
			}
			today := daily.Today(time.Now())

			view := statusView{
				Session:          display.Label(st.IsWorkSession),
				Running:          st.IsRunning,
				Remaining:        display.Clock(st.TimeRemaining),
				RemainingSeconds: st.TimeRemaining,
				WorkDuration:     st.WorkDuration,
				BreakDuration:    st.BreakDuration,
				SessionsDone:     st.SessionsDone,
				TotalWorkTime:    st.TotalWorkTime,
				TotalBreakTime:   st.TotalBreakTime,
				Today:            today,
			}

			out := cmd.OutOrStdout()
			switch statusOutput {
			case "json":
				data, err := json.MarshalIndent(view, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case "yaml":
				data, err := yaml.Marshal(view)
				if err != nil {
					return err
				}
				fmt.Fprint(out, string(data))
			case "text", "":
				fmt.Fprintln(out, display.Status(st))
				fmt.Fprintf(out, "Today: %d\n", today)
			default:
				return fmt.Errorf("unknown output format %q", statusOutput)
			}
			return nil
		})
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(statusCmd)
}

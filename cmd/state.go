package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	scheduleadapter "github.com/bnema/duty-agent/internal/adapters/render/schedule"
	"github.com/spf13/cobra"
)

func newStateCmd(dataDir *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the persisted schedule pool and fairness queues",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp(*dataDir)
			if err != nil {
				return err
			}

			state, err := app.stateRepo.Load(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				encoded, err := json.MarshalIndent(struct {
					Pool     any `json:"schedule_pool"`
					Debt     any `json:"debt_list"`
					Credit   any `json:"credit_list"`
					NextNote any `json:"next_run_note"`
				}{state.Pool, state.Fairness.DebtIDs, state.Fairness.CreditIDs, state.Fairness.MemoryNote}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return nil
			}

			output, err := scheduleadapter.Render(state, scheduleadapter.RenderOptions{Now: time.Now()})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw state document instead of the rendered view")

	return cmd
}

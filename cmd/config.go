package cmd

import (
	"fmt"

	settingsadapter "github.com/bnema/duty-agent/internal/adapters/settings"
	"github.com/spf13/cobra"
)

func newConfigCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the settings file",
	}

	cmd.AddCommand(
		newConfigPathCmd(dataDir),
		newConfigSetCmd(dataDir),
		newConfigShowCmd(dataDir),
	)

	return cmd
}

func newConfigPathCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := settingsadapter.NewStore(*dataDir)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), store.Path())
			return err
		},
	}
}

func newConfigSetCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one settings key (dotted path, e.g. llm.base_url)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := settingsadapter.NewStore(*dataDir)
			if err != nil {
				return err
			}
			if err := store.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated.\n", args[0])
			return nil
		},
	}
}

func newConfigShowCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings with defaults applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := settingsadapter.NewStore(*dataDir)
			if err != nil {
				return err
			}
			loaded, err := store.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "llm.base_url = %q\n", loaded.LLM.BaseURL)
			fmt.Fprintf(out, "llm.model = %q\n", loaded.LLM.Model)
			fmt.Fprintf(out, "llm.stream = %t\n", loaded.LLM.Stream)
			fmt.Fprintf(out, "llm.temperature = %g\n", loaded.LLM.Temperature)
			fmt.Fprintf(out, "llm.request_timeout_seconds = %d\n", int(loaded.LLM.RequestTimeout.Seconds()))
			fmt.Fprintf(out, "llm.retry_max = %d\n", loaded.LLM.RetryMax)
			fmt.Fprintf(out, "llm.repair_max = %d\n", loaded.LLM.RepairMax)
			fmt.Fprintf(out, "scheduling.per_day = %d\n", loaded.Scheduling.PerDay)
			fmt.Fprintf(out, "scheduling.area_names = %v\n", loaded.Scheduling.AreaNames)
			fmt.Fprintf(out, "scheduling.auto_run_mode = %q\n", loaded.Scheduling.AutoRunMode)
			fmt.Fprintf(out, "scheduling.skip_weekends = %t\n", loaded.Scheduling.SkipWeekends)
			fmt.Fprintf(out, "scheduling.duty_rule = %q\n", loaded.Scheduling.DutyRule)
			return nil
		},
	}
}

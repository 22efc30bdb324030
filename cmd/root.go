package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const dataDirEnvVar = "DUTY_AGENT_DATA_DIR"

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var dataDir string

	rootCmd := &cobra.Command{
		Use:           "duty",
		Short:         "Duty-Agent: LLM-assisted duty scheduling",
		Long:          "duty delegates duty-roster assignment to an OpenAI-compatible model while enforcing deterministic fairness bookkeeping: anonymized prompts, calendar grounding, debt/credit reconciliation, and idempotent schedule-pool merging.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "directory holding settings.toml, roster.csv, and run state")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(&dataDir),
		newStateCmd(&dataDir),
		newConfigCmd(&dataDir),
	)

	return rootCmd
}

func defaultDataDir() string {
	if dir := os.Getenv(dataDirEnvVar); dir != "" {
		return dir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".duty-agent")
}

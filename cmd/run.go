package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bnema/duty-agent/internal/adapters/secrets/envkey"
	"github.com/bnema/duty-agent/internal/application"
	"github.com/bnema/duty-agent/internal/domain"
	"github.com/bnema/duty-agent/internal/ports"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// progressLinePrefix marks machine-readable progress lines the host tails
// while the run is in flight.
const progressLinePrefix = "__DUTY_PROGRESS__:"

func newRunCmd(dataDir *string) *cobra.Command {
	var inputPath string
	var noUI bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one scheduling run and persist the result",
		Long:  "run reads the run request from ipc_input.json, calls the configured model, merges the returned schedule into the pool, and writes ipc_result.json. The API key is read from stdin (piped) or the " + envkey.EnvVar + " environment variable, never from settings.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp(*dataDir)
			if err != nil {
				return err
			}

			resolvedInput := inputPath
			if resolvedInput == "" {
				resolvedInput = filepath.Join(*dataDir, inputFile)
			}

			req, err := loadRunRequest(resolvedInput)
			if err != nil {
				return reportRunError(cmd, app, err)
			}

			apiKey, err := app.keySource.Read(cmd.Context())
			if err != nil {
				return reportRunError(cmd, app, err)
			}

			scheduler := application.NewScheduler(
				app.rosterSource,
				app.stateRepo,
				app.chatFactory(apiKey),
				app.clock,
				app.runDefaults(),
			)

			var result ports.RunResult
			runErr := func() error {
				if noUI || !isTerminal(cmd.OutOrStdout()) {
					result, err = scheduler.Run(cmd.Context(), req, lineProgress(cmd.OutOrStdout()))
					return err
				}
				return runWithSpinner(cmd, func(progress ports.Progress) error {
					result, err = scheduler.Run(cmd.Context(), req, progress)
					return err
				})
			}()
			if runErr != nil {
				return reportRunError(cmd, app, runErr)
			}

			if err := app.resultWriter.Write(cmd.Context(), result); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run %s completed.\n", result.RunID)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to the run request document (default <data-dir>/ipc_input.json)")
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "emit machine-readable progress lines instead of the spinner")

	return cmd
}

func loadRunRequest(path string) (domain.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// A run without a request document is legal; everything comes
			// from settings then.
			return domain.RunRequest{ApplyMode: domain.ApplyModeAppend}, nil
		}
		return domain.RunRequest{}, fmt.Errorf("read run request: %w", err)
	}

	return application.ParseRunRequest(data)
}

// reportRunError writes the error result document for the host before the
// process exits non-zero. A failing result write must not mask the run
// error.
func reportRunError(cmd *cobra.Command, app *app, runErr error) error {
	result := ports.RunResult{
		RunID:   uuid.NewString(),
		Status:  "error",
		Message: runErr.Error(),
	}
	if writeErr := app.resultWriter.Write(cmd.Context(), result); writeErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "write error result: %v\n", writeErr)
	}
	return runErr
}

// lineProgress emits one JSON object per progress event, prefixed so the
// host can tell them apart from ordinary output.
func lineProgress(output io.Writer) ports.Progress {
	return func(phase, message, chunk string) {
		if phase == "" {
			return
		}

		payload := map[string]string{"phase": phase}
		if message != "" {
			payload["message"] = message
		}
		if chunk != "" {
			payload["chunk"] = chunk
		}

		encoded, err := json.Marshal(payload)
		if err != nil {
			return
		}
		fmt.Fprintf(output, "%s%s\n", progressLinePrefix, encoded)
	}
}

func isTerminal(output any) bool {
	file, ok := output.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

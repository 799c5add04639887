// Package run implements the run command: one transmit-power sweep
// executed against the external simulator.
package run

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/simsweep/cmd/common"
	"github.com/jonesrussell/simsweep/internal/pipeline"
	"github.com/jonesrussell/simsweep/internal/report"
	"github.com/jonesrussell/simsweep/internal/runner"
)

// Command returns the run command for use in the root command.
func Command() *cobra.Command {
	var (
		tx       int
		reps     int
		workers  int
		skipExec bool
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run simulator repetitions for one transmit power",
		Long: `Executes the configured simulator once per repetition for a single
transmit power value, retries failed repetitions, and summarizes the
resulting scalar artifacts.

With --skip-exec no simulator process is started; pre-existing artifacts
in the result directory are summarized instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			pipe := pipeline.New(deps.Logger, nil)
			orch := runner.New(deps.Config.Simulator, runner.Options{
				TxPowerDBm:  tx,
				Repetitions: reps,
				Workers:     workers,
				SkipExec:    skipExec,
				ResultDir:   outDir,
			}, pipe, deps.Logger)

			status, res, err := orch.Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("run sweep: %w", err)
			}

			if len(res.Rows) > 0 {
				if err := pipe.WriteSummaries(orch.ResultDir(), res); err != nil {
					return fmt.Errorf("write summaries: %w", err)
				}
			}

			renderer := report.NewTableRenderer(os.Stdout)
			renderer.RenderStatus(status)
			renderer.RenderPowerRows(res.Rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&tx, "tx", 0, "transmit power in dBm to sweep (required)")
	cmd.Flags().IntVar(&reps, "reps", 1, "number of repetitions")
	cmd.Flags().IntVar(&workers, "workers", runner.DefaultWorkers, "concurrent simulator processes")
	cmd.Flags().BoolVar(&skipExec, "skip-exec", false, "skip simulator execution, only summarize existing artifacts")
	cmd.Flags().StringVar(&outDir, "out", "", "result directory (default <results>/<config>/Pot<tx>)")
	_ = cmd.MarkFlagRequired("tx")

	return cmd
}

// Package compare implements the compare command: cross-scenario
// comparison of previously analyzed result sets.
package compare

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/simsweep/cmd/common"
	"github.com/jonesrussell/simsweep/internal/compare"
	"github.com/jonesrussell/simsweep/internal/logger"
	"github.com/jonesrussell/simsweep/internal/metrics"
	"github.com/jonesrussell/simsweep/internal/report"
)

// WorkbookName is the comparison workbook written into the output
// directory.
const WorkbookName = "comparison.xlsx"

// comparedMetrics are rendered as comparison tables, sheets and charts.
// Energy renders only for scenarios whose summaries carry annotations.
var comparedMetrics = []string{
	metrics.MetricThroughput,
	metrics.MetricDelay,
	metrics.MetricProcSum,
	report.MetricEnergy,
	report.MetricEfficiency,
}

// Command returns the compare command for use in the root command.
func Command() *cobra.Command {
	var (
		resultsRoot string
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "compare <scenario>...",
		Short: "Compare analyzed scenarios against a baseline",
		Long: `Merges the per-power summaries of previously analyzed scenarios into
comparison tables, a workbook and charts. For each scenario id the most
recently modified matching result directory under the results root is
used. The first scenario is the baseline for the energy savings table.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			if resultsRoot == "" {
				resultsRoot = deps.Config.Simulator.ResultsDir
			}
			if outDir == "" {
				outDir = resultsRoot
			}
			return runComparison(deps.Logger, resultsRoot, outDir, args)
		},
	}

	cmd.Flags().StringVar(&resultsRoot, "results-root", "", "directory holding scenario result sets (default: configured results dir)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default: the results root)")

	return cmd
}

func runComparison(log logger.Logger, root, outDir string, scenarios []string) error {
	table, err := compare.New(root, log).Load(scenarios)
	if err != nil {
		return fmt.Errorf("load scenarios: %w", err)
	}

	renderer := report.NewTableRenderer(os.Stdout)
	workbook := report.NewWorkbook()
	for _, metric := range comparedMetrics {
		renderer.RenderComparison(table, metric)
		if err := workbook.AddComparisonSheet(table, metric); err != nil {
			return err
		}
	}
	renderer.RenderSavings(table)
	if err := workbook.AddSavingsSheet(table); err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := workbook.Save(filepath.Join(outDir, WorkbookName)); err != nil {
		return err
	}

	chartDir := filepath.Join(outDir, "charts")
	if err := os.MkdirAll(chartDir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	for _, metric := range comparedMetrics {
		path := filepath.Join(chartDir, "comparison_"+metric+".png")
		if err := report.MetricChart(path, table, metric); err != nil {
			log.Warn("skipping chart", logger.String("metric", metric), logger.Error(err))
		}
	}
	if points := table.CombinedPoints(); len(points) > 0 {
		path := filepath.Join(chartDir, "energy_vs_throughput.png")
		if err := report.EnergyThroughputChart(path, points); err != nil {
			log.Warn("skipping chart", logger.String("chart", "energy_vs_throughput"), logger.Error(err))
		}
	}
	return nil
}

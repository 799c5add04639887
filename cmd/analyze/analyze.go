// Package analyze implements the analyze command: the standalone metrics
// pipeline over already-produced scalar artifacts.
package analyze

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/simsweep/cmd/common"
	"github.com/jonesrussell/simsweep/internal/compare"
	"github.com/jonesrussell/simsweep/internal/energy"
	"github.com/jonesrussell/simsweep/internal/logger"
	"github.com/jonesrussell/simsweep/internal/pipeline"
	"github.com/jonesrussell/simsweep/internal/report"
	"github.com/jonesrussell/simsweep/internal/scalar"
)

// WorkbookName is the analysis workbook written into the output directory.
const WorkbookName = "analysis.xlsx"

// Command returns the analyze command for use in the root command.
func Command() *cobra.Command {
	var (
		baseDir    string
		scenarios  []string
		outDir     string
		energyPath string
		metricIDs  []string
		withCharts bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize scalar artifacts without running the simulator",
		Long: `Parses the scalar artifacts under a base directory, aggregates them by
transmit power and writes summary tables, JSON documents, an Excel
workbook and charts.

With --scenarios each named subdirectory of the base directory is
processed as its own scenario; otherwise the base directory itself is
treated as a single scenario.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			var energyCfg *energy.Config
			if energyPath != "" {
				cfg, err := energy.LoadConfig(energyPath)
				if err != nil {
					return fmt.Errorf("load energy config: %w", err)
				}
				energyCfg = &cfg
			}

			selected, err := selectMetrics(metricIDs, energyCfg != nil)
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = baseDir
			}
			return runAnalysis(deps.Logger, analysis{
				baseDir:    baseDir,
				scenarios:  scenarios,
				outDir:     outDir,
				energyCfg:  energyCfg,
				metricIDs:  selected,
				withCharts: withCharts,
			})
		},
	}

	cmd.Flags().StringVar(&baseDir, "base", "", "directory holding scalar artifacts (required)")
	cmd.Flags().StringSliceVar(&scenarios, "scenarios", nil, "scenario subdirectories to analyze (default: the base directory itself)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default: the base directory)")
	cmd.Flags().StringVar(&energyPath, "energy-config", "", "YAML energy model configuration; enables the energy columns")
	cmd.Flags().StringSliceVar(&metricIDs, "metrics", nil, "metrics to render (default: all)")
	cmd.Flags().BoolVar(&withCharts, "charts", true, "render PNG charts")
	_ = cmd.MarkFlagRequired("base")

	return cmd
}

type analysis struct {
	baseDir    string
	scenarios  []string
	outDir     string
	energyCfg  *energy.Config
	metricIDs  []string
	withCharts bool
}

// selectMetrics validates the requested metric identifiers, defaulting to
// every known metric (energy-derived ones only when the model is active).
func selectMetrics(ids []string, withEnergy bool) ([]string, error) {
	if len(ids) == 0 {
		return report.AllMetrics(withEnergy), nil
	}
	for _, id := range ids {
		if !report.KnownMetric(id) {
			return nil, fmt.Errorf("unknown metric %q (known: %v)", id, report.AllMetrics(true))
		}
	}
	return ids, nil
}

func runAnalysis(log logger.Logger, a analysis) error {
	pipe := pipeline.New(log, a.energyCfg)

	type scenarioResult struct {
		name string
		res  pipeline.Result
	}
	var results []scenarioResult

	names := a.scenarios
	if len(names) == 0 {
		// The base directory is the single, anonymous scenario.
		names = []string{""}
	}
	for _, name := range names {
		dir := a.baseDir
		scenario := filepath.Base(a.baseDir)
		if name != "" {
			dir = filepath.Join(a.baseDir, name)
			scenario = name
		}

		res, err := pipe.ProcessDir(dir, scenario, scalar.PowerUnknown)
		if err != nil {
			log.Warn("skipping scenario", logger.String("dir", dir), logger.Error(err))
			continue
		}

		sumDir := a.outDir
		if name != "" {
			sumDir = filepath.Join(a.outDir, name)
		}
		if err := pipe.WriteSummaries(sumDir, res); err != nil {
			return err
		}
		results = append(results, scenarioResult{name: scenario, res: res})
	}
	if len(results) == 0 {
		return fmt.Errorf("%w: no scenario under %s produced rows", pipeline.ErrNoArtifacts, a.baseDir)
	}

	renderer := report.NewTableRenderer(os.Stdout)
	workbook := report.NewWorkbook()
	rowsByScenario := make(map[string][]pipeline.PowerRow, len(results))
	var order []string
	for _, sr := range results {
		renderer.RenderPowerRows(sr.res.Rows)
		if err := workbook.AddRawSheet(sr.name, sr.res.Files); err != nil {
			return err
		}
		if err := workbook.AddSummarySheet(sr.name, sr.res.Rows); err != nil {
			return err
		}
		rowsByScenario[sr.name] = sr.res.Rows
		order = append(order, sr.name)
	}

	table := compare.Merge(rowsByScenario, order)
	if len(order) > 1 {
		table.Baseline = order[0]
		for _, metric := range a.metricIDs {
			renderer.RenderComparison(table, metric)
			if err := workbook.AddComparisonSheet(table, metric); err != nil {
				return err
			}
		}
		renderer.RenderSavings(table)
		if err := workbook.AddSavingsSheet(table); err != nil {
			return err
		}
	}

	if err := workbook.Save(filepath.Join(a.outDir, WorkbookName)); err != nil {
		return err
	}

	if a.withCharts {
		if err := renderCharts(log, a.outDir, table, a.metricIDs, a.energyCfg != nil); err != nil {
			return err
		}
	}
	return nil
}

// renderCharts writes one chart per selected metric plus, with the energy
// model active, the energy-vs-throughput scatter. A metric without data is
// skipped with a warning.
func renderCharts(log logger.Logger, outDir string, table compare.Table, metricIDs []string, withEnergy bool) error {
	chartDir := filepath.Join(outDir, "charts")
	if err := os.MkdirAll(chartDir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	for _, metric := range metricIDs {
		path := filepath.Join(chartDir, metric+".png")
		if err := report.MetricChart(path, table, metric); err != nil {
			log.Warn("skipping chart", logger.String("metric", metric), logger.Error(err))
		}
	}

	if withEnergy {
		path := filepath.Join(chartDir, "energy_vs_throughput.png")
		if err := report.EnergyThroughputChart(path, table.CombinedPoints()); err != nil {
			log.Warn("skipping chart", logger.String("chart", "energy_vs_throughput"), logger.Error(err))
		}
	}
	return nil
}

// Package report renders analysis results for humans: terminal tables,
// Excel workbooks and PNG charts.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonesrussell/simsweep/internal/compare"
	"github.com/jonesrussell/simsweep/internal/metrics"
	"github.com/jonesrussell/simsweep/internal/pipeline"
	"github.com/jonesrussell/simsweep/internal/runner"
)

// Energy-derived metric identifiers, available once rows carry energy
// annotations.
const (
	MetricEnergy     = "energy"
	MetricEfficiency = "efficiency"
	MetricEffIndex   = "eff_index"
)

// metricLabels maps metric identifiers to human-facing column labels.
var metricLabels = map[string]string{
	metrics.MetricThroughput: "Throughput (Mbps)",
	metrics.MetricDelay:      "Delay (ms)",
	metrics.MetricProcSum:    "Proc demand sum (GOPS)",
	metrics.MetricProcMean:   "Proc demand mean (GOPS)",
	metrics.MetricActiveUEs:  "Active UEs",
	MetricEnergy:             "Energy (kWh)",
	MetricEfficiency:         "Efficiency (Mbps/W)",
	MetricEffIndex:           "Global efficiency index",
}

// AllMetrics lists the renderable metric identifiers. The energy-derived
// ones are included only when requested.
func AllMetrics(withEnergy bool) []string {
	out := []string{
		metrics.MetricThroughput,
		metrics.MetricDelay,
		metrics.MetricProcSum,
		metrics.MetricProcMean,
		metrics.MetricActiveUEs,
	}
	if withEnergy {
		out = append(out, MetricEnergy, MetricEfficiency, MetricEffIndex)
	}
	return out
}

// KnownMetric reports whether the identifier names a renderable metric.
func KnownMetric(metric string) bool {
	_, ok := metricLabels[metric]
	return ok
}

// MetricLabel returns the display label for a metric identifier, or the
// identifier itself when unknown.
func MetricLabel(metric string) string {
	if label, ok := metricLabels[metric]; ok {
		return label
	}
	return metric
}

// MetricValue extracts one metric from a summary row. ok is false when the
// underlying scalar never appeared in the artifacts, as opposed to a
// genuine zero.
func MetricValue(row pipeline.PowerRow, metric string) (float64, bool) {
	switch metric {
	case metrics.MetricThroughput:
		return row.ThroughputMbps, row.HasThroughput
	case metrics.MetricDelay:
		return row.DelayMs, row.HasDelay
	case metrics.MetricProcSum:
		return row.ProcSumGOPS, row.HasProc
	case metrics.MetricProcMean:
		return row.ProcMeanGOPS, row.HasProc
	case metrics.MetricActiveUEs:
		return row.ActiveUEs, row.HasThroughput
	case MetricEnergy:
		if row.Energy != nil {
			return row.Energy.EnergyKWh, true
		}
	case MetricEfficiency:
		if row.Energy != nil {
			return row.Energy.Efficiency, true
		}
	case MetricEffIndex:
		if row.Energy != nil {
			return row.Energy.EfficiencyIndex, true
		}
	}
	return 0, false
}

// TableRenderer writes formatted tables to a single output stream.
type TableRenderer struct {
	out io.Writer
}

// NewTableRenderer creates a renderer writing to out.
func NewTableRenderer(out io.Writer) *TableRenderer {
	return &TableRenderer{out: out}
}

func (r *TableRenderer) newWriter() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	return t
}

// RenderStatus summarizes one orchestrator invocation.
func (r *TableRenderer) RenderStatus(status *runner.Status) {
	if status == nil {
		return
	}
	t := r.newWriter()
	t.AppendHeader(table.Row{"Tx Power (dBm)", "Repetitions", "Workers", "Resolved", "Failed", "Result Dir"})
	t.AppendRow(table.Row{
		status.TxPowerDBm,
		status.Repetitions,
		status.Workers,
		status.Resolved,
		status.Failed,
		status.ResultDir,
	})
	t.Render()
}

// RenderPowerRows prints the per-power summary of one scenario, with the
// energy columns included when the rows carry annotations.
func (r *TableRenderer) RenderPowerRows(rows []pipeline.PowerRow) {
	if len(rows) == 0 {
		return
	}

	withEnergy := false
	for _, row := range rows {
		if row.Energy != nil {
			withEnergy = true
			break
		}
	}

	t := r.newWriter()
	header := table.Row{"Power (dBm)", "UEs", "Throughput (Mbps)", "Delay (ms)", "Proc (GOPS)", "Artifacts"}
	if withEnergy {
		header = append(header, "P_tot (W)", "Energy (kWh)", "Eff (Mbps/W)")
	}
	t.AppendHeader(header)

	for _, row := range rows {
		cells := table.Row{
			row.PowerDBm,
			fmt.Sprintf("%.1f", row.ActiveUEs),
			cell(row.ThroughputMbps, row.HasThroughput),
			cell(row.DelayMs, row.HasDelay),
			cell(row.ProcSumGOPS, row.HasProc),
			row.Artifacts,
		}
		if withEnergy {
			if row.Energy != nil {
				cells = append(cells,
					fmt.Sprintf("%.2f", row.Energy.PowerTotW),
					fmt.Sprintf("%.4f", row.Energy.EnergyKWh),
					fmt.Sprintf("%.3f", row.Energy.Efficiency),
				)
			} else {
				cells = append(cells, "-", "-", "-")
			}
		}
		t.AppendRow(cells)
	}
	t.Render()
}

// RenderComparison prints one metric across scenarios, one column per
// scenario and one row per power value. Missing cells render as "-".
func (r *TableRenderer) RenderComparison(cmp compare.Table, metric string) {
	if len(cmp.Powers) == 0 {
		return
	}

	t := r.newWriter()
	t.SetTitle(MetricLabel(metric))
	header := table.Row{"Power (dBm)"}
	for _, scn := range cmp.Scenarios {
		header = append(header, scn)
	}
	t.AppendHeader(header)

	for _, p := range cmp.Powers {
		row := table.Row{p}
		for _, scn := range cmp.Scenarios {
			cellRow, ok := cmp.Cells[p][scn]
			if !ok {
				row = append(row, "-")
				continue
			}
			v, present := MetricValue(cellRow, metric)
			row = append(row, cell(v, present))
		}
		t.AppendRow(row)
	}
	t.Render()
}

// RenderSavings prints the baseline-relative energy savings table. A table
// without a baseline renders nothing.
func (r *TableRenderer) RenderSavings(cmp compare.Table) {
	savings, ok := cmp.Savings()
	if !ok {
		return
	}

	t := r.newWriter()
	t.SetTitle(fmt.Sprintf("Energy savings vs %s (%%)", cmp.Baseline))
	header := table.Row{"Power (dBm)"}
	var columns []string
	for _, scn := range cmp.Scenarios {
		if scn == cmp.Baseline {
			continue
		}
		columns = append(columns, scn)
		header = append(header, scn)
	}
	t.AppendHeader(header)

	for _, p := range cmp.Powers {
		perScenario, ok := savings[p]
		if !ok {
			continue
		}
		row := table.Row{p}
		for _, scn := range columns {
			if v, ok := perScenario[scn]; ok {
				row = append(row, fmt.Sprintf("%.2f", v))
			} else {
				row = append(row, "-")
			}
		}
		t.AppendRow(row)
	}
	t.Render()
}

func cell(v float64, present bool) string {
	if !present {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

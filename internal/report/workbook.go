package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/simsweep/internal/compare"
	"github.com/jonesrussell/simsweep/internal/pipeline"
	"github.com/jonesrussell/simsweep/internal/scalar"
)

// Workbook accumulates analysis sheets and saves them as one .xlsx file.
type Workbook struct {
	f      *excelize.File
	sheets int
}

// NewWorkbook creates an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{f: excelize.NewFile()}
}

// addSheet creates a named sheet. The first one reuses the default Sheet1.
func (w *Workbook) addSheet(name string) error {
	if w.sheets == 0 {
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	} else {
		if _, err := w.f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	w.sheets++
	return nil
}

// setRow writes one row of cell values starting at column A.
func (w *Workbook) setRow(sheet string, rowIdx int, values []any) error {
	for i, v := range values {
		cellName, err := excelize.CoordinatesToCellName(i+1, rowIdx)
		if err != nil {
			return err
		}
		if err := w.f.SetCellValue(sheet, cellName, v); err != nil {
			return err
		}
	}
	return nil
}

// AddRawSheet writes the per-artifact metrics of one scenario.
func (w *Workbook) AddRawSheet(scenario string, files []scalar.Summary) error {
	sheet := "Raw " + scenario
	if err := w.addSheet(sheet); err != nil {
		return err
	}
	header := []any{"file", "power_dbm", "throughput_mbps", "active_ues", "delay_ms", "proc_gops_sum", "proc_gops_mean", "gnb_count"}
	if err := w.setRow(sheet, 1, header); err != nil {
		return err
	}
	for i, s := range files {
		row := []any{s.File, s.PowerDBm, s.ThroughputMbps, s.ActiveUEs, s.DelayMs, s.ProcSumGOPS, s.ProcMeanGOPS, s.GNBCount}
		if err := w.setRow(sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// AddSummarySheet writes the per-power summary of one scenario, with the
// energy columns populated only for annotated rows.
func (w *Workbook) AddSummarySheet(scenario string, rows []pipeline.PowerRow) error {
	sheet := "Summary " + scenario
	if err := w.addSheet(sheet); err != nil {
		return err
	}
	header := []any{"power_dbm", "active_ues", "throughput_mbps", "delay_ms", "proc_gops_sum", "artifacts", "p_tot_w", "e_tot_kwh", "eff_mbps_per_w", "global_eff_index"}
	if err := w.setRow(sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		cells := []any{row.PowerDBm, row.ActiveUEs, row.ThroughputMbps, row.DelayMs, row.ProcSumGOPS, row.Artifacts}
		if row.Energy != nil {
			cells = append(cells, row.Energy.PowerTotW, row.Energy.EnergyKWh, row.Energy.Efficiency, row.Energy.EfficiencyIndex)
		}
		if err := w.setRow(sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

// AddComparisonSheet writes one metric across all scenarios, one column per
// scenario. Missing cells stay empty.
func (w *Workbook) AddComparisonSheet(cmp compare.Table, metric string) error {
	sheet := "Comparison " + metric
	if err := w.addSheet(sheet); err != nil {
		return err
	}
	header := []any{"power_dbm"}
	for _, scn := range cmp.Scenarios {
		header = append(header, scn)
	}
	if err := w.setRow(sheet, 1, header); err != nil {
		return err
	}
	for i, p := range cmp.Powers {
		row := []any{p}
		for _, scn := range cmp.Scenarios {
			cellRow, ok := cmp.Cells[p][scn]
			if !ok {
				row = append(row, "")
				continue
			}
			if v, present := MetricValue(cellRow, metric); present {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		if err := w.setRow(sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// AddSavingsSheet writes the baseline-relative energy savings. It is a
// no-op when the table carries no baseline.
func (w *Workbook) AddSavingsSheet(cmp compare.Table) error {
	savings, ok := cmp.Savings()
	if !ok {
		return nil
	}
	if err := w.addSheet("Savings"); err != nil {
		return err
	}

	header := []any{"power_dbm"}
	var columns []string
	for _, scn := range cmp.Scenarios {
		if scn == cmp.Baseline {
			continue
		}
		columns = append(columns, scn)
		header = append(header, scn+" (%)")
	}
	if err := w.setRow("Savings", 1, header); err != nil {
		return err
	}

	rowIdx := 2
	for _, p := range cmp.Powers {
		perScenario, ok := savings[p]
		if !ok {
			continue
		}
		row := []any{p}
		for _, scn := range columns {
			if v, ok := perScenario[scn]; ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		if err := w.setRow("Savings", rowIdx, row); err != nil {
			return err
		}
		rowIdx++
	}
	return nil
}

// Save writes the workbook to disk. A workbook with no sheets is not
// written.
func (w *Workbook) Save(path string) error {
	if w.sheets == 0 {
		return nil
	}
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

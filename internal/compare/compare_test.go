package compare_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonesrussell/simsweep/internal/compare"
	"github.com/jonesrussell/simsweep/internal/energy"
	"github.com/jonesrussell/simsweep/internal/logger"
	"github.com/jonesrussell/simsweep/internal/metrics"
	"github.com/jonesrussell/simsweep/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func powerRow(scenario string, power int, thp, kwh float64) pipeline.PowerRow {
	return pipeline.PowerRow{
		Row: metrics.Row{
			Scenario:       scenario,
			PowerDBm:       power,
			ThroughputMbps: thp,
			DelayMs:        12,
			HasThroughput:  true,
			HasProc:        true,
		},
		Energy: &energy.Result{EnergyKWh: kwh, PowerTotW: 60},
	}
}

func writeScenario(t *testing.T, root, dirName string, rows []pipeline.PowerRow, mod time.Time) {
	t.Helper()
	dir := filepath.Join(root, dirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	data, err := json.Marshal(rows)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, pipeline.PerPowerJSON), data, 0o644))
	require.NoError(t, os.Chtimes(dir, mod, mod))
}

func TestDiscover_PicksMostRecent(t *testing.T) {
	root := t.TempDir()
	old := time.Now().Add(-2 * time.Hour)
	recent := time.Now().Add(-time.Minute)
	writeScenario(t, root, "Toy1_old", []pipeline.PowerRow{powerRow("Toy1", 26, 20, 0.4)}, old)
	writeScenario(t, root, "Toy1_new", []pipeline.PowerRow{powerRow("Toy1", 26, 22, 0.4)}, recent)

	c := compare.New(root, logger.NewNop())
	dir, err := c.Discover("Toy1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Toy1_new"), dir)
}

func TestDiscover_NotFound(t *testing.T) {
	c := compare.New(t.TempDir(), logger.NewNop())
	_, err := c.Discover("Toy9")
	assert.ErrorIs(t, err, compare.ErrScenarioNotFound)
}

func TestLoad_SkipsMissingScenario(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	writeScenario(t, root, "Toy1_a", []pipeline.PowerRow{powerRow("Toy1", 26, 20, 0.4)}, now)
	writeScenario(t, root, "Toy2_a", []pipeline.PowerRow{powerRow("Toy2", 26, 18, 0.3)}, now)

	c := compare.New(root, logger.NewNop())
	table, err := c.Load([]string{"Toy1", "ToyMissing", "Toy2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Toy1", "Toy2"}, table.Scenarios)
	assert.Equal(t, "Toy1", table.Baseline)
}

func TestLoad_AllMissing(t *testing.T) {
	c := compare.New(t.TempDir(), logger.NewNop())
	_, err := c.Load([]string{"Toy1", "Toy2"})
	assert.ErrorIs(t, err, compare.ErrScenarioNotFound)
}

func TestMerge_Completeness(t *testing.T) {
	rows := map[string][]pipeline.PowerRow{
		"Toy1": {powerRow("Toy1", 26, 20, 0.4), powerRow("Toy1", 46, 30, 0.5)},
		"Toy2": {powerRow("Toy2", 26, 18, 0.3)},
	}
	table := compare.Merge(rows, []string{"Toy1", "Toy2"})

	assert.Equal(t, []int{26, 46}, table.Powers)

	// Every power present anywhere gets a row; scenarios lacking data at a
	// power are absent from that row, not zero-filled.
	require.Contains(t, table.Cells, 46)
	_, hasToy2 := table.Cells[46]["Toy2"]
	assert.False(t, hasToy2)
	_, hasToy1 := table.Cells[46]["Toy1"]
	assert.True(t, hasToy1)
}

func TestSavings(t *testing.T) {
	rows := map[string][]pipeline.PowerRow{
		"Base": {powerRow("Base", 26, 20, 0.40)},
		"ScnA": {powerRow("ScnA", 26, 19, 0.30)},
	}
	table := compare.Merge(rows, []string{"Base", "ScnA"})
	table.Baseline = "Base"

	savings, ok := table.Savings()
	require.True(t, ok)
	assert.InDelta(t, 25.0, savings[26]["ScnA"], 1e-9)
}

func TestSavings_OmittedWithoutBaseline(t *testing.T) {
	rows := map[string][]pipeline.PowerRow{
		"ScnA": {powerRow("ScnA", 26, 19, 0.30)},
	}
	table := compare.Merge(rows, []string{"ScnA"})

	savings, ok := table.Savings()
	assert.False(t, ok)
	assert.Nil(t, savings)
}

func TestCombinedPoints(t *testing.T) {
	unannotated := pipeline.PowerRow{Row: metrics.Row{Scenario: "ScnB", PowerDBm: 46, ThroughputMbps: 25}}
	rows := map[string][]pipeline.PowerRow{
		"Base": {powerRow("Base", 26, 20, 0.40)},
		"ScnB": {powerRow("ScnB", 26, 18, 0.35), unannotated},
	}
	table := compare.Merge(rows, []string{"Base", "ScnB"})

	points := table.CombinedPoints()
	require.Len(t, points, 2)
	assert.Equal(t, "Base", points[0].Scenario)
	assert.InDelta(t, 0.40, points[0].EnergyKWh, 1e-9)
	assert.Equal(t, "ScnB", points[1].Scenario)
}

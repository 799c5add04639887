// Package compare merges the summaries of multiple scenario runs into
// cross-scenario comparison views.
package compare

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jonesrussell/simsweep/internal/logger"
	"github.com/jonesrussell/simsweep/internal/pipeline"
)

// ErrScenarioNotFound indicates no result directory matched a scenario
// identifier. The scenario is dropped from the comparison, never fatal.
var ErrScenarioNotFound = errors.New("scenario results not found")

// Table is the merged cross-scenario view, keyed by transmit power. A
// scenario missing a power value is simply absent from that row; cells are
// never zero-filled. Derived read-only; never mutated after Merge.
type Table struct {
	// Scenarios actually included, in request order.
	Scenarios []string
	// Baseline is the first requested scenario when it survived
	// discovery, otherwise empty.
	Baseline string
	// Powers is the ascending union of all power values present.
	Powers []int
	// Cells maps power -> scenario -> row.
	Cells map[int]map[string]pipeline.PowerRow
}

// Point is one (scenario, power) sample of the combined
// energy-vs-throughput view.
type Point struct {
	Scenario       string  `json:"scenario"`
	PowerDBm       int     `json:"power_dbm"`
	EnergyKWh      float64 `json:"e_tot_kwh"`
	ThroughputMbps float64 `json:"throughput_mbps"`
	DelayMs        float64 `json:"delay_ms"`
}

// Comparator discovers scenario result sets under a root directory.
type Comparator struct {
	root string
	log  logger.Logger
}

// New creates a comparator rooted at the given results directory.
func New(root string, log logger.Logger) *Comparator {
	return &Comparator{root: root, log: log}
}

// Discover locates the result directory for one scenario: candidates are
// directories named "<scenario><suffix>" that contain a per-power summary;
// the most recently modified one wins.
func (c *Comparator) Discover(scenario string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(c.root, scenario+"*"))
	if err != nil {
		return "", fmt.Errorf("glob %s: %w", scenario, err)
	}

	var best string
	var bestMod int64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(m, pipeline.PerPowerJSON)); err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); best == "" || mod > bestMod {
			best, bestMod = m, mod
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: %s under %s", ErrScenarioNotFound, scenario, c.root)
	}
	return best, nil
}

// Load discovers and merges the requested scenarios. Missing scenarios are
// skipped with a warning and do not fail the remaining comparison.
func (c *Comparator) Load(scenarios []string) (Table, error) {
	rows := make(map[string][]pipeline.PowerRow)
	var included []string
	for _, scn := range scenarios {
		dir, err := c.Discover(scn)
		if err != nil {
			c.log.Warn("skipping scenario", logger.String("scenario", scn), logger.Error(err))
			continue
		}
		loaded, err := pipeline.LoadPerPower(filepath.Join(dir, pipeline.PerPowerJSON))
		if err != nil {
			c.log.Warn("skipping scenario", logger.String("scenario", scn), logger.Error(err))
			continue
		}
		rows[scn] = loaded
		included = append(included, scn)
	}
	if len(included) == 0 {
		return Table{}, fmt.Errorf("%w: none of %v", ErrScenarioNotFound, scenarios)
	}

	table := Merge(rows, included)
	if len(scenarios) > 0 && len(included) > 0 && included[0] == scenarios[0] {
		table.Baseline = scenarios[0]
	}
	return table, nil
}

// Merge builds the comparison table from per-scenario rows. order fixes the
// scenario ordering of the output.
func Merge(rows map[string][]pipeline.PowerRow, order []string) Table {
	cells := make(map[int]map[string]pipeline.PowerRow)
	for _, scn := range order {
		for _, row := range rows[scn] {
			if cells[row.PowerDBm] == nil {
				cells[row.PowerDBm] = make(map[string]pipeline.PowerRow)
			}
			cells[row.PowerDBm][scn] = row
		}
	}

	powers := make([]int, 0, len(cells))
	for p := range cells {
		powers = append(powers, p)
	}
	sort.Ints(powers)

	return Table{
		Scenarios: append([]string(nil), order...),
		Powers:    powers,
		Cells:     cells,
	}
}

// Savings computes the baseline-relative energy savings in percent,
// per scenario and power: (E_base - E_scn) / E_base * 100. The table is
// produced only when the baseline scenario is present; otherwise ok is
// false and no table is returned at all.
func (t Table) Savings() (map[int]map[string]float64, bool) {
	if t.Baseline == "" {
		return nil, false
	}

	out := make(map[int]map[string]float64)
	for _, p := range t.Powers {
		base, ok := t.Cells[p][t.Baseline]
		if !ok || base.Energy == nil || base.Energy.EnergyKWh == 0 {
			continue
		}
		for _, scn := range t.Scenarios {
			if scn == t.Baseline {
				continue
			}
			row, ok := t.Cells[p][scn]
			if !ok || row.Energy == nil {
				continue
			}
			if out[p] == nil {
				out[p] = make(map[string]float64)
			}
			out[p][scn] = (base.Energy.EnergyKWh - row.Energy.EnergyKWh) / base.Energy.EnergyKWh * 100.0
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// CombinedPoints flattens the table into the energy-vs-throughput view.
// Only cells carrying an energy annotation contribute a point; no further
// filtering happens beyond what the merge already did.
func (t Table) CombinedPoints() []Point {
	var points []Point
	for _, p := range t.Powers {
		for _, scn := range t.Scenarios {
			row, ok := t.Cells[p][scn]
			if !ok || row.Energy == nil {
				continue
			}
			points = append(points, Point{
				Scenario:       scn,
				PowerDBm:       p,
				EnergyKWh:      row.Energy.EnergyKWh,
				ThroughputMbps: row.ThroughputMbps,
				DelayMs:        row.DelayMs,
			})
		}
	}
	return points
}

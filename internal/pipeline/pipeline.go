// Package pipeline runs the metrics pipeline for one scenario: it parses
// every scalar artifact in a directory, aggregates by transmit power and
// applies the energy model when a configuration is supplied.
package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jonesrussell/simsweep/internal/energy"
	"github.com/jonesrussell/simsweep/internal/logger"
	"github.com/jonesrussell/simsweep/internal/metrics"
	"github.com/jonesrussell/simsweep/internal/scalar"
)

// Summary file names written next to each scenario's charts. The
// per-power file is the comparator's input format.
const (
	PerFileJSON  = "per_file.json"
	PerPowerJSON = "per_power.json"
)

// ErrNoArtifacts indicates a scenario directory held no scalar files.
var ErrNoArtifacts = errors.New("no scalar artifacts found")

// PowerRow is an aggregated row plus its optional energy annotation.
// Energy is nil when no energy configuration was supplied or when the row
// lacked a required model input.
type PowerRow struct {
	metrics.Row
	Energy *energy.Result `json:"energy,omitempty"`
}

// Result holds everything the pipeline produced for one scenario.
type Result struct {
	Scenario string
	Files    []scalar.Summary
	Rows     []PowerRow
}

// Pipeline processes scenario directories. EnergyCfg may be nil, in which
// case rows pass through unannotated.
type Pipeline struct {
	log       logger.Logger
	energyCfg *energy.Config
	aggOpts   []metrics.Option
}

// New creates a pipeline.
func New(log logger.Logger, energyCfg *energy.Config, aggOpts ...metrics.Option) *Pipeline {
	return &Pipeline{log: log, energyCfg: energyCfg, aggOpts: aggOpts}
}

// ProcessDir parses every *.sca file under dir and reduces them to
// per-power rows. powerHint carries orchestration context; pass
// scalar.PowerUnknown in standalone mode. Unparsable artifacts and
// artifacts without a recognizable power tag are skipped with a warning,
// never aborting the batch.
func (p *Pipeline) ProcessDir(dir, scenario string, powerHint int) (Result, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.sca"))
	if err != nil {
		return Result{}, fmt.Errorf("glob %s: %w", dir, err)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrNoArtifacts, dir)
	}

	summaries := make([]scalar.Summary, 0, len(paths))
	for _, path := range paths {
		sum, err := scalar.Summarize(path, powerHint)
		if err != nil {
			p.log.Warn("skipping artifact",
				logger.String("file", path),
				logger.Error(err),
			)
			continue
		}
		summaries = append(summaries, sum)
	}

	rows := metrics.Aggregate(scenario, summaries, p.aggOpts...)

	out := Result{Scenario: scenario, Files: summaries, Rows: make([]PowerRow, 0, len(rows))}
	for _, row := range rows {
		pr := PowerRow{Row: row}
		if p.energyCfg != nil {
			res, err := energy.Annotate(row, *p.energyCfg)
			if err != nil {
				p.log.Warn("row passes through unannotated",
					logger.String("scenario", scenario),
					logger.Int("power_dbm", row.PowerDBm),
					logger.Error(err),
				)
			} else {
				pr.Energy = &res
			}
		}
		out.Rows = append(out.Rows, pr)
	}
	return out, nil
}

// WriteSummaries writes the per-file and per-power JSON documents into
// outDir.
func (p *Pipeline) WriteSummaries(outDir string, res Result) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeJSON(filepath.Join(outDir, PerFileJSON), res.Files); err != nil {
		return err
	}
	return writeJSON(filepath.Join(outDir, PerPowerJSON), res.Rows)
}

// LoadPerPower reads a per-power summary document written by
// WriteSummaries. Used by the scenario comparator.
func LoadPerPower(path string) ([]PowerRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var rows []PowerRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

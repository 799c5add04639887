// Package runner drives bounded-parallel simulator invocations across a
// repetition matrix, with per-run retry and failure bookkeeping.
package runner

import (
	"errors"
	"sort"
)

// MaxAttempts bounds the retries of one repetition before it is recorded
// as failed.
const MaxAttempts = 3

// DefaultWorkers is the default worker-pool width.
const DefaultWorkers = 4

// logTailLines is how many trailing log lines are kept for a failed
// attempt.
const logTailLines = 20

var (
	// ErrToolNotFound means the simulator binary is missing. Fatal: no run
	// could succeed, the invocation aborts.
	ErrToolNotFound = errors.New("simulator binary not found")

	// ErrConfigMissing means the simulation ini file is missing. Fatal.
	ErrConfigMissing = errors.New("simulation configuration not found")
)

// Spec identifies one simulator invocation attempt.
type Spec struct {
	TxPowerDBm int `json:"tx_power_dbm"`
	Repetition int `json:"repetition"`
	Attempt    int `json:"attempt"`
}

// Attempt records the outcome of one simulator process.
type Attempt struct {
	Spec
	Success       bool     `json:"success"`
	ExitCode      int      `json:"exit_code"`
	ArtifactPath  string   `json:"sca_expected"`
	ArtifactFound bool     `json:"artifact_found"`
	LogPath       string   `json:"log_path"`
	DurationSec   float64  `json:"duration_sec"`
	Timestamp     string   `json:"timestamp"`
	LogTail       []string `json:"log_tail,omitempty"`
}

// Status is the overall invocation outcome written to status.json.
type Status struct {
	InvocationID string    `json:"invocation_id"`
	TxPowerDBm   int       `json:"tx_power_dbm"`
	Repetitions  int       `json:"repetitions"`
	Workers      int       `json:"workers"`
	ResultDir    string    `json:"result_dir"`
	Resolved     int       `json:"resolved"`
	Failed       int       `json:"failed"`
	Runs         []Attempt `json:"runs"`
}

// FailedRuns returns the final attempt of every repetition that exhausted
// its retries. Empty when all repetitions resolved.
func (s *Status) FailedRuns() []Attempt {
	final := make(map[int]Attempt)
	resolved := make(map[int]bool)
	for _, a := range s.Runs {
		if a.Success {
			resolved[a.Repetition] = true
		}
		if prev, ok := final[a.Repetition]; !ok || a.Attempt > prev.Attempt {
			final[a.Repetition] = a
		}
	}
	var failed []Attempt
	for rep, a := range final {
		if !resolved[rep] {
			failed = append(failed, a)
		}
	}
	sort.Slice(failed, func(i, j int) bool {
		return failed[i].Repetition < failed[j].Repetition
	})
	return failed
}

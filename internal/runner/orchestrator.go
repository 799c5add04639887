package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/simsweep/internal/config"
	"github.com/jonesrussell/simsweep/internal/logger"
	"github.com/jonesrussell/simsweep/internal/pipeline"
)

// Output documents written into the result directory.
const (
	StatusJSON     = "status.json"
	FailedRunsJSON = "failed_runs.json"
)

// Options configure one orchestrator invocation. Each invocation owns
// exactly one transmit power value; sweeps across powers re-invoke the
// orchestrator per value.
type Options struct {
	TxPowerDBm  int
	Repetitions int
	Workers     int
	// SkipExec scans pre-existing artifacts and runs only the metrics
	// pipeline.
	SkipExec bool
	// ResultDir overrides the default
	// <results>/<config>/Pot<tx> layout when non-empty.
	ResultDir string
}

// Orchestrator executes the (power, repetitions) matrix under a bounded
// worker pool and triggers the metrics pipeline once the matrix drains.
type Orchestrator struct {
	sim  config.Simulator
	opts Options
	pipe *pipeline.Pipeline
	log  logger.Logger
}

// New creates an orchestrator. pipe must not be nil.
func New(sim config.Simulator, opts Options, pipe *pipeline.Pipeline, log logger.Logger) *Orchestrator {
	if opts.Repetitions <= 0 {
		opts.Repetitions = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.ResultDir == "" {
		opts.ResultDir = filepath.Join(sim.ResultsDir, sim.ConfigName, fmt.Sprintf("Pot%d", opts.TxPowerDBm))
	}
	return &Orchestrator{sim: sim, opts: opts, pipe: pipe, log: log}
}

// ResultDir returns the directory this invocation writes into.
func (o *Orchestrator) ResultDir() string {
	return o.opts.ResultDir
}

// Execute runs the matrix (unless SkipExec) and then the metrics pipeline,
// exactly once. A repetition exhausting its retries never aborts sibling
// runs; the pipeline proceeds on whatever artifacts exist.
func (o *Orchestrator) Execute(ctx context.Context) (*Status, pipeline.Result, error) {
	var status *Status
	if !o.opts.SkipExec {
		var err error
		status, err = o.runMatrix(ctx)
		if err != nil {
			return nil, pipeline.Result{}, err
		}
	}

	res, err := o.pipe.ProcessDir(
		filepath.Join(o.opts.ResultDir, o.sim.ConfigName),
		o.sim.ConfigName,
		o.opts.TxPowerDBm,
	)
	if err != nil {
		o.log.Warn("metrics pipeline produced no rows", logger.Error(err))
		res = pipeline.Result{Scenario: o.sim.ConfigName}
	}
	return status, res, nil
}

// runMatrix validates the setup, executes every repetition under the
// bounded pool and persists the status document plus, when failures
// occurred, the failure manifest.
func (o *Orchestrator) runMatrix(ctx context.Context) (*Status, error) {
	if _, err := os.Stat(o.sim.BinaryPath()); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, o.sim.BinaryPath())
	}
	if _, err := os.Stat(o.sim.IniPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigMissing, o.sim.IniPath)
	}
	if err := os.MkdirAll(filepath.Join(o.opts.ResultDir, "logs"), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	o.log.Info("starting simulation matrix",
		logger.Int("tx_power_dbm", o.opts.TxPowerDBm),
		logger.Int("repetitions", o.opts.Repetitions),
		logger.Int("workers", o.opts.Workers),
		logger.String("result_dir", o.opts.ResultDir),
	)

	var (
		mu      sync.Mutex
		results []Attempt
		wg      sync.WaitGroup
		sem     = make(chan struct{}, o.opts.Workers)
	)

	for rep := 0; rep < o.opts.Repetitions; rep++ {
		rep := rep
		wg.Add(1)
		sem <- struct{}{} // acquire a worker slot
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			attempts := o.runRepetition(ctx, rep)
			mu.Lock()
			results = append(results, attempts...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := &Status{
		InvocationID: uuid.NewString(),
		TxPowerDBm:   o.opts.TxPowerDBm,
		Repetitions:  o.opts.Repetitions,
		Workers:      o.opts.Workers,
		ResultDir:    o.opts.ResultDir,
		Runs:         results,
	}
	resolved := make(map[int]bool)
	for _, a := range results {
		if a.Success {
			resolved[a.Repetition] = true
		}
	}
	status.Resolved = len(resolved)
	status.Failed = o.opts.Repetitions - status.Resolved

	if err := writeJSON(filepath.Join(o.opts.ResultDir, StatusJSON), status); err != nil {
		return nil, err
	}
	if failed := status.FailedRuns(); len(failed) > 0 {
		if err := writeJSON(filepath.Join(o.opts.ResultDir, FailedRunsJSON), failed); err != nil {
			return nil, err
		}
		o.log.Warn("some repetitions failed",
			logger.Int("failed", status.Failed),
			logger.String("manifest", filepath.Join(o.opts.ResultDir, FailedRunsJSON)),
		)
	}

	o.log.Info("simulation matrix finished",
		logger.Int("resolved", status.Resolved),
		logger.Int("failed", status.Failed),
	)
	return status, nil
}

// runRepetition retries one repetition up to MaxAttempts, producing one
// Attempt record per simulator process.
func (o *Orchestrator) runRepetition(ctx context.Context, rep int) []Attempt {
	artifact := artifactPath(o.opts.ResultDir, o.sim.ConfigName, rep)
	attempts := make([]Attempt, 0, MaxAttempts)

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		log := logPath(o.opts.ResultDir, o.opts.TxPowerDBm, rep, attempt)
		a := o.runAttempt(ctx, Spec{
			TxPowerDBm: o.opts.TxPowerDBm,
			Repetition: rep,
			Attempt:    attempt,
		}, artifact, log)
		attempts = append(attempts, a)
		if a.Success {
			return attempts
		}
		o.log.Warn("attempt did not produce artifact",
			logger.Int("repetition", rep),
			logger.Int("attempt", attempt),
			logger.String("expected", artifact),
		)
	}
	return attempts
}

// runAttempt spawns one simulator process, capturing its combined output
// into the per-attempt log file. The log is closed on every exit path
// before the artifact existence check.
func (o *Orchestrator) runAttempt(ctx context.Context, spec Spec, artifact, logFile string) Attempt {
	start := time.Now()
	a := Attempt{
		Spec:         spec,
		ArtifactPath: artifact,
		LogPath:      logFile,
		Timestamp:    start.Format(time.RFC3339),
	}

	runCtx := ctx
	if o.sim.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.sim.RunTimeout)
		defer cancel()
	}

	exitCode := func() int {
		f, err := os.Create(logFile)
		if err != nil {
			o.log.Error("cannot create run log", logger.String("path", logFile), logger.Error(err))
			return -1
		}
		defer f.Close()

		cmd := exec.CommandContext(runCtx, o.sim.BinaryPath(), buildArgs(o.sim, o.opts.ResultDir, spec.TxPowerDBm, spec.Repetition)...)
		cmd.Dir = o.sim.ProjectRoot
		cmd.Stdout = f
		cmd.Stderr = f
		if err := cmd.Run(); err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				return exitErr.ExitCode()
			}
			return -1
		}
		return 0
	}()

	a.ExitCode = exitCode
	a.DurationSec = time.Since(start).Seconds()
	_, statErr := os.Stat(artifact)
	a.ArtifactFound = statErr == nil
	a.Success = a.ArtifactFound
	if !a.Success {
		a.LogTail = tailLines(logFile, logTailLines)
	}
	return a
}

// tailLines returns up to n trailing lines of a log file.
func tailLines(path string, n int) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("[cannot read log: %v]", err)}
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
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

package runner_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonesrussell/simsweep/internal/config"
	"github.com/jonesrussell/simsweep/internal/logger"
	"github.com/jonesrussell/simsweep/internal/pipeline"
	"github.com/jonesrussell/simsweep/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSimulator behaves like opp_run for the argument layout buildArgs
// produces: it writes the expected scalar artifact unless the repetition
// index matches failRep.
const stubSimulator = `#!/bin/sh
rep="$2"
cfg="$7"
dir="${11}"
echo "stub simulator: rep=$rep cfg=$cfg"
if [ "$rep" = "%s" ]; then
  echo "simulated crash"
  exit 1
fi
mkdir -p "$dir/$cfg"
cat > "$dir/$cfg/$rep.sca" <<EOF
version 2
scalar Net.ue[0].app[0] cbrReceivedThroughput:mean 12500000
scalar Net.ue[0].app[0] cbrFrameDelay:mean 0.015
scalar Net.gnb1.cellularNic.mac CNProcDemand:mean 3
EOF
`

func testSimulator(t *testing.T, failRep string) config.Simulator {
	t.Helper()
	binDir := t.TempDir()
	script := []byte(fmt.Sprintf(stubSimulator, failRep))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "opp_run"), script, 0o755))

	iniPath := filepath.Join(t.TempDir(), "training_toy1_1.ini")
	require.NoError(t, os.WriteFile(iniPath, []byte("[Config TrainingToy1_1]\n"), 0o644))

	return config.Simulator{
		BinDir:      binDir,
		Binary:      "opp_run",
		ProjectRoot: t.TempDir(),
		ConfigName:  "TrainingToy1_1",
		IniPath:     iniPath,
		ResultsDir:  t.TempDir(),
	}
}

func TestExecute_AllResolve(t *testing.T) {
	sim := testSimulator(t, "none")
	outDir := filepath.Join(t.TempDir(), "Pot26")

	orch := runner.New(sim, runner.Options{
		TxPowerDBm:  26,
		Repetitions: 2,
		Workers:     2,
		ResultDir:   outDir,
	}, pipeline.New(logger.NewNop(), nil), logger.NewNop())

	status, res, err := orch.Execute(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status)

	assert.Equal(t, 2, status.Resolved)
	assert.Equal(t, 0, status.Failed)
	assert.NotEmpty(t, status.InvocationID)
	assert.Len(t, status.Runs, 2) // one attempt each

	// Status document written, failure manifest absent.
	assert.FileExists(t, filepath.Join(outDir, runner.StatusJSON))
	assert.NoFileExists(t, filepath.Join(outDir, runner.FailedRunsJSON))

	// Pipeline ran over the produced artifacts.
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 26, res.Rows[0].PowerDBm)
	assert.Equal(t, 2, res.Rows[0].Artifacts)
}

func TestExecute_RetriesThenFails(t *testing.T) {
	sim := testSimulator(t, "1")
	outDir := filepath.Join(t.TempDir(), "Pot26")

	orch := runner.New(sim, runner.Options{
		TxPowerDBm:  26,
		Repetitions: 3,
		Workers:     2,
		ResultDir:   outDir,
	}, pipeline.New(logger.NewNop(), nil), logger.NewNop())

	status, res, err := orch.Execute(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status)

	assert.Equal(t, 2, status.Resolved)
	assert.Equal(t, 1, status.Failed)
	// Repetitions 0 and 2 succeed first try, repetition 1 burns all
	// three attempts.
	assert.Len(t, status.Runs, 5)

	failed := status.FailedRuns()
	require.Len(t, failed, 1)
	assert.Equal(t, 26, failed[0].TxPowerDBm)
	assert.Equal(t, 1, failed[0].Repetition)
	assert.Equal(t, runner.MaxAttempts, failed[0].Attempt)
	assert.NotEmpty(t, failed[0].LogTail)

	assert.FileExists(t, filepath.Join(outDir, runner.FailedRunsJSON))

	// One log file per attempt.
	for attempt := 1; attempt <= runner.MaxAttempts; attempt++ {
		assert.FileExists(t, filepath.Join(outDir, "logs", fmt.Sprintf("log_TX26_R1_A%d.txt", attempt)))
	}

	// The pipeline still proceeds on the surviving artifacts.
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 2, res.Rows[0].Artifacts)
}

func TestExecute_MissingBinaryIsFatal(t *testing.T) {
	sim := testSimulator(t, "none")
	sim.BinDir = t.TempDir() // no opp_run inside

	orch := runner.New(sim, runner.Options{TxPowerDBm: 26},
		pipeline.New(logger.NewNop(), nil), logger.NewNop())

	_, _, err := orch.Execute(context.Background())
	assert.ErrorIs(t, err, runner.ErrToolNotFound)
}

func TestExecute_MissingIniIsFatal(t *testing.T) {
	sim := testSimulator(t, "none")
	sim.IniPath = filepath.Join(t.TempDir(), "missing.ini")

	orch := runner.New(sim, runner.Options{TxPowerDBm: 26},
		pipeline.New(logger.NewNop(), nil), logger.NewNop())

	_, _, err := orch.Execute(context.Background())
	assert.ErrorIs(t, err, runner.ErrConfigMissing)
}

func TestExecute_SkipExecScansExistingArtifacts(t *testing.T) {
	sim := testSimulator(t, "none")
	sim.BinDir = t.TempDir() // binary absent on purpose: no process runs

	outDir := filepath.Join(t.TempDir(), "Pot26")
	scaDir := filepath.Join(outDir, sim.ConfigName)
	require.NoError(t, os.MkdirAll(scaDir, 0o755))
	content := "scalar Net.ue[0].app[0] cbrReceivedThroughput:mean 12500000\n" +
		"scalar Net.gnb1.cellularNic.mac CNProcDemand:mean 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(scaDir, "0.sca"), []byte(content), 0o644))

	orch := runner.New(sim, runner.Options{
		TxPowerDBm: 26,
		SkipExec:   true,
		ResultDir:  outDir,
	}, pipeline.New(logger.NewNop(), nil), logger.NewNop())

	status, res, err := orch.Execute(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 26, res.Rows[0].PowerDBm)
}

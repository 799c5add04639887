package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonesrussell/simsweep/internal/energy"
	"github.com/jonesrussell/simsweep/internal/logger"
	"github.com/jonesrussell/simsweep/internal/pipeline"
	"github.com/jonesrussell/simsweep/internal/scalar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessDir(t *testing.T) {
	dir := t.TempDir()
	writeScaFixture(t, dir, "26dBm-0.sca", "12500000")
	writeScaFixture(t, dir, "26dBm-1.sca", "7500000")
	writeScaFixture(t, dir, "46dBm-0.sca", "20000000")
	// Garbage file without a power tag is skipped, not fatal.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orphan.sca"), []byte("scalar Net.ue[0].app[0] cbrReceivedThroughput:mean 1\n"), 0o644))

	cfg := energy.Config{General: energy.General{IdlePowerW: 50, Alpha: 1, Beta: 1, Gamma: 1, SimTimeS: 20, DelayRefMs: 10}}
	p := pipeline.New(logger.NewNop(), &cfg)

	res, err := p.ProcessDir(dir, "Toy1", scalar.PowerUnknown)
	require.NoError(t, err)

	assert.Len(t, res.Files, 3)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 26, res.Rows[0].PowerDBm)
	assert.InDelta(t, 10.0, res.Rows[0].ThroughputMbps, 1e-9) // mean of 12.5 and 7.5
	assert.Equal(t, 46, res.Rows[1].PowerDBm)
	require.NotNil(t, res.Rows[0].Energy)
	assert.Positive(t, res.Rows[0].Energy.PowerTotW)
}

func TestProcessDir_NoEnergyConfig(t *testing.T) {
	dir := t.TempDir()
	writeScaFixture(t, dir, "26dBm-0.sca", "12500000")

	p := pipeline.New(logger.NewNop(), nil)
	res, err := p.ProcessDir(dir, "Toy1", scalar.PowerUnknown)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Nil(t, res.Rows[0].Energy)
}

func TestProcessDir_Empty(t *testing.T) {
	p := pipeline.New(logger.NewNop(), nil)
	_, err := p.ProcessDir(t.TempDir(), "Toy1", scalar.PowerUnknown)
	assert.ErrorIs(t, err, pipeline.ErrNoArtifacts)
}

func TestWriteAndLoadSummaries(t *testing.T) {
	dir := t.TempDir()
	writeScaFixture(t, dir, "26dBm-0.sca", "12500000")

	p := pipeline.New(logger.NewNop(), nil)
	res, err := p.ProcessDir(dir, "Toy1", scalar.PowerUnknown)
	require.NoError(t, err)

	outDir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, p.WriteSummaries(outDir, res))

	rows, err := pipeline.LoadPerPower(filepath.Join(outDir, pipeline.PerPowerJSON))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Toy1", rows[0].Scenario)
	assert.Equal(t, 26, rows[0].PowerDBm)
}

func writeScaFixture(t *testing.T, dir, name, throughputBps string) {
	t.Helper()
	content := "version 2\n" +
		"scalar Net.ue[0].app[0] cbrReceivedThroughput:mean " + throughputBps + "\n" +
		"scalar Net.ue[0].app[0] cbrFrameDelay:mean 0.015\n" +
		"scalar Net.gnb1.cellularNic.mac CNProcDemand:mean 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

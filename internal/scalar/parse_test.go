package scalar_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonesrussell/simsweep/internal/scalar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSca = `version 2
run TrainingToy1_1-0-20250101-12:00:00
attr configname TrainingToy1_1
scalar MultiCell.ue[0].app[0] cbrReceivedThroughput:mean 12500000
scalar MultiCell.ue[1].app[0] cbrReceivedThroughtput:mean 7500000
scalar MultiCell.ue[2].app[0] cbrReceivedThroughput:mean 0
scalar MultiCell.ue[0].app[0] cbrFrameDelay:mean 0.012
scalar MultiCell.ue[1].app[0] cbrFrameDelay:mean 0.020
scalar MultiCell.gnb1.cellularNic.mac CNProcDemand:mean 2.5
scalar MultiCell.gnb2.cellularNic.mac CNProcDemand:mean 3.5
scalar MultiCell.server.app[0] cbrGeneratedThroughtput:mean 99999999
`

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFile(t *testing.T) {
	path := writeArtifact(t, "26dBm-0.sca", sampleSca)

	records, err := scalar.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, records, 8)

	assert.Equal(t, "MultiCell.ue[0].app[0]", records[0].Module)
	assert.Equal(t, "cbrReceivedThroughput:mean", records[0].Name)
	assert.InDelta(t, 12500000.0, records[0].Value, 1e-9)
}

func TestParseFile_Unreadable(t *testing.T) {
	_, err := scalar.ParseFile(filepath.Join(t.TempDir(), "missing.sca"))
	require.Error(t, err)
	assert.ErrorIs(t, err, scalar.ErrArtifactUnreadable)
}

func TestSummarize(t *testing.T) {
	path := writeArtifact(t, "26dBm-0.sca", sampleSca)

	sum, err := scalar.Summarize(path, scalar.PowerUnknown)
	require.NoError(t, err)

	assert.Equal(t, 26, sum.PowerDBm)
	// 12.5 + 7.5 + 0 Mbps after bit/s conversion.
	assert.InDelta(t, 20.0, sum.ThroughputMbps, 1e-9)
	// UEs with positive throughput only.
	assert.Equal(t, 2, sum.ActiveUEs)
	// Seconds converted to ms, then averaged: (12 + 20) / 2.
	assert.InDelta(t, 16.0, sum.DelayMs, 1e-9)
	assert.InDelta(t, 6.0, sum.ProcSumGOPS, 1e-9)
	assert.InDelta(t, 3.0, sum.ProcMeanGOPS, 1e-9)
	assert.Equal(t, 2, sum.GNBCount)
}

func TestSummarize_HintWinsOverFilename(t *testing.T) {
	path := writeArtifact(t, "26dBm-0.sca", sampleSca)

	sum, err := scalar.Summarize(path, 46)
	require.NoError(t, err)
	assert.Equal(t, 46, sum.PowerDBm)
}

func TestSummarize_NoPowerTag(t *testing.T) {
	path := writeArtifact(t, "0.sca", sampleSca)

	_, err := scalar.Summarize(path, scalar.PowerUnknown)
	require.Error(t, err)
	assert.ErrorIs(t, err, scalar.ErrParameterNotFound)
}

func TestSummarize_PowerFromDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Pot36")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "0.sca")
	require.NoError(t, os.WriteFile(path, []byte(sampleSca), 0o644))

	sum, err := scalar.Summarize(path, scalar.PowerUnknown)
	require.NoError(t, err)
	assert.Equal(t, 36, sum.PowerDBm)
}

package runner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonesrussell/simsweep/internal/config"
)

// buildArgs assembles the opp_run argument list for one repetition. The
// swept transmit power overrides both the gNB and the UE radio, and results
// are redirected into resultDir.
func buildArgs(sim config.Simulator, resultDir string, tx, rep int) []string {
	args := []string{
		"-r", fmt.Sprintf("%d", rep),
		"-m", "-u", "Cmdenv",
		"-c", sim.ConfigName,
		"-f", sim.IniPath,
		"--result-dir", resultDir,
	}
	if len(sim.NedPaths) > 0 {
		args = append(args, "-n", strings.Join(sim.NedPaths, ":"))
	}
	for _, lib := range sim.Libs {
		args = append(args, "-l", lib)
	}
	args = append(args,
		fmt.Sprintf("--*.gnb[*].cellularNic.phy.eNodeBTxPower=%ddBm", tx),
		fmt.Sprintf("--**.ueTxPower=%ddBm", tx),
	)
	return args
}

// artifactPath is where the simulator writes the scalar file for one
// repetition, per the ini's ${resultdir}/${configname}/${repetition}.sca
// convention.
func artifactPath(resultDir, configName string, rep int) string {
	return filepath.Join(resultDir, configName, fmt.Sprintf("%d.sca", rep))
}

// logPath is scoped per attempt so concurrent attempts never collide.
func logPath(resultDir string, tx, rep, attempt int) string {
	return filepath.Join(resultDir, "logs", fmt.Sprintf("log_TX%d_R%d_A%d.txt", tx, rep, attempt))
}

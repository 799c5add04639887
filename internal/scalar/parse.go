package scalar

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// PowerUnknown is passed as the power hint when the caller has no
// orchestration context and the power must be inferred from the artifact
// name or path.
const PowerUnknown = -1

var (
	// scalarLineRe matches one "scalar <module> <name> <value> [unit]" line.
	scalarLineRe = regexp.MustCompile(`^scalar\s+(\S+)\s+(\S+)\s+([-+\d.eE]+)(?:\s+(\S+))?`)

	// Entity classifiers. The misspelled "Throughtput" variant appears in
	// older Simu5G releases and must keep matching.
	ueModuleRe       = regexp.MustCompile(`\.ue\[(\d+)\]\.app\[(\d+)\]$`)
	gnbModuleRe      = regexp.MustCompile(`\.gnb(\d+)\.cellularNic\.mac$`)
	throughputNameRe = regexp.MustCompile(`^cbrReceived(?:Throughput|Throughtput):mean$`)
	delayNameRe      = regexp.MustCompile(`^cbrFrameDelay:mean$`)
	procNameRe       = regexp.MustCompile(`^CNProcDemand:mean$`)
)

// ParseFile reads every scalar entry from a .sca file.
// Returns ErrArtifactUnreadable when the file cannot be opened.
func ParseFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactUnreadable, path, err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "scalar") {
			continue
		}
		m := scalarLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}
		records = append(records, Record{Module: m[1], Name: m[2], Value: v, Unit: m[4]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactUnreadable, path, err)
	}
	return records, nil
}

// Summarize parses one artifact and reduces its per-entity scalars into a
// Summary. powerHint carries the orchestrator-supplied transmit power;
// pass PowerUnknown to infer it from the file name (then the directory
// path). A hint always wins over inference.
func Summarize(path string, powerHint int) (Summary, error) {
	records, err := ParseFile(path)
	if err != nil {
		return Summary{}, err
	}

	power := powerHint
	if power == PowerUnknown {
		power, err = PowerFromName(path)
		if err != nil {
			power, err = PowerFromPath(path)
			if err != nil {
				return Summary{}, fmt.Errorf("%w: %s", ErrParameterNotFound, path)
			}
		}
	}

	var ueThroughput, ueDelay, gnbProc []float64
	gnbSeen := make(map[int]struct{})

	for _, r := range records {
		switch {
		case ueModuleRe.MatchString(r.Module) && throughputNameRe.MatchString(r.Name):
			ueThroughput = append(ueThroughput, r.Value)
		case ueModuleRe.MatchString(r.Module) && delayNameRe.MatchString(r.Name):
			ueDelay = append(ueDelay, r.Value)
		case procNameRe.MatchString(r.Name):
			if m := gnbModuleRe.FindStringSubmatch(r.Module); m != nil {
				id, _ := strconv.Atoi(m[1])
				gnbSeen[id] = struct{}{}
				gnbProc = append(gnbProc, r.Value)
			}
		}
	}

	throughputMbps := NormalizeThroughput(ueThroughput)
	delayMs := NormalizeDelay(ueDelay)

	active := 0
	for _, v := range throughputMbps {
		if v > 0 {
			active++
		}
	}

	return Summary{
		File:           path,
		PowerDBm:       power,
		ThroughputMbps: sum(throughputMbps),
		ActiveUEs:      active,
		DelayMs:        mean(delayMs, 0),
		ProcSumGOPS:    sum(gnbProc),
		ProcMeanGOPS:   mean(gnbProc, 0),
		GNBCount:       len(gnbSeen),
		HasThroughput:  len(throughputMbps) > 0,
		HasDelay:       len(delayMs) > 0,
		HasProc:        len(gnbProc) > 0,
	}, nil
}

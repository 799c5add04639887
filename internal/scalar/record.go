// Package scalar parses OMNeT++/Simu5G scalar result files (.sca) and
// reduces their per-entity entries into one summary per artifact.
package scalar

// Record is a single scalar entry from a result file.
type Record struct {
	Module string
	Name   string
	Value  float64
	Unit   string
}

// Summary holds the reduced metrics extracted from one scalar artifact.
// Per-UE throughput is summed, per-UE delay is averaged and per-gNB
// processing demand is kept both summed and averaged.
type Summary struct {
	File           string  `json:"file"`
	PowerDBm       int     `json:"power_dbm"`
	ThroughputMbps float64 `json:"throughput_mbps"`
	ActiveUEs      int     `json:"active_ues"`
	DelayMs        float64 `json:"delay_ms"`
	ProcSumGOPS    float64 `json:"proc_gops_sum"`
	ProcMeanGOPS   float64 `json:"proc_gops_mean"`
	GNBCount       int     `json:"gnb_count"`

	// Presence flags distinguish a genuine zero from a metric that had no
	// entries in the artifact at all.
	HasThroughput bool `json:"has_throughput"`
	HasDelay      bool `json:"has_delay"`
	HasProc       bool `json:"has_proc"`
}

// Package metrics aggregates per-artifact summaries into per-power rows.
package metrics

import (
	"math"
	"sort"

	"github.com/jonesrussell/simsweep/internal/scalar"
)

// Metric names accepted by WithStat.
const (
	MetricThroughput = "throughput"
	MetricDelay      = "delay"
	MetricProcSum    = "proc_sum"
	MetricProcMean   = "proc_mean"
	MetricActiveUEs  = "active_ues"
)

// Stat reduces the values contributed by the artifacts of one group.
type Stat func(values []float64) float64

// Mean is the default statistic for every metric.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var s float64
	for _, v := range values {
		s += v
	}
	return s / float64(len(values))
}

// Sum adds the contributed values.
func Sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

// Row is one aggregated row for a (scenario, power) group. Statistics are
// computed only from artifacts that parsed successfully; a group with no
// contributing artifacts produces no row at all.
type Row struct {
	Scenario       string  `json:"scenario"`
	PowerDBm       int     `json:"power_dbm"`
	ThroughputMbps float64 `json:"throughput_mbps"`
	DelayMs        float64 `json:"delay_ms"`
	ProcSumGOPS    float64 `json:"proc_gops_sum"`
	ProcMeanGOPS   float64 `json:"proc_gops_mean"`
	ActiveUEs      float64 `json:"active_ues"`
	GNBCount       int     `json:"gnb_count"`
	Artifacts      int     `json:"artifacts"`

	// Presence flags carried up from the artifact summaries; true when at
	// least one contributing artifact had entries for the metric.
	HasThroughput bool `json:"has_throughput"`
	HasDelay      bool `json:"has_delay"`
	HasProc       bool `json:"has_proc"`
}

// Option adjusts aggregation behaviour.
type Option func(*options)

type options struct {
	stats map[string]Stat
}

// WithStat overrides the statistic used for one metric.
func WithStat(metric string, stat Stat) Option {
	return func(o *options) {
		o.stats[metric] = stat
	}
}

// Aggregate groups the summaries of one scenario by transmit power and
// reduces each group to a single row, ordered ascending by power.
func Aggregate(scenario string, summaries []scalar.Summary, opts ...Option) []Row {
	o := options{stats: map[string]Stat{
		MetricThroughput: Mean,
		MetricDelay:      Mean,
		MetricProcSum:    Mean,
		MetricProcMean:   Mean,
		MetricActiveUEs:  Mean,
	}}
	for _, opt := range opts {
		opt(&o)
	}

	groups := make(map[int][]scalar.Summary)
	for _, s := range summaries {
		groups[s.PowerDBm] = append(groups[s.PowerDBm], s)
	}

	powers := make([]int, 0, len(groups))
	for p := range groups {
		powers = append(powers, p)
	}
	sort.Ints(powers)

	rows := make([]Row, 0, len(powers))
	for _, p := range powers {
		group := groups[p]
		var thp, dly, procSum, procMean, ues, gnbs []float64
		var hasThp, hasDly, hasProc bool
		for _, s := range group {
			thp = append(thp, s.ThroughputMbps)
			dly = append(dly, s.DelayMs)
			procSum = append(procSum, s.ProcSumGOPS)
			procMean = append(procMean, s.ProcMeanGOPS)
			ues = append(ues, float64(s.ActiveUEs))
			gnbs = append(gnbs, float64(s.GNBCount))
			hasThp = hasThp || s.HasThroughput
			hasDly = hasDly || s.HasDelay
			hasProc = hasProc || s.HasProc
		}
		rows = append(rows, Row{
			Scenario:       scenario,
			PowerDBm:       p,
			ThroughputMbps: o.stats[MetricThroughput](thp),
			DelayMs:        o.stats[MetricDelay](dly),
			ProcSumGOPS:    o.stats[MetricProcSum](procSum),
			ProcMeanGOPS:   o.stats[MetricProcMean](procMean),
			ActiveUEs:      o.stats[MetricActiveUEs](ues),
			GNBCount:       int(math.Round(Mean(gnbs))),
			Artifacts:      len(group),
			HasThroughput:  hasThp,
			HasDelay:       hasDly,
			HasProc:        hasProc,
		})
	}
	return rows
}

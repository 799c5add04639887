package energy

import (
	"errors"
	"fmt"
	"math"

	"github.com/jonesrussell/simsweep/internal/metrics"
)

// ErrMissingModelInput indicates a required aggregated metric (throughput,
// active-UE count or processing demand) had no contributing entries. The
// row should pass through unannotated rather than abort the batch.
var ErrMissingModelInput = errors.New("missing energy model input")

// epsilon guards divisions by a zero power or energy.
const epsilon = 1e-12

// Result carries the energy annotation for one aggregated row.
type Result struct {
	PTxW            float64 `json:"p_tx_w"`
	PowerTotW       float64 `json:"p_tot_w"`
	EnergyJ         float64 `json:"e_tot_j"`
	EnergyKWh       float64 `json:"e_tot_kwh"`
	Efficiency      float64 `json:"eff_mbps_per_w"`
	EfficiencyIndex float64 `json:"global_eff_index"`
	Clamped         bool    `json:"clamped"`
	SimTimeS        float64 `json:"sim_time_s"`
}

// DBmToWatts converts a transmit power in dBm to watts.
func DBmToWatts(dbm float64) float64 {
	return math.Pow(10, dbm/10.0) / 1000.0
}

// Annotate applies the power/energy model to one aggregated row:
//
//	P_tot = P_idle + alpha*D_proc + beta*N_UE + gamma*P_tx
//	E_tot = P_tot * T_sim
//
// Efficiency is Mbps per watt, and the composite efficiency index weighs
// throughput-per-joule by a delay penalty of 1/(1 + delay/delay_ref).
// P_tot is clamped into the configured limits; clamping is reported, not
// rejected.
func Annotate(row metrics.Row, cfg Config) (Result, error) {
	if !row.HasThroughput {
		return Result{}, fmt.Errorf("%w: throughput (power %d dBm)", ErrMissingModelInput, row.PowerDBm)
	}
	if !row.HasProc {
		return Result{}, fmt.Errorf("%w: processing demand (power %d dBm)", ErrMissingModelInput, row.PowerDBm)
	}

	g := cfg.General
	pTx := DBmToWatts(float64(row.PowerDBm))
	pTot := g.IdlePowerW + g.Alpha*row.ProcSumGOPS + g.Beta*row.ActiveUEs + g.Gamma*pTx

	clamped := false
	if cfg.Limits.MinPowerW != nil && pTot < *cfg.Limits.MinPowerW {
		pTot = *cfg.Limits.MinPowerW
		clamped = true
	}
	if cfg.Limits.MaxPowerW != nil && pTot > *cfg.Limits.MaxPowerW {
		pTot = *cfg.Limits.MaxPowerW
		clamped = true
	}

	energyJ := pTot * g.SimTimeS
	energyKWh := energyJ / 3600.0

	delay := math.Max(row.DelayMs, 0)
	index := (row.ThroughputMbps / math.Max(energyJ, epsilon)) *
		(1.0 / (1.0 + delay/g.DelayRefMs))

	return Result{
		PTxW:            pTx,
		PowerTotW:       pTot,
		EnergyJ:         energyJ,
		EnergyKWh:       energyKWh,
		Efficiency:      row.ThroughputMbps / math.Max(pTot, epsilon),
		EfficiencyIndex: index,
		Clamped:         clamped,
		SimTimeS:        g.SimTimeS,
	}, nil
}

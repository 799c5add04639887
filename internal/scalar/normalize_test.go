package scalar_test

import (
	"math"
	"testing"

	"github.com/jonesrussell/simsweep/internal/scalar"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeThroughput(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{
			name: "already mbps stays unchanged",
			in:   []float64{12.5},
			want: []float64{12.5},
		},
		{
			name: "raw bps converted to mbps",
			in:   []float64{12_500_000},
			want: []float64{12.5},
		},
		{
			name: "median decides for the whole series",
			in:   []float64{10_000_000, 20_000_000, 30_000_000},
			want: []float64{10, 20, 30},
		},
		{
			name: "non-finite values dropped",
			in:   []float64{12.5, math.NaN(), math.Inf(1)},
			want: []float64{12.5},
		},
		{
			name: "empty input",
			in:   nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scalar.NormalizeThroughput(tt.in)
			assert.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}
}

func TestNormalizeThroughput_Idempotent(t *testing.T) {
	once := scalar.NormalizeThroughput([]float64{12_500_000, 7_500_000})
	twice := scalar.NormalizeThroughput(once)
	assert.InDeltaSlice(t, once, twice, 1e-9)
}

func TestNormalizeDelay(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{
			name: "seconds converted to ms",
			in:   []float64{0.012, 0.020},
			want: []float64{12, 20},
		},
		{
			name: "already ms stays unchanged",
			in:   []float64{12, 20},
			want: []float64{12, 20},
		},
		{
			name: "empty input",
			in:   nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scalar.NormalizeDelay(tt.in)
			assert.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}
}

func TestPowerFromName(t *testing.T) {
	p, err := scalar.PowerFromName("/results/Toy1/26dBm-3.sca")
	assert.NoError(t, err)
	assert.Equal(t, 26, p)

	_, err = scalar.PowerFromName("/results/Toy1/3.sca")
	assert.ErrorIs(t, err, scalar.ErrParameterNotFound)
}

func TestPowerFromPath(t *testing.T) {
	p, err := scalar.PowerFromPath("/results/TrainingToy1_1/Pot46/0.sca")
	assert.NoError(t, err)
	assert.Equal(t, 46, p)

	_, err = scalar.PowerFromPath("/results/TrainingToy1_1/0.sca")
	assert.ErrorIs(t, err, scalar.ErrParameterNotFound)
}

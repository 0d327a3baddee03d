package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMAPE(t *testing.T) {
	assert.InDelta(t, 0, MAPE([]float64{10, 20}, []float64{10, 20}), 1e-12)
	assert.InDelta(t, 10, MAPE([]float64{10, 20}, []float64{11, 22}), 1e-12)
	// Over- and under-prediction both count with their absolute error.
	assert.InDelta(t, 10, MAPE([]float64{10, 20}, []float64{9, 18}), 1e-12)
}

func TestMAPESkipsZeroActuals(t *testing.T) {
	// The zero-actual day is excluded, not treated as infinite error.
	got := MAPE([]float64{0, 10}, []float64{5, 11})
	assert.InDelta(t, 10, got, 1e-12)

	assert.True(t, math.IsInf(MAPE([]float64{0, 0}, []float64{1, 2}), 1))
}

func TestMAPEPanicsOnLengthMismatch(t *testing.T) {
	assert.Panics(t, func() { MAPE([]float64{1}, []float64{1, 2}) })
}

func TestMAE(t *testing.T) {
	assert.InDelta(t, 1.5, MAE([]float64{1, 2}, []float64{2, 4}), 1e-12)
	assert.InDelta(t, 0, MAE([]float64{3}, []float64{3}), 1e-12)
	assert.True(t, math.IsNaN(MAE(nil, nil)))
}

func TestMASE(t *testing.T) {
	// Naive forecast MAE over [10, 12, 14] is 2; prediction MAE is 1.
	got := MASE([]float64{10, 12, 14}, []float64{11, 13, 15})
	assert.InDelta(t, 0.5, got, 1e-12)
	assert.True(t, math.IsNaN(MASE([]float64{1}, []float64{1})))
}

func TestFloats(t *testing.T) {
	assert.Equal(t, []float64{1, 0, 3}, Floats([]int{1, 0, 3}))
	assert.Empty(t, Floats(nil))
}

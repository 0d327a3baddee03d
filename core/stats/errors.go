// Package stats provides the error metrics used for calibration and
// benchmarking: MAPE, MAE and MASE.
package stats

import "math"

// MAPE returns the mean absolute percentage error between actual and pred,
// expressed in percent. Days with a zero actual value carry an undefined
// percentage error and are excluded from the mean. If every actual value is
// zero the result is +Inf, which an optimizer treats as a maximally bad
// candidate. Panics if the slices differ in length.
func MAPE(actual, pred []float64) float64 {
	if len(actual) != len(pred) {
		panic("stats: length mismatch")
	}
	sum, n := 0.0, 0
	for i, a := range actual {
		if a == 0 {
			continue
		}
		sum += math.Abs(a-pred[i]) / math.Abs(a)
		n++
	}
	if n == 0 {
		return math.Inf(1)
	}
	return sum / float64(n) * 100
}

// MAE returns the mean absolute error between actual and pred.
func MAE(actual, pred []float64) float64 {
	if len(actual) != len(pred) {
		panic("stats: length mismatch")
	}
	if len(actual) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i, a := range actual {
		sum += math.Abs(a - pred[i])
	}
	return sum / float64(len(actual))
}

// MASE returns the mean absolute scaled error: the MAE scaled by the MAE of
// the naive one-step forecast on the actual series. Requires at least two
// actual values.
func MASE(actual, pred []float64) float64 {
	if len(actual) < 2 {
		return math.NaN()
	}
	num := MAE(actual, pred)
	denom := 0.0
	for i := 1; i < len(actual); i++ {
		denom += math.Abs(actual[i] - actual[i-1])
	}
	denom /= float64(len(actual) - 1)
	return num / denom
}

// Floats converts an integer series to float64 for use with the error metrics.
func Floats(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

package causal

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lkirchmair/bedcast/core/metrics"
	"github.com/lkirchmair/bedcast/core/optimize"
	"github.com/lkirchmair/bedcast/core/stats"
)

// Bounds is the calibration search box, in parameter vector order:
// hospitalization probability, delay lambda, stay location, stay scale.
type Bounds [4]optimize.Bound

// CalibrateOptions configure one calibration run.
type CalibrateOptions struct {
	// Replicas is the Monte Carlo replica count per objective evaluation.
	Replicas int
	Bounds   Bounds
	// MaxGenerations caps the optimizer; reaching it is normal termination.
	MaxGenerations int
	// UseCurrent seeds one population member with the live parameters.
	UseCurrent bool
	// Verbose logs per-run convergence information.
	Verbose bool
}

// CalibrationResult is the outcome of a completed calibration run.
type CalibrationResult struct {
	Params      Params        `json:"params"`
	MAPE        float64       `json:"mape"`
	Generations int           `json:"generations"`
	Evaluations int           `json:"evaluations"`
	Converged   bool          `json:"converged"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Calibrate searches opts.Bounds for the parameter vector minimizing the
// MAPE between the Monte Carlo mean occupancy and the observed occupancy of
// the current window, then installs the best vector as the live parameters.
// Candidate evaluations run in parallel; each one uses the sequential Monte
// Carlo path internally so parallelism is never nested. The run is fully
// deterministic for fixed inputs and calibration seed.
func (m *Model) Calibrate(opts CalibrateOptions) (CalibrationResult, error) {
	if opts.Replicas <= 0 {
		return CalibrationResult{}, fmt.Errorf("causal: replica count must be positive, got %d", opts.Replicas)
	}
	// The optimizer may return any vector inside the box, so the box must
	// contain only valid parameter sets. Both parameter constraints are
	// lower limits, making the lower corner the worst case.
	lower := make([]float64, len(opts.Bounds))
	for i, b := range opts.Bounds {
		lower[i] = b.Min
	}
	if err := ParamsFromVector(lower).Validate(); err != nil {
		return CalibrationResult{}, fmt.Errorf("causal: calibration bounds admit invalid parameters: %w", err)
	}
	if len(m.occupancy) == 0 {
		return CalibrationResult{}, errors.New("causal: no reference occupancy in window")
	}
	actual := stats.Floats(m.occupancy)
	objective := func(x []float64) float64 {
		sim, err := m.monteCarlo(ParamsFromVector(x), opts.Replicas, Sequential)
		if err != nil {
			return math.Inf(1)
		}
		return stats.MAPE(actual, stats.Floats(sim[:len(actual)]))
	}

	o := optimize.Options{
		MaxGenerations: opts.MaxGenerations,
		Seed:           m.calSeed,
	}
	if opts.UseCurrent {
		o.Initial = m.params.Vector()
	}

	start := time.Now()
	res, err := optimize.DifferentialEvolution(optimize.Problem{
		Objective: objective,
		Bounds:    opts.Bounds[:],
	}, o)
	if err != nil {
		return CalibrationResult{}, err
	}
	elapsed := time.Since(start)

	m.params = ParamsFromVector(res.X)
	result := CalibrationResult{
		Params:      m.params,
		MAPE:        res.F,
		Generations: res.Generations,
		Evaluations: res.Evaluations,
		Converged:   res.Converged,
		Elapsed:     elapsed,
	}
	if opts.Verbose {
		m.log.Infof("calibration finished in %.2fs after %d generations, mape=%.3f converged=%t",
			elapsed.Seconds(), res.Generations, res.F, res.Converged)
	}
	if err := m.sink.RecordCalibration(metrics.CalibrationEvent{
		MAPE:        res.F,
		Generations: res.Generations,
		Evaluations: res.Evaluations,
		Converged:   res.Converged,
		Duration:    elapsed,
		Time:        time.Now(),
	}); err != nil {
		m.log.Warnf("record calibration event: %v", err)
	}
	return result, nil
}

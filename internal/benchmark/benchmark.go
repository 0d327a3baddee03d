// Package benchmark sweeps a list of calibration dates, producing per-date
// forecast error statistics against the reference occupancy. One failed date
// does not abort the sweep; it is recorded and the run continues.
package benchmark

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lkirchmair/bedcast/core/causal"
	"github.com/lkirchmair/bedcast/core/dataset"
	"github.com/lkirchmair/bedcast/core/logger"
	"github.com/lkirchmair/bedcast/core/stats"
)

// Options configure one benchmark sweep.
type Options struct {
	// Dates are the calibration end dates; each produces one forecast.
	Dates        []time.Time
	ForecastDays int
	// Interval is the calibration window length in days, ending at the date.
	Interval       int
	Replicas       int
	Bounds         causal.Bounds
	MaxGenerations int
}

// DateResult holds the forecast outcome for one calibration date.
type DateResult struct {
	Actual      []int                    `json:"actual"`
	Prediction  []int                    `json:"prediction"`
	Diff        []int                    `json:"diff"`
	MAPE        float64                  `json:"mape"`
	MAE         float64                  `json:"mae"`
	MASE        float64                  `json:"mase"`
	Calibration causal.CalibrationResult `json:"calibration_stats"`
}

// Result is a completed sweep.
type Result struct {
	RunID        string                `json:"run_id"`
	ForecastDays int                   `json:"forecast_days"`
	Interval     int                   `json:"calibration_interval"`
	Region       string                `json:"region"`
	BedType      string                `json:"bed_type"`
	Successful   map[string]DateResult `json:"successful_forecasts"`
	Failed       map[string]string     `json:"failed_forecasts"`
	Dates        []string              `json:"dates"`
}

// Run calibrates and forecasts once per date in opts.Dates.
func Run(m *causal.Model, occ dataset.OccupancyProvider, opts Options, log logger.Logger) (*Result, error) {
	if opts.ForecastDays <= 0 {
		return nil, fmt.Errorf("benchmark: forecast days must be positive, got %d", opts.ForecastDays)
	}
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("benchmark: calibration interval must be positive, got %d", opts.Interval)
	}
	region, bedType, _, _, _ := m.Window()
	res := &Result{
		RunID:        uuid.NewString(),
		ForecastDays: opts.ForecastDays,
		Interval:     opts.Interval,
		Region:       region,
		BedType:      string(bedType),
		Successful:   make(map[string]DateResult),
		Failed:       make(map[string]string),
	}
	for _, date := range opts.Dates {
		date = dataset.Day(date)
		key := date.Format(time.DateOnly)
		res.Dates = append(res.Dates, key)

		dr, err := runDate(m, occ, opts, date, region, bedType)
		if err != nil {
			log.Warnf("forecast for %s failed: %v", key, err)
			res.Failed[key] = err.Error()
			continue
		}
		log.Infof("forecast for %s: mase=%.3f mape=%.3f", key, dr.MASE, dr.MAPE)
		res.Successful[key] = dr
	}
	return res, nil
}

// RunSweep repeats the date sweep once per candidate calibration interval
// length, returning one Result per interval. Running every interval against
// the same date list is how an interval length is tuned.
func RunSweep(m *causal.Model, occ dataset.OccupancyProvider, opts Options, intervals []int, log logger.Logger) ([]*Result, error) {
	if len(intervals) == 0 {
		return nil, fmt.Errorf("benchmark: no calibration intervals given")
	}
	results := make([]*Result, 0, len(intervals))
	for _, interval := range intervals {
		o := opts
		o.Interval = interval
		res, err := Run(m, occ, o, log)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func runDate(m *causal.Model, occ dataset.OccupancyProvider, opts Options, date time.Time, region string, bedType dataset.BedType) (DateResult, error) {
	from := date.AddDate(0, 0, -(opts.Interval - 1))
	if err := m.Update(causal.Update{From: &from, To: &date}); err != nil {
		return DateResult{}, err
	}
	cal, err := m.Calibrate(causal.CalibrateOptions{
		Replicas:       opts.Replicas,
		Bounds:         opts.Bounds,
		MaxGenerations: opts.MaxGenerations,
	})
	if err != nil {
		return DateResult{}, err
	}
	prediction, err := m.Predict(opts.ForecastDays, opts.Replicas, causal.Concurrent)
	if err != nil {
		return DateResult{}, err
	}
	actual, err := occ.Occupancy(date.AddDate(0, 0, 1), date.AddDate(0, 0, opts.ForecastDays), region, bedType)
	if err != nil {
		return DateResult{}, err
	}

	diff := make([]int, len(actual))
	for i := range actual {
		diff[i] = actual[i] - prediction[i]
	}
	fa, fp := stats.Floats(actual), stats.Floats(prediction)
	return DateResult{
		Actual:      actual,
		Prediction:  prediction,
		Diff:        diff,
		MAPE:        stats.MAPE(fa, fp),
		MAE:         stats.MAE(fa, fp),
		MASE:        stats.MASE(fa, fp),
		Calibration: cal,
	}, nil
}

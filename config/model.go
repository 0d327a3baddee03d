package config

import (
	"fmt"
	"time"

	"github.com/lkirchmair/bedcast/core/causal"
	"github.com/lkirchmair/bedcast/core/dataset"
	"github.com/lkirchmair/bedcast/core/optimize"
)

// DataConfig points at the CSV exports.
type DataConfig struct {
	CasesPath     string `json:"cases_path"`
	OccupancyPath string `json:"occupancy_path"`
}

// Validate checks mandatory fields.
func (c DataConfig) Validate() error {
	if c.CasesPath == "" {
		return fmt.Errorf("data.cases_path is required")
	}
	if c.OccupancyPath == "" {
		return fmt.Errorf("data.occupancy_path is required")
	}
	return nil
}

// GeneralConfig selects the region, bed type and time window the model
// works on.
type GeneralConfig struct {
	Region string `json:"region"`
	// BedType is "normal" or "ICU".
	BedType    string   `json:"bed_type"`
	Categories []string `json:"categories"`
	// FromDate and ToDate bound the calibration window, format 2006-01-02.
	FromDate     string `json:"from_date"`
	ToDate       string `json:"to_date"`
	ForecastDays int    `json:"forecast_days"`
}

// Validate checks mandatory fields.
func (c GeneralConfig) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("general.region is required")
	}
	switch dataset.BedType(c.BedType) {
	case dataset.BedNormal, dataset.BedICU:
	default:
		return fmt.Errorf("general.bed_type must be %q or %q, got %q",
			dataset.BedNormal, dataset.BedICU, c.BedType)
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("general.categories is required")
	}
	if _, _, err := c.Window(); err != nil {
		return err
	}
	if c.ForecastDays <= 0 {
		return fmt.Errorf("general.forecast_days must be positive")
	}
	return nil
}

// Window parses the configured date window.
func (c GeneralConfig) Window() (from, to time.Time, err error) {
	from, err = time.Parse(time.DateOnly, c.FromDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("general.from_date: %w", err)
	}
	to, err = time.Parse(time.DateOnly, c.ToDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("general.to_date: %w", err)
	}
	return from, to, nil
}

// ParamsConfig are the initial model parameters.
type ParamsConfig struct {
	HospitalizationP float64 `json:"hospitalization_p"`
	DelayLambda      float64 `json:"delay_lambda"`
	StayLoc          float64 `json:"stay_loc"`
	StayScale        float64 `json:"stay_scale"`
}

// ParamRange bounds one parameter during calibration.
type ParamRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// BoundsConfig is the calibration search box.
type BoundsConfig struct {
	HospitalizationP ParamRange `json:"hospitalization_p"`
	DelayLambda      ParamRange `json:"delay_lambda"`
	StayLoc          ParamRange `json:"stay_loc"`
	StayScale        ParamRange `json:"stay_scale"`
}

// ModelConfig configures the causal model and its calibration.
type ModelConfig struct {
	Params ParamsConfig `json:"params"`
	Bounds BoundsConfig `json:"bounds"`
	// Buffer is the number of lookback days seeding in-flight admissions.
	Buffer int `json:"buffer"`
	// MonteCarloIterations is the replica count per run.
	MonteCarloIterations int `json:"monte_carlo_iterations"`
	// MaxGenerations caps each calibration run.
	MaxGenerations   int    `json:"max_generations"`
	SimulationSeed   uint64 `json:"simulation_seed"`
	CalibrationSeed  uint64 `json:"calibration_seed"`
	UseCurrentAsSeed bool   `json:"use_current_as_seed"`
}

// SetDefaults applies sane defaults.
func (c *ModelConfig) SetDefaults() {
	if c.Bounds == (BoundsConfig{}) {
		c.Bounds = BoundsConfig{
			HospitalizationP: ParamRange{Min: 0, Max: 1},
			DelayLambda:      ParamRange{Min: 0, Max: 14},
			StayLoc:          ParamRange{Min: 1, Max: 30},
			StayScale:        ParamRange{Min: 0.1, Max: 15},
		}
	}
	if c.Buffer == 0 {
		c.Buffer = 30
	}
	if c.MonteCarloIterations == 0 {
		c.MonteCarloIterations = 32
	}
	if c.MaxGenerations == 0 {
		c.MaxGenerations = 100
	}
	if c.SimulationSeed == 0 {
		c.SimulationSeed = 0x883540db8384824a
	}
	if c.CalibrationSeed == 0 {
		c.CalibrationSeed = 0x2d06d0f2
	}
}

// Validate checks the parameter and bound values.
func (c ModelConfig) Validate() error {
	if err := c.CausalParams().Validate(); err != nil {
		return err
	}
	for name, r := range map[string]ParamRange{
		"hospitalization_p": c.Bounds.HospitalizationP,
		"delay_lambda":      c.Bounds.DelayLambda,
		"stay_loc":          c.Bounds.StayLoc,
		"stay_scale":        c.Bounds.StayScale,
	} {
		if r.Max < r.Min {
			return fmt.Errorf("model.bounds.%s: max %v below min %v", name, r.Max, r.Min)
		}
	}
	// The calibrated vector is installed as live parameters, so the search
	// box must not admit values the sampler rejects.
	if c.Bounds.StayScale.Min <= 0 {
		return fmt.Errorf("model.bounds.stay_scale.min must be positive")
	}
	if c.Bounds.DelayLambda.Min < 0 {
		return fmt.Errorf("model.bounds.delay_lambda.min must be non-negative")
	}
	if c.Buffer < 0 {
		return fmt.Errorf("model.buffer must be non-negative")
	}
	if c.MonteCarloIterations <= 0 {
		return fmt.Errorf("model.monte_carlo_iterations must be positive")
	}
	if c.MaxGenerations <= 0 {
		return fmt.Errorf("model.max_generations must be positive")
	}
	return nil
}

// CausalParams converts the configured parameters to the core type.
func (c ModelConfig) CausalParams() causal.Params {
	return causal.Params{
		HospitalizationP: c.Params.HospitalizationP,
		DelayLambda:      c.Params.DelayLambda,
		StayLoc:          c.Params.StayLoc,
		StayScale:        c.Params.StayScale,
	}
}

// CalibrationBounds converts the configured search box to the core type.
func (c ModelConfig) CalibrationBounds() causal.Bounds {
	return causal.Bounds{
		optimize.Bound{Min: c.Bounds.HospitalizationP.Min, Max: c.Bounds.HospitalizationP.Max},
		optimize.Bound{Min: c.Bounds.DelayLambda.Min, Max: c.Bounds.DelayLambda.Max},
		optimize.Bound{Min: c.Bounds.StayLoc.Min, Max: c.Bounds.StayLoc.Max},
		optimize.Bound{Min: c.Bounds.StayScale.Min, Max: c.Bounds.StayScale.Max},
	}
}

package causal

import "fmt"

// Params are the four free parameters of the causal model.
type Params struct {
	// HospitalizationP is the share of daily cases that become admissions.
	HospitalizationP float64 `json:"hospitalization_p"`
	// DelayLambda is the mean of the Poisson delay between a positive case
	// and the admission, in days.
	DelayLambda float64 `json:"delay_lambda"`
	// StayLoc is the location of the truncated-normal length-of-stay
	// distribution, in days.
	StayLoc float64 `json:"stay_loc"`
	// StayScale is the scale of the length-of-stay distribution. Must be
	// positive for sampling to be defined.
	StayScale float64 `json:"stay_scale"`
}

// Vector returns the parameters in calibration order.
func (p Params) Vector() []float64 {
	return []float64{p.HospitalizationP, p.DelayLambda, p.StayLoc, p.StayScale}
}

// ParamsFromVector is the inverse of Vector.
func ParamsFromVector(x []float64) Params {
	return Params{
		HospitalizationP: x[0],
		DelayLambda:      x[1],
		StayLoc:          x[2],
		StayScale:        x[3],
	}
}

// Validate rejects parameter values the sampler cannot work with.
func (p Params) Validate() error {
	if p.StayScale <= 0 {
		return fmt.Errorf("causal: stay scale must be positive, got %v", p.StayScale)
	}
	if p.DelayLambda < 0 {
		return fmt.Errorf("causal: delay lambda must be non-negative, got %v", p.DelayLambda)
	}
	return nil
}

// Package causal implements a mechanistic hospital-bed occupancy model.
//
// Daily case counts are converted into admissions, each admission draws a
// Poisson-distributed delay until hospitalization and a truncated-normal
// length of stay, and the resulting bed intervals are accumulated into an
// occupancy series. Monte Carlo replicas of this simulation are averaged to
// obtain the expected occupancy, and the four free parameters of the model
// are calibrated against observed occupancy with differential evolution.
//
// All randomness is derived from explicit seeds: a simulation run is a pure
// function of (parameters, case series, worker id, simulation seed), and a
// calibration run is a pure function of its inputs plus the calibration
// seed. A Model is not safe for concurrent use; callers that share one
// instance between simulate and calibrate must serialize access.
package causal

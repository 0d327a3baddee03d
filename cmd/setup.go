package cmd

import (
	"fmt"

	"github.com/lkirchmair/bedcast/config"
	"github.com/lkirchmair/bedcast/core/causal"
	"github.com/lkirchmair/bedcast/core/dataset"
	coremetrics "github.com/lkirchmair/bedcast/core/metrics"
	"github.com/lkirchmair/bedcast/infra/loader"
	"github.com/lkirchmair/bedcast/infra/logger"
	"github.com/lkirchmair/bedcast/infra/metrics"
)

// buildModel loads the data sets and constructs the model from cfg.
func buildModel(cfg *config.Config, log logger.Logger) (*causal.Model, *loader.OccupancyData, error) {
	cases, err := loader.LoadCases(cfg.Data.CasesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load cases: %w", err)
	}
	occupancy, err := loader.LoadOccupancy(cfg.Data.OccupancyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load occupancy: %w", err)
	}
	sink, err := metrics.NewFromConfig(cfg.Metrics)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics sinks: %w", err)
	}
	from, to, err := cfg.General.Window()
	if err != nil {
		return nil, nil, err
	}
	model, err := causal.New(causal.Config{
		Region:          cfg.General.Region,
		BedType:         dataset.BedType(cfg.General.BedType),
		Categories:      cfg.General.Categories,
		From:            from,
		To:              to,
		Buffer:          cfg.Model.Buffer,
		Params:          cfg.Model.CausalParams(),
		SimulationSeed:  cfg.Model.SimulationSeed,
		CalibrationSeed: cfg.Model.CalibrationSeed,
	}, cases, occupancy, log, sink)
	if err != nil {
		return nil, nil, fmt.Errorf("build model: %w", err)
	}
	return model, occupancy, nil
}

// prometheusAddress returns the listen address of the first configured
// Prometheus sink, or "" when none is configured.
func prometheusAddress(cfg coremetrics.Config) string {
	for _, s := range cfg.Sinks {
		if s.Type == "prometheus" && s.Address != "" {
			return s.Address
		}
	}
	return ""
}

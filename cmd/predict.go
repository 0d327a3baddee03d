package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lkirchmair/bedcast/config"
	"github.com/lkirchmair/bedcast/core/causal"
	"github.com/lkirchmair/bedcast/infra/logger"
	"github.com/lkirchmair/bedcast/pkg/export"
)

var (
	predictDays      int
	predictCalibrate bool
	predictOut       string
	predictFormat    string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Forecast occupancy beyond the configured window",
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().IntVarP(&predictDays, "days", "d", 0, "forecast horizon in days (default: general.forecast_days)")
	predictCmd.Flags().BoolVar(&predictCalibrate, "calibrate", false, "calibrate before forecasting")
	predictCmd.Flags().StringVarP(&predictOut, "output", "o", "", "write the forecast to this file")
	predictCmd.Flags().StringVar(&predictFormat, "format", "json", "output format: json or csv")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New("predict")
	model, _, err := buildModel(cfg, log)
	if err != nil {
		return err
	}

	if predictCalibrate {
		res, err := model.Calibrate(causal.CalibrateOptions{
			Replicas:       cfg.Model.MonteCarloIterations,
			Bounds:         cfg.Model.CalibrationBounds(),
			MaxGenerations: cfg.Model.MaxGenerations,
			UseCurrent:     cfg.Model.UseCurrentAsSeed,
			Verbose:        true,
		})
		if err != nil {
			return fmt.Errorf("calibrate: %w", err)
		}
		log.Infof("calibrated with mape=%.3f", res.MAPE)
	}

	days := predictDays
	if days == 0 {
		days = cfg.General.ForecastDays
	}
	series, err := model.Predict(days, cfg.Model.MonteCarloIterations, causal.Concurrent)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	_, _, _, to, _ := model.Window()
	from := to.AddDate(0, 0, 1)

	out := os.Stdout
	if predictOut != "" {
		f, err := os.Create(predictOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	switch strings.ToLower(predictFormat) {
	case "json":
		return export.WriteSeriesJSON(out, from, series)
	case "csv":
		return export.WriteSeriesCSV(out, from, series)
	default:
		return fmt.Errorf("unknown format %q", predictFormat)
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lkirchmair/bedcast/config"
	"github.com/lkirchmair/bedcast/core/causal"
	"github.com/lkirchmair/bedcast/infra/logger"
	"github.com/lkirchmair/bedcast/pkg/export"
)

var calibrateOut string

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Calibrate the model against the configured window",
	RunE:  runCalibrate,
}

func init() {
	calibrateCmd.Flags().StringVarP(&calibrateOut, "output", "o", "", "write the calibration result as JSON to this file")
	rootCmd.AddCommand(calibrateCmd)
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New("calibrate")
	model, _, err := buildModel(cfg, log)
	if err != nil {
		return err
	}

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

	if calibrateOut != "" {
		f, err := os.Create(calibrateOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteJSON(f, res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	fmt.Printf("mape=%.3f p=%.4f lambda=%.3f stay_loc=%.3f stay_scale=%.3f\n",
		res.MAPE, res.Params.HospitalizationP, res.Params.DelayLambda,
		res.Params.StayLoc, res.Params.StayScale)
	return nil
}

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lkirchmair/bedcast/config"
	"github.com/lkirchmair/bedcast/infra/logger"
	"github.com/lkirchmair/bedcast/internal/benchmark"
	"github.com/lkirchmair/bedcast/pkg/export"
)

var (
	benchDatesFile string
	benchIntervals []int
	benchOut       string
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Run a rolling calibrate-and-forecast sweep over a list of dates",
	RunE:  runBenchmark,
}

func init() {
	benchmarkCmd.Flags().StringVar(&benchDatesFile, "dates", "", "file with one calibration end date (2006-01-02) per line")
	benchmarkCmd.Flags().IntSliceVar(&benchIntervals, "intervals", []int{6}, "calibration window lengths in days; several values sweep the whole date list per length")
	benchmarkCmd.Flags().StringVarP(&benchOut, "output", "o", "benchmark.json", "result file")
	if err := benchmarkCmd.MarkFlagRequired("dates"); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(benchmarkCmd)
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	dates, err := readDates(benchDatesFile)
	if err != nil {
		return err
	}
	log := logger.New("benchmark")
	model, occupancy, err := buildModel(cfg, log)
	if err != nil {
		return err
	}

	results, err := benchmark.RunSweep(model, occupancy, benchmark.Options{
		Dates:          dates,
		ForecastDays:   cfg.General.ForecastDays,
		Replicas:       cfg.Model.MonteCarloIterations,
		Bounds:         cfg.Model.CalibrationBounds(),
		MaxGenerations: cfg.Model.MaxGenerations,
	}, benchIntervals, log)
	if err != nil {
		return err
	}

	f, err := os.Create(benchOut)
	if err != nil {
		return err
	}
	defer f.Close()
	// One interval writes a single report object, several write an array.
	var report any = results
	if len(results) == 1 {
		report = results[0]
	}
	if err := export.WriteJSON(f, report); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	for _, res := range results {
		log.Infof("benchmark %s (interval %d) finished: %d successful, %d failed",
			res.RunID, res.Interval, len(res.Successful), len(res.Failed))
	}
	return nil
}

func readDates(path string) ([]time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dates file: %w", err)
	}
	defer f.Close()

	var dates []time.Time
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d, err := time.Parse(time.DateOnly, line)
		if err != nil {
			return nil, fmt.Errorf("dates file: %w", err)
		}
		dates = append(dates, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("dates file %s contains no dates", path)
	}
	return dates, nil
}

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/lkirchmair/bedcast/core/metrics"
)

// PromSink records model events in Prometheus metrics.
type PromSink struct {
	simulations        *prometheus.CounterVec
	simulationDuration *prometheus.HistogramVec
	calibrations       *prometheus.CounterVec
	calibrationTime    prometheus.Histogram
	calibrationMAPE    prometheus.Gauge
	forecasts          prometheus.Counter
}

// NewPromSink registers model metrics on the default Prometheus registerer.
// The Prometheus server should be started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	simulations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bedcast_simulations_total",
		Help: "Total number of Monte Carlo simulation runs",
	}, []string{"mode"})
	simulationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bedcast_simulation_duration_seconds",
		Help:    "Wall time of Monte Carlo simulation runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	calibrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bedcast_calibrations_total",
		Help: "Total number of calibration runs",
	}, []string{"converged"})
	calibrationTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bedcast_calibration_duration_seconds",
		Help:    "Wall time of calibration runs",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
	calibrationMAPE := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bedcast_calibration_mape",
		Help: "Objective value of the most recent calibration run",
	})
	forecasts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bedcast_forecasts_total",
		Help: "Total number of forecast runs",
	})

	if err := reg.Register(simulations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			simulations = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(simulationDuration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			simulationDuration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(calibrations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			calibrations = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(calibrationTime); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			calibrationTime = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(calibrationMAPE); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			calibrationMAPE = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(forecasts); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			forecasts = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	return &PromSink{
		simulations:        simulations,
		simulationDuration: simulationDuration,
		calibrations:       calibrations,
		calibrationTime:    calibrationTime,
		calibrationMAPE:    calibrationMAPE,
		forecasts:          forecasts,
	}, nil
}

// RecordSimulation counts the run and observes its duration.
func (s *PromSink) RecordSimulation(ev coremetrics.SimulationEvent) error {
	s.simulations.WithLabelValues(ev.Mode).Inc()
	s.simulationDuration.WithLabelValues(ev.Mode).Observe(ev.Duration.Seconds())
	return nil
}

// RecordCalibration counts the run and exports its objective value.
func (s *PromSink) RecordCalibration(ev coremetrics.CalibrationEvent) error {
	s.calibrations.WithLabelValues(strconv.FormatBool(ev.Converged)).Inc()
	s.calibrationTime.Observe(ev.Duration.Seconds())
	s.calibrationMAPE.Set(ev.MAPE)
	return nil
}

// RecordForecast counts the run.
func (s *PromSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	s.forecasts.Inc()
	return nil
}

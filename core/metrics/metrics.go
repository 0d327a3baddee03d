// Package metrics defines the observability events emitted by the
// forecasting core and the sink interface used to record them.
package metrics

import "time"

// SimulationEvent describes one completed Monte Carlo run.
type SimulationEvent struct {
	Replicas int
	Mode     string
	Days     int
	Duration time.Duration
	Time     time.Time
}

// CalibrationEvent describes one completed calibration run.
type CalibrationEvent struct {
	MAPE        float64
	Generations int
	Evaluations int
	Converged   bool
	Duration    time.Duration
	Time        time.Time
}

// ForecastEvent describes one completed forecast.
type ForecastEvent struct {
	Days     int
	Replicas int
	Duration time.Duration
	Time     time.Time
}

// Sink records model events for observability purposes.
type Sink interface {
	RecordSimulation(ev SimulationEvent) error
	RecordCalibration(ev CalibrationEvent) error
	RecordForecast(ev ForecastEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordSimulation(SimulationEvent) error   { return nil }
func (NopSink) RecordCalibration(CalibrationEvent) error { return nil }
func (NopSink) RecordForecast(ForecastEvent) error       { return nil }

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSimulation forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSimulation(ev SimulationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSimulation(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordCalibration forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordCalibration(ev CalibrationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordCalibration(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordForecast forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordForecast(ev ForecastEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordForecast(ev); err != nil {
			return err
		}
	}
	return nil
}

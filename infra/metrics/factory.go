package metrics

import (
	"fmt"

	coremetrics "github.com/lkirchmair/bedcast/core/metrics"
)

// NewFromConfig builds a sink from the configured sink list. Zero sinks give
// a NopSink, one sink is returned directly, several are fanned out through a
// MultiSink.
func NewFromConfig(cfg coremetrics.Config) (coremetrics.Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var sinks []coremetrics.Sink
	for _, sc := range cfg.Sinks {
		switch sc.Type {
		case "nop":
			sinks = append(sinks, coremetrics.NopSink{})
		case "prometheus":
			sink, err := NewPromSink()
			if err != nil {
				return nil, fmt.Errorf("prometheus sink: %w", err)
			}
			sinks = append(sinks, sink)
		case "influx":
			sinks = append(sinks, NewInfluxSinkWithFallback(sc.URL, sc.Token, sc.Org, sc.Bucket))
		}
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return coremetrics.NewMultiSink(sinks...), nil
	}
}

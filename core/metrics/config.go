package metrics

import "fmt"

// SinkConfig selects and configures one sink backend.
type SinkConfig struct {
	// Type is one of "nop", "prometheus" or "influx".
	Type string `json:"type"`
	// Address is the listen address of the Prometheus /metrics server.
	Address string `json:"address"`
	// URL, Token, Org and Bucket configure the InfluxDB v2 client.
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// Config holds the sink list for an engine instance.
type Config struct {
	Sinks []SinkConfig `json:"sinks"`
}

// Validate checks that every sink type is known.
func (c Config) Validate() error {
	for _, s := range c.Sinks {
		switch s.Type {
		case "nop", "prometheus", "influx":
		default:
			return fmt.Errorf("unknown metrics sink type %q", s.Type)
		}
	}
	return nil
}

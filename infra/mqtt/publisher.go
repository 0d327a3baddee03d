// Package mqtt publishes forecast and calibration updates as retained JSON
// messages for dashboard consumers. The feed is one-way; the service never
// subscribes.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/lkirchmair/bedcast/core/causal"
	"github.com/lkirchmair/bedcast/infra/logger"
)

// Config holds the connection settings of the feed.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "bedcast"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "bedcast"
	}
}

// Validate checks mandatory fields when the feed is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt feed enabled but no broker configured")
	}
	return nil
}

// Publisher pushes model updates to the feed.
type Publisher interface {
	PublishForecast(from time.Time, series []int) error
	PublishCalibration(res causal.CalibrationResult) error
	Close()
}

// client is the slice of the paho API the publisher needs; tests substitute
// a fake.
type client interface {
	IsConnected() bool
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// PahoPublisher implements Publisher on an eclipse/paho connection.
type PahoPublisher struct {
	client client
	prefix string
	qos    byte
	log    logger.Logger
}

// NewPahoPublisher connects to the configured broker.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	c := mqtt.NewClient(opts)
	token := c.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &PahoPublisher{
		client: c,
		prefix: cfg.TopicPrefix,
		qos:    cfg.QoS,
		log:    logger.New("mqtt-feed"),
	}, nil
}

type forecastMessage struct {
	From        string    `json:"from"`
	Occupancy   []int     `json:"occupancy"`
	PublishedAt time.Time `json:"published_at"`
}

type calibrationMessage struct {
	Params      causal.Params `json:"params"`
	MAPE        float64       `json:"mape"`
	Generations int           `json:"generations"`
	Converged   bool          `json:"converged"`
	ElapsedSec  float64       `json:"elapsed_seconds"`
	PublishedAt time.Time     `json:"published_at"`
}

// PublishForecast publishes the forecast series starting at from. The
// message is retained so dashboards joining later still see the latest run.
func (p *PahoPublisher) PublishForecast(from time.Time, series []int) error {
	msg := forecastMessage{
		From:        from.Format(time.DateOnly),
		Occupancy:   series,
		PublishedAt: time.Now().UTC(),
	}
	return p.publish(p.prefix+"/forecast", msg)
}

// PublishCalibration publishes the outcome of a calibration run.
func (p *PahoPublisher) PublishCalibration(res causal.CalibrationResult) error {
	msg := calibrationMessage{
		Params:      res.Params,
		MAPE:        res.MAPE,
		Generations: res.Generations,
		Converged:   res.Converged,
		ElapsedSec:  res.Elapsed.Seconds(),
		PublishedAt: time.Now().UTC(),
	}
	return p.publish(p.prefix+"/calibration", msg)
}

func (p *PahoPublisher) publish(topic string, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	token := p.client.Publish(topic, p.qos, true, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.log.Debugw("published", map[string]any{"topic": topic, "bytes": len(payload)})
	return nil
}

// Close disconnects from the broker.
func (p *PahoPublisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

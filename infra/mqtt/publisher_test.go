package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkirchmair/bedcast/core/causal"
	"github.com/lkirchmair/bedcast/infra/logger"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	connected    bool
	disconnected bool
	publishErr   error
	messages     []published
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.messages = append(c.messages, published{
		topic:    topic,
		qos:      qos,
		retained: retained,
		payload:  payload.([]byte),
	})
	return &fakeToken{err: c.publishErr}
}

func newTestPublisher(c *fakeClient) *PahoPublisher {
	return &PahoPublisher{client: c, prefix: "bedcast", qos: 1, log: logger.NopLogger{}}
}

func TestPublishForecast(t *testing.T) {
	c := &fakeClient{connected: true}
	p := newTestPublisher(c)

	from := time.Date(2021, 3, 25, 0, 0, 0, 0, time.UTC)
	require.NoError(t, p.PublishForecast(from, []int{12, 14, 13}))

	require.Len(t, c.messages, 1)
	msg := c.messages[0]
	assert.Equal(t, "bedcast/forecast", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained, "dashboards joining later need the last run")

	var body struct {
		From      string `json:"from"`
		Occupancy []int  `json:"occupancy"`
	}
	require.NoError(t, json.Unmarshal(msg.payload, &body))
	assert.Equal(t, "2021-03-25", body.From)
	assert.Equal(t, []int{12, 14, 13}, body.Occupancy)
}

func TestPublishCalibration(t *testing.T) {
	c := &fakeClient{connected: true}
	p := newTestPublisher(c)

	require.NoError(t, p.PublishCalibration(causal.CalibrationResult{
		Params:      causal.Params{HospitalizationP: 0.1, DelayLambda: 2, StayLoc: 8, StayScale: 3},
		MAPE:        12.5,
		Generations: 40,
		Converged:   true,
		Elapsed:     1500 * time.Millisecond,
	}))

	require.Len(t, c.messages, 1)
	msg := c.messages[0]
	assert.Equal(t, "bedcast/calibration", msg.topic)
	assert.True(t, msg.retained)

	var body struct {
		MAPE       float64 `json:"mape"`
		Converged  bool    `json:"converged"`
		ElapsedSec float64 `json:"elapsed_seconds"`
	}
	require.NoError(t, json.Unmarshal(msg.payload, &body))
	assert.InDelta(t, 12.5, body.MAPE, 1e-12)
	assert.True(t, body.Converged)
	assert.InDelta(t, 1.5, body.ElapsedSec, 1e-12)
}

func TestPublishError(t *testing.T) {
	c := &fakeClient{connected: true, publishErr: errors.New("broker gone")}
	p := newTestPublisher(c)

	err := p.PublishForecast(time.Now(), []int{1})
	assert.ErrorContains(t, err, "broker gone")
}

func TestClose(t *testing.T) {
	c := &fakeClient{connected: true}
	newTestPublisher(c).Close()
	assert.True(t, c.disconnected)

	c = &fakeClient{connected: false}
	newTestPublisher(c).Close()
	assert.False(t, c.disconnected, "no disconnect without a connection")
}

func TestConfigDefaultsAndValidation(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	assert.Equal(t, "bedcast", cfg.ClientID)
	assert.Equal(t, "bedcast", cfg.TopicPrefix)

	assert.NoError(t, Config{}.Validate(), "disabled feed needs nothing")
	assert.Error(t, Config{Enabled: true}.Validate())
	assert.NoError(t, Config{Enabled: true, Broker: "tcp://localhost:1883"}.Validate())
}

// v0
// internal/telemetry/mqtt.go
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTSink publishes records as JSON on a fixed topic with QoS 0.
type MQTTSink struct {
	client mqtt.Client
	topic  string
}

// NewMQTTSink connects to brokerAddr (e.g. tcp://localhost:1883).
func NewMQTTSink(brokerAddr, clientID, topic string, timeout time.Duration) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerAddr).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout)
	c := mqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect %s: timed out after %s", brokerAddr, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", brokerAddr, err)
	}
	return newMQTTSink(c, topic), nil
}

func newMQTTSink(c mqtt.Client, topic string) *MQTTSink {
	return &MQTTSink{client: c, topic: topic}
}

func (m *MQTTSink) Publish(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	token := m.client.Publish(m.topic, 0, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", m.topic, err)
	}
	return nil
}

func (m *MQTTSink) Close() {
	m.client.Disconnect(250)
}

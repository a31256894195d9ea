package connectivity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

var ErrUnknownSignal = errors.New("unknown connectivity signal")

// MQTTSource relays connectivity signals published on an MQTT topic to an
// Observer. Payloads are either the bare words "online"/"offline" or a JSON
// object {"online": bool}.
type MQTTSource struct {
	client   mqtt.Client
	topic    string
	qos      byte
	observer *Observer
	logger   logrus.FieldLogger
}

// NewMQTTSource creates a source for topic. Call Start to subscribe.
func NewMQTTSource(client mqtt.Client, topic string, observer *Observer, logger logrus.FieldLogger) *MQTTSource {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MQTTSource{
		client:   client,
		topic:    topic,
		qos:      1,
		observer: observer,
		logger:   logger,
	}
}

// NewMQTTClient connects to broker and returns the client.
func NewMQTTClient(broker, clientID string, logger logrus.FieldLogger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.WithError(err).Warn("MQTT connection lost")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", err)
	}
	return client, nil
}

// Start subscribes to the connectivity topic.
func (s *MQTTSource) Start() error {
	token := s.client.Subscribe(s.topic, s.qos, s.onMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.topic, err)
	}
	s.logger.WithField("topic", s.topic).Info("Listening for connectivity signals")
	return nil
}

// Stop unsubscribes from the topic.
func (s *MQTTSource) Stop() {
	s.client.Unsubscribe(s.topic).Wait()
}

func (s *MQTTSource) onMessage(_ mqtt.Client, msg mqtt.Message) {
	if err := s.Apply(msg.Payload()); err != nil {
		s.logger.WithError(err).WithField("topic", msg.Topic()).Warn("Ignoring connectivity message")
	}
}

// Apply parses a payload and forwards it to the observer.
func (s *MQTTSource) Apply(payload []byte) error {
	online, err := ParseSignal(payload)
	if err != nil {
		return err
	}
	s.observer.Set(online)
	return nil
}

// ParseSignal decodes a connectivity payload.
func ParseSignal(payload []byte) (bool, error) {
	text := strings.ToLower(strings.TrimSpace(string(payload)))
	switch text {
	case "online":
		return true, nil
	case "offline":
		return false, nil
	}

	var body struct {
		Online *bool `json:"online"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Online == nil {
		return false, fmt.Errorf("%w: %q", ErrUnknownSignal, text)
	}
	return *body.Online, nil
}

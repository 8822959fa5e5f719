package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/zwavehub/zwave-hub-server/internal/config"
)

// ForwarderService relays hub notifications and device events to the
// configured external systems: an MQTT broker and an HTTP webhook.
type ForwarderService struct {
	nc  *nats.Conn
	cfg config.IntegrationConfig

	mqttClient mqtt.Client
	httpClient *http.Client
}

// NewForwarderService creates a forwarder
func NewForwarderService(nc *nats.Conn, cfg config.IntegrationConfig) *ForwarderService {
	timeout := cfg.Webhook.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &ForwarderService{
		nc:  nc,
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Start subscribes to hub notifications and device events and blocks
// until the context is canceled.
func (s *ForwarderService) Start(ctx context.Context, notifySubject string) error {
	if !s.cfg.MQTT.Enabled && !s.cfg.Webhook.Enabled {
		log.Info().Msg("No integrations enabled, forwarder idle")
		<-ctx.Done()
		return ctx.Err()
	}

	if s.cfg.MQTT.Enabled {
		if err := s.connectMQTT(); err != nil {
			log.Error().Err(err).Msg("Failed to connect MQTT client")
		}
	}

	subNotify, err := s.nc.Subscribe(notifySubject, func(msg *nats.Msg) {
		s.forward("notification", msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe to notifications: %w", err)
	}

	subEvents, err := s.nc.Subscribe("hub.device.*.event", func(msg *nats.Msg) {
		s.forward("event", msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe to device events: %w", err)
	}

	log.Info().
		Bool("mqtt", s.cfg.MQTT.Enabled).
		Bool("webhook", s.cfg.Webhook.Enabled).
		Msg("Integration forwarder started")

	<-ctx.Done()

	subNotify.Unsubscribe()
	subEvents.Unsubscribe()
	s.closeMQTT()

	return ctx.Err()
}

// forward relays one message to every enabled integration
func (s *ForwarderService) forward(kind string, data []byte) {
	envelope, err := json.Marshal(struct {
		Kind      string          `json:"kind"`
		Timestamp time.Time       `json:"timestamp"`
		Payload   json.RawMessage `json:"payload"`
	}{
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   data,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal forward envelope")
		return
	}

	if s.cfg.Webhook.Enabled {
		go s.forwardToWebhook(envelope)
	}
	if s.cfg.MQTT.Enabled {
		go s.forwardToMQTT(kind, envelope)
	}
}

// forwardToWebhook posts one message to the configured webhook
func (s *ForwarderService) forwardToWebhook(data []byte) {
	req, err := http.NewRequest(http.MethodPost, s.cfg.Webhook.URL, bytes.NewBuffer(data))
	if err != nil {
		log.Error().Err(err).Msg("Failed to create webhook request")
		return
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.cfg.Webhook.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("url", s.cfg.Webhook.URL).Msg("Webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Error().
			Int("status", resp.StatusCode).
			Str("url", s.cfg.Webhook.URL).
			Msg("Webhook rejected message")
		return
	}

	log.Debug().Str("url", s.cfg.Webhook.URL).Msg("Message forwarded to webhook")
}

// forwardToMQTT publishes one message under the configured topic
func (s *ForwarderService) forwardToMQTT(kind string, data []byte) {
	if s.mqttClient == nil || !s.mqttClient.IsConnected() {
		log.Warn().Msg("MQTT client not connected, message dropped")
		return
	}

	topic := s.cfg.MQTT.Topic + "/" + kind

	token := s.mqttClient.Publish(topic, s.cfg.MQTT.QoS, false, data)
	if !token.WaitTimeout(5 * time.Second) {
		log.Error().Str("topic", topic).Msg("MQTT publish timeout")
		return
	}
	if err := token.Error(); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("MQTT publish failed")
		return
	}

	log.Debug().Str("topic", topic).Msg("Message forwarded to MQTT")
}

// connectMQTT establishes the broker connection
func (s *ForwarderService) connectMQTT() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.MQTT.Broker)
	opts.SetClientID(s.cfg.MQTT.ClientID)

	if s.cfg.MQTT.Username != "" {
		opts.SetUsername(s.cfg.MQTT.Username)
		opts.SetPassword(s.cfg.MQTT.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetKeepAlive(30 * time.Second)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Info().Str("broker", s.cfg.MQTT.Broker).Msg("MQTT client connected")
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Error().Err(err).Str("broker", s.cfg.MQTT.Broker).Msg("MQTT connection lost")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	s.mqttClient = client
	return nil
}

// closeMQTT disconnects the broker connection
func (s *ForwarderService) closeMQTT() {
	if s.mqttClient != nil && s.mqttClient.IsConnected() {
		s.mqttClient.Disconnect(250)
		log.Info().Msg("MQTT client disconnected")
	}
}

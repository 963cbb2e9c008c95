// Package pubsub provides implementations of message publishers.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/resident-x/go-solarmax/internal/config"
	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/resident-x/go-solarmax/internal/homeassistant"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// NoopPublisher is a no-operation implementation of the MessagePublisher interface.
type NoopPublisher struct{}

// NewNoopPublisher creates a new no-operation publisher.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Connect is a no-op for the NoopPublisher.
func (p *NoopPublisher) Connect(_ context.Context) error {
	return nil
}

// Publish is a no-op for the NoopPublisher.
func (p *NoopPublisher) Publish(_ context.Context, _ *domain.StateUpdate) error {
	return nil
}

// Close is a no-op for the NoopPublisher.
func (p *NoopPublisher) Close() error {
	return nil
}

// MQTTPublisher implements the MessagePublisher interface for MQTT.
type MQTTPublisher struct {
	config        *config.Config
	client        mqtt.Client
	clientFactory func(*config.Config, *MQTTPublisher) mqtt.Client
	haDiscovery   *homeassistant.AutoDiscovery
	logger        zerolog.Logger

	mu                sync.RWMutex
	connected         bool
	discoveredSensors map[string]bool
	lastDiscoveryTime time.Time
	birthSubscribed   bool
	subscriptions     map[string]mqtt.MessageHandler
}

// NewMQTTPublisher creates a new MQTT publisher. version is reported to Home Assistant as the
// device software version.
func NewMQTTPublisher(cfg *config.Config, version string) (*MQTTPublisher, error) {
	haDiscovery, err := homeassistant.New(homeassistant.Config{
		Enabled:            cfg.MQTT.HomeAssistantAutoDiscovery.Enabled,
		DiscoveryPrefix:    cfg.MQTT.HomeAssistantAutoDiscovery.DiscoveryPrefix,
		DeviceName:         cfg.Inverter.DeviceName,
		DeviceManufacturer: cfg.MQTT.HomeAssistantAutoDiscovery.DeviceManufacturer,
		DeviceModel:        cfg.MQTT.HomeAssistantAutoDiscovery.DeviceModel,
		SwVersion:          version,
		RetainDiscovery:    cfg.MQTT.HomeAssistantAutoDiscovery.RetainDiscovery,
		Language:           cfg.Language,
	}, cfg.MQTT.Topic)
	if err != nil {
		return nil, fmt.Errorf("failed to setup Home Assistant discovery: %w", err)
	}

	return &MQTTPublisher{
		config:            cfg,
		clientFactory:     createMQTTClient,
		haDiscovery:       haDiscovery,
		logger:            log.With().Str("component", "mqtt").Logger(),
		discoveredSensors: make(map[string]bool),
		subscriptions:     make(map[string]mqtt.MessageHandler),
	}, nil
}

// NewMQTTPublisherWithClient creates a new MQTT publisher with a custom client (for testing).
func NewMQTTPublisherWithClient(cfg *config.Config, version string, client mqtt.Client) (*MQTTPublisher, error) {
	p, err := NewMQTTPublisher(cfg, version)
	if err != nil {
		return nil, err
	}
	p.client = client
	return p, nil
}

// createMQTTClient is the default factory function for creating MQTT clients.
// The broker marks the device offline through the will message when the connection drops.
func createMQTTClient(cfg *config.Config, p *MQTTPublisher) mqtt.Client {
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port)).
		SetClientID("go-solarmax-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(10 * time.Second).
		SetConnectTimeout(connectTimeout).
		SetWriteTimeout(publishTimeout).
		SetKeepAlive(30 * time.Second).
		SetCleanSession(true).
		SetWill(p.haDiscovery.GetAvailabilityTopic(), p.haDiscovery.CreateAvailabilityMessage(false), 0, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	if cfg.MQTT.Username != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}

	return mqtt.NewClient(opts)
}

// Connect establishes a connection to the MQTT broker. When the broker is not reachable
// within the connect timeout the client keeps retrying in the background and an error is
// returned.
func (p *MQTTPublisher) Connect(ctx context.Context) error {
	if !p.config.MQTT.Enabled {
		return nil
	}

	p.mu.Lock()
	if p.client == nil {
		p.client = p.clientFactory(p.config, p)
	}
	client := p.client
	p.mu.Unlock()

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	connToken := client.Connect()

	select {
	case <-connectCtx.Done():
		return fmt.Errorf("failed to connect to MQTT broker: timeout after %s", connectTimeout)
	case <-connToken.Done():
		if connToken.Error() != nil {
			return fmt.Errorf("failed to connect to MQTT broker: %w", connToken.Error())
		}
	}

	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()

	p.afterConnect()
	return nil
}

// onConnect runs on every (re)connection made by the paho client.
func (p *MQTTPublisher) onConnect(_ mqtt.Client) {
	p.logger.Info().Msg("MQTT connection established")

	p.mu.Lock()
	p.connected = true
	p.birthSubscribed = false
	p.discoveredSensors = make(map[string]bool)
	p.lastDiscoveryTime = time.Time{}
	p.mu.Unlock()

	p.afterConnect()
}

// onConnectionLost runs when the paho client loses the broker.
func (p *MQTTPublisher) onConnectionLost(_ mqtt.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.birthSubscribed = false
	p.mu.Unlock()

	p.logger.Warn().Err(err).Msg("MQTT connection lost")
}

// afterConnect restores subscriptions. Subscribing again on reconnect is required
// because the session is clean.
func (p *MQTTPublisher) afterConnect() {
	if p.config.MQTT.HomeAssistantAutoDiscovery.Enabled && p.config.MQTT.HomeAssistantAutoDiscovery.ListenToBirthMessage {
		p.subscribeToBirthMessage()
	}

	p.mu.RLock()
	subscriptions := make(map[string]mqtt.MessageHandler, len(p.subscriptions))
	for topic, handler := range p.subscriptions {
		subscriptions[topic] = handler
	}
	p.mu.RUnlock()

	for topic, handler := range subscriptions {
		if err := p.subscribe(topic, handler); err != nil {
			p.logger.Warn().Err(err).Str("topic", topic).Msg("Failed to restore subscription")
		}
	}
}

// Subscribe registers a handler for topic. The subscription is made now when connected
// and restored after every reconnection.
func (p *MQTTPublisher) Subscribe(topic string, handler mqtt.MessageHandler) error {
	if !p.config.MQTT.Enabled {
		return nil
	}

	p.mu.Lock()
	p.subscriptions[topic] = handler
	connected := p.connected
	p.mu.Unlock()

	if !connected {
		return nil
	}
	return p.subscribe(topic, handler)
}

func (p *MQTTPublisher) subscribe(topic string, handler mqtt.MessageHandler) error {
	token := p.client.Subscribe(topic, 0, handler)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
	}

	p.logger.Debug().Str("topic", topic).Msg("Subscribed")
	return nil
}

// subscribeToBirthMessage subscribes to Home Assistant birth messages.
func (p *MQTTPublisher) subscribeToBirthMessage() {
	p.mu.RLock()
	skip := p.birthSubscribed || !p.connected
	p.mu.RUnlock()
	if skip {
		return
	}

	birthTopic := fmt.Sprintf("%s/status", p.config.MQTT.HomeAssistantAutoDiscovery.DiscoveryPrefix)

	token := p.client.Subscribe(birthTopic, 0, p.handleBirthMessage)
	if token.Wait() && token.Error() != nil {
		p.logger.Warn().Err(token.Error()).Str("topic", birthTopic).Msg("Failed to subscribe to birth message")
		return
	}

	p.mu.Lock()
	p.birthSubscribed = true
	p.mu.Unlock()

	p.logger.Info().Str("topic", birthTopic).Msg("Subscribed to Home Assistant birth messages")
}

// handleBirthMessage clears the discovery cache when Home Assistant comes online,
// so the next publish announces every sensor again.
func (p *MQTTPublisher) handleBirthMessage(_ mqtt.Client, msg mqtt.Message) {
	payload := string(msg.Payload())

	p.logger.Debug().
		Str("topic", msg.Topic()).
		Str("payload", payload).
		Msg("Received Home Assistant birth message")

	if payload == "online" {
		p.logger.Info().Msg("Home Assistant came online, triggering auto-discovery refresh")
		p.mu.Lock()
		p.discoveredSensors = make(map[string]bool)
		p.lastDiscoveryTime = time.Time{}
		p.mu.Unlock()
	}
}

// shouldRediscover checks if we should perform periodic rediscovery.
// Callers hold p.mu.
func (p *MQTTPublisher) shouldRediscover() bool {
	if p.lastDiscoveryTime.IsZero() {
		return true
	}

	if p.config.MQTT.HomeAssistantAutoDiscovery.RediscoveryInterval <= 0 {
		return false
	}

	interval := time.Duration(p.config.MQTT.HomeAssistantAutoDiscovery.RediscoveryInterval) * time.Hour
	return time.Since(p.lastDiscoveryTime) >= interval
}

// Publish sends the outcome of a poll cycle: discovery messages when due, the state
// document and the availability of the measurement sensors.
func (p *MQTTPublisher) Publish(ctx context.Context, update *domain.StateUpdate) error {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()

	if !p.config.MQTT.Enabled || !connected {
		return nil
	}

	if p.config.MQTT.HomeAssistantAutoDiscovery.Enabled {
		if err := p.publishHomeAssistantDiscovery(ctx); err != nil {
			return fmt.Errorf("failed to publish Home Assistant discovery: %w", err)
		}
	}

	payload := p.haDiscovery.StatePayload(update)
	if debugJSON, err := json.Marshal(payload); err == nil {
		p.logger.Debug().
			Str("topic", p.config.MQTT.Topic).
			RawJSON("state", debugJSON).
			Msg("Publishing inverter state")
	}

	if err := p.publishJSON(ctx, p.config.MQTT.Topic, p.config.MQTT.Retain, payload); err != nil {
		return fmt.Errorf("failed to publish state: %w", err)
	}

	availability := p.haDiscovery.CreateAvailabilityMessage(update.Available())
	if err := p.publishRaw(ctx, p.haDiscovery.GetAvailabilityTopic(), true, availability); err != nil {
		return fmt.Errorf("failed to publish availability message: %w", err)
	}

	return nil
}

// publishHomeAssistantDiscovery publishes the discovery message of every sensor not yet
// announced, or all of them when rediscovery is due.
func (p *MQTTPublisher) publishHomeAssistantDiscovery(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rediscover := p.shouldRediscover()

	for topic, message := range p.haDiscovery.GenerateDiscoveryMessages() {
		if p.discoveredSensors[topic] && !rediscover {
			continue
		}

		messageJSON, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("failed to marshal discovery message: %w", err)
		}

		if err := p.publishRaw(ctx, topic, p.config.MQTT.HomeAssistantAutoDiscovery.RetainDiscovery, messageJSON); err != nil {
			return fmt.Errorf("failed to publish discovery message to %s: %w", topic, err)
		}

		p.discoveredSensors[topic] = true
	}

	if rediscover {
		p.lastDiscoveryTime = time.Now()
		p.logger.Info().Int("sensors", len(p.discoveredSensors)).Msg("Published Home Assistant discovery")
	}

	return nil
}

// publishJSON marshals data and publishes it to topic.
func (p *MQTTPublisher) publishJSON(ctx context.Context, topic string, retain bool, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data to JSON: %w", err)
	}
	return p.publishRaw(ctx, topic, retain, jsonData)
}

// publishRaw publishes payload and waits for completion or the publish timeout.
func (p *MQTTPublisher) publishRaw(ctx context.Context, topic string, retain bool, payload interface{}) error {
	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	token := p.client.Publish(topic, 0, retain, payload)

	select {
	case <-publishCtx.Done():
		return fmt.Errorf("publish timeout after %s", publishTimeout)
	case <-token.Done():
		if token.Error() != nil {
			return fmt.Errorf("failed to publish message: %w", token.Error())
		}
	}

	return nil
}

// Close marks the device offline and terminates the connection to the MQTT broker.
func (p *MQTTPublisher) Close() error {
	p.mu.Lock()
	client := p.client
	connected := p.connected
	p.connected = false
	p.mu.Unlock()

	if client == nil {
		return nil
	}

	if connected {
		token := client.Publish(p.haDiscovery.GetAvailabilityTopic(), 0, true, p.haDiscovery.CreateAvailabilityMessage(false))
		if !token.WaitTimeout(time.Second) {
			p.logger.Debug().Msg("Timed out publishing offline availability")
		}
	}

	client.Disconnect(250)
	return nil
}

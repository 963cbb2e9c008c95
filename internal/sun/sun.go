// Package sun provides day/night signals used to tell a sleeping inverter from a broken one.
package sun

import (
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/nathan-osman/go-sunrise"
	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Home Assistant sun.sun states.
const (
	StateBelowHorizon = "below_horizon"
	StateAboveHorizon = "above_horizon"
)

// DefaultStateTopic is where Home Assistant's MQTT statestream publishes the sun.sun state.
const DefaultStateTopic = "homeassistant/sun/sun/state"

// MQTTStateProvider follows the Home Assistant sun.sun entity over MQTT.
// It has no answer until the first state message arrives.
type MQTTStateProvider struct {
	topic  string
	below  bool
	known  bool
	mutex  sync.RWMutex
	logger zerolog.Logger
}

// NewMQTTStateProvider creates a provider for topic.
func NewMQTTStateProvider(topic string) *MQTTStateProvider {
	if topic == "" {
		topic = DefaultStateTopic
	}
	return &MQTTStateProvider{
		topic:  topic,
		logger: log.With().Str("component", "sun").Str("source", "mqtt").Logger(),
	}
}

// Topic returns the state topic to subscribe to.
func (p *MQTTStateProvider) Topic() string {
	return p.topic
}

// HandleMessage is the MQTT subscription callback.
func (p *MQTTStateProvider) HandleMessage(_ mqtt.Client, msg mqtt.Message) {
	state := strings.Trim(strings.TrimSpace(string(msg.Payload())), `"`)

	p.mutex.Lock()
	defer p.mutex.Unlock()

	switch state {
	case StateBelowHorizon:
		p.below, p.known = true, true
	case StateAboveHorizon:
		p.below, p.known = false, true
	default:
		p.known = false
		p.logger.Debug().Str("topic", msg.Topic()).Str("state", state).Msg("Ignoring unknown sun state")
		return
	}

	p.logger.Debug().Str("state", state).Msg("Sun state updated")
}

// IsBelowHorizon implements domain.SunPositionProvider.
func (p *MQTTStateProvider) IsBelowHorizon() (bool, bool) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.below, p.known
}

// AstronomicalProvider computes sunrise and sunset for a fixed location.
type AstronomicalProvider struct {
	latitude  float64
	longitude float64
	now       func() time.Time
}

// NewAstronomicalProvider creates a provider for the given coordinates.
func NewAstronomicalProvider(latitude, longitude float64) *AstronomicalProvider {
	return &AstronomicalProvider{
		latitude:  latitude,
		longitude: longitude,
		now:       time.Now,
	}
}

// IsBelowHorizon implements domain.SunPositionProvider.
// The answer is unknown during polar day or night, when the sun does not rise or set.
func (p *AstronomicalProvider) IsBelowHorizon() (bool, bool) {
	now := p.now().UTC()

	// The UTC date of "now" can differ from the local date far from Greenwich,
	// so check the neighbouring days too.
	known := false
	for offset := -1; offset <= 1; offset++ {
		day := now.AddDate(0, 0, offset)
		rise, set := sunrise.SunriseSunset(p.latitude, p.longitude, day.Year(), day.Month(), day.Day())
		if rise.IsZero() || set.IsZero() {
			continue
		}
		known = true
		if !now.Before(rise) && now.Before(set) {
			return false, true
		}
	}

	return known, known
}

// Chain asks each provider in turn and returns the first known answer.
type Chain []domain.SunPositionProvider

// IsBelowHorizon implements domain.SunPositionProvider.
func (c Chain) IsBelowHorizon() (bool, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if below, known := p.IsBelowHorizon(); known {
			return below, true
		}
	}
	return false, false
}

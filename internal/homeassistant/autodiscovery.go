// Package homeassistant provides MQTT auto-discovery support for Home Assistant integration.
package homeassistant

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed layouts/solarmax_sensors.yaml
var solarmaxSensorsYAML []byte

// English status texts reported by the status sensor when a poll fails.
const (
	StatusOfflineNight     = "Offline (Night)"
	StatusConnectionFailed = "Connection Failed"
)

// Config holds the Home Assistant auto-discovery configuration.
type Config struct {
	Enabled            bool
	DiscoveryPrefix    string
	DeviceName         string
	DeviceManufacturer string
	DeviceModel        string
	SwVersion          string
	RetainDiscovery    bool
	// Language selects the status texts. Empty and "en" use the English layout.
	Language string
}

// SensorConfig represents a sensor configuration from the layouts YAML.
type SensorConfig struct {
	Name              string `yaml:"name"`
	DeviceClass       string `yaml:"device_class,omitempty"`
	UnitOfMeasurement string `yaml:"unit_of_measurement,omitempty"`
	StateClass        string `yaml:"state_class,omitempty"`
	Category          string `yaml:"category"`
	Icon              string `yaml:"icon,omitempty"`
	StatusMapping     string `yaml:"status_mapping,omitempty"`
	AlwaysAvailable   bool   `yaml:"always_available,omitempty"`
}

// Translation overrides the English texts of the layout for one language.
type Translation struct {
	OfflineNight     string                            `yaml:"offline_night"`
	ConnectionFailed string                            `yaml:"connection_failed"`
	StatusMappings   map[string]map[interface{}]string `yaml:"status_mappings"`
}

// LayoutConfig represents the full layout configuration for Home Assistant sensors.
type LayoutConfig struct {
	Version        string                            `yaml:"version"`
	Description    string                            `yaml:"description"`
	StatusMappings map[string]map[interface{}]string `yaml:"status_mappings"`
	Translations   map[string]Translation            `yaml:"translations"`
	Sensors        map[string]SensorConfig           `yaml:"sensors"`
}

// DiscoveryMessage represents a Home Assistant MQTT discovery message.
type DiscoveryMessage struct {
	Name                string     `json:"name"`
	UniqueID            string     `json:"unique_id"`
	ObjectID            string     `json:"object_id,omitempty"`
	StateTopic          string     `json:"state_topic"`
	ValueTemplate       string     `json:"value_template"`
	DeviceClass         string     `json:"device_class,omitempty"`
	UnitOfMeasurement   string     `json:"unit_of_measurement,omitempty"`
	StateClass          string     `json:"state_class,omitempty"`
	Icon                string     `json:"icon,omitempty"`
	EntityCategory      string     `json:"entity_category,omitempty"`
	Device              DeviceInfo `json:"device"`
	AvailabilityTopic   string     `json:"availability_topic,omitempty"`
	PayloadAvailable    string     `json:"payload_available,omitempty"`
	PayloadNotAvailable string     `json:"payload_not_available,omitempty"`
}

// DeviceInfo represents device information for Home Assistant.
type DeviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model,omitempty"`
	SwVersion    string   `json:"sw_version,omitempty"`
}

// AutoDiscovery handles Home Assistant MQTT auto-discovery.
type AutoDiscovery struct {
	config       Config
	layoutConfig *LayoutConfig
	baseTopic    string
	nodeID       string

	offlineNight     string
	connectionFailed string
}

// New creates a new Home Assistant auto-discovery instance.
// The node id used in topics and unique ids is derived from the device name.
func New(config Config, baseTopic string) (*AutoDiscovery, error) {
	ad := &AutoDiscovery{
		config:           config,
		baseTopic:        baseTopic,
		nodeID:           NodeID(config.DeviceName),
		offlineNight:     StatusOfflineNight,
		connectionFailed: StatusConnectionFailed,
	}

	if err := ad.loadLayoutConfig(); err != nil {
		return nil, fmt.Errorf("failed to load layout config: %w", err)
	}

	if err := ad.applyLanguage(config.Language); err != nil {
		return nil, err
	}

	return ad, nil
}

// NodeID normalizes a device name into an identifier usable in MQTT topics.
func NodeID(deviceName string) string {
	id := strings.ToLower(strings.TrimSpace(deviceName))
	id = strings.NewReplacer(" ", "_", "-", "_", "/", "_", "#", "_", "+", "_").Replace(id)
	if id == "" {
		return "solarmax"
	}
	return id
}

// loadLayoutConfig loads the sensor layout from embedded YAML.
func (ad *AutoDiscovery) loadLayoutConfig() error {
	var config LayoutConfig
	if err := yaml.Unmarshal(solarmaxSensorsYAML, &config); err != nil {
		return fmt.Errorf("failed to unmarshal Solarmax sensors layout: %w", err)
	}

	ad.layoutConfig = &config
	log.Debug().
		Str("version", config.Version).
		Int("sensor_count", len(config.Sensors)).
		Msg("Home Assistant layout configuration loaded")

	return nil
}

// applyLanguage replaces the English texts with the translation for language.
func (ad *AutoDiscovery) applyLanguage(language string) error {
	if language == "" || language == "en" {
		return nil
	}

	translation, ok := ad.layoutConfig.Translations[language]
	if !ok {
		return fmt.Errorf("no layout translation for language %q", language)
	}

	if translation.OfflineNight != "" {
		ad.offlineNight = translation.OfflineNight
	}
	if translation.ConnectionFailed != "" {
		ad.connectionFailed = translation.ConnectionFailed
	}
	for key, mapping := range translation.StatusMappings {
		ad.layoutConfig.StatusMappings[key] = mapping
	}

	log.Debug().Str("language", language).Msg("Home Assistant layout translation applied")
	return nil
}

// NodeID returns the node id used in discovery topics.
func (ad *AutoDiscovery) NodeID() string {
	return ad.nodeID
}

// Sensors returns the field codes known to the layout, sorted.
func (ad *AutoDiscovery) Sensors() []string {
	names := make([]string, 0, len(ad.layoutConfig.Sensors))
	for name := range ad.layoutConfig.Sensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sensor returns the layout entry for a field code.
func (ad *AutoDiscovery) Sensor(field string) (SensorConfig, bool) {
	cfg, ok := ad.layoutConfig.Sensors[field]
	return cfg, ok
}

// ApplyCalculations replaces status and alarm codes with their texts.
// Fields without a status mapping are copied unchanged.
func (ad *AutoDiscovery) ApplyCalculations(data map[string]interface{}) map[string]interface{} {
	processedData := make(map[string]interface{}, len(data))
	for fieldName, value := range data {
		if text, ok := ad.TranslateStatus(fieldName, value); ok {
			processedData[fieldName] = text
			continue
		}
		processedData[fieldName] = value
	}

	return processedData
}

// TranslateStatus returns the text for a status-mapped field.
// ok is false when the field has no status mapping.
func (ad *AutoDiscovery) TranslateStatus(field string, raw interface{}) (string, bool) {
	sensorConfig, exists := ad.Sensor(field)
	if !exists || sensorConfig.StatusMapping == "" {
		return "", false
	}
	return fmt.Sprintf("%v", ad.applyStatusMapping(sensorConfig.StatusMapping, raw)), true
}

// applyStatusMapping converts numeric status codes to human-readable strings.
// Unknown codes use the mapping's default, a format string taking the code.
func (ad *AutoDiscovery) applyStatusMapping(mappingKey string, rawValue interface{}) interface{} {
	mapping, exists := ad.layoutConfig.StatusMappings[mappingKey]
	if !exists {
		log.Warn().Str("mapping_key", mappingKey).Msg("Status mapping not found")
		return rawValue
	}

	numVal, ok := convertToFloat(rawValue)
	if !ok {
		return rawValue
	}

	code := int(numVal)
	if result, found := mapping[code]; found {
		return result
	}

	if defaultVal, found := mapping["default"]; found {
		return fmt.Sprintf(defaultVal, code)
	}

	return rawValue
}

// convertToFloat converts various numeric types to float64.
func convertToFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// FailureStatus is the text the status sensor shows after a failed poll.
func (ad *AutoDiscovery) FailureStatus(expectedOffline bool, consecutiveFailures int) string {
	if expectedOffline {
		return ad.offlineNight
	}
	if consecutiveFailures > 1 {
		return fmt.Sprintf("%s (%d)", ad.connectionFailed, consecutiveFailures)
	}
	return ad.connectionFailed
}

// StatePayload builds the JSON document published on the state topic.
// Readings carry status codes translated and the raw integers under "raw".
// A failed update keeps the last readings while the measurement sensors are
// still available, and the status sensor always reports the failure.
func (ad *AutoDiscovery) StatePayload(update *domain.StateUpdate) map[string]interface{} {
	payload := map[string]interface{}{
		"timestamp":            update.Timestamp.Format(time.RFC3339),
		"consecutive_failures": update.ConsecutiveFailures,
	}
	if !update.LastSuccessfulUpdate.IsZero() {
		payload["last_successful_update"] = update.LastSuccessfulUpdate.Format(time.RFC3339)
	}

	if update.Success {
		ad.addReadings(payload, update.Snapshot)
		return payload
	}

	if update.Available() && len(update.Snapshot) > 0 {
		ad.addReadings(payload, update.Snapshot)
	}
	payload[string(domain.FieldSYS)] = ad.FailureStatus(update.ExpectedOffline, update.ConsecutiveFailures)
	payload["expected_offline"] = update.ExpectedOffline
	payload["error"] = update.Error

	return payload
}

func (ad *AutoDiscovery) addReadings(payload map[string]interface{}, snapshot domain.DataSnapshot) {
	values := make(map[string]interface{}, len(snapshot))
	raw := make(map[string]uint64, len(snapshot))
	for code, reading := range snapshot {
		values[string(code)] = reading.Value
		raw[string(code)] = reading.RawValue
	}

	for key, value := range ad.ApplyCalculations(values) {
		payload[key] = value
	}
	payload["raw"] = raw
}

// GenerateDiscoveryMessages generates a discovery message for every sensor in the layout,
// keyed by discovery topic.
func (ad *AutoDiscovery) GenerateDiscoveryMessages() map[string]DiscoveryMessage {
	messages := make(map[string]DiscoveryMessage, len(ad.layoutConfig.Sensors))

	for _, fieldName := range ad.Sensors() {
		sensorConfig, _ := ad.Sensor(fieldName)
		messages[ad.getDiscoveryTopic(fieldName)] = ad.createDiscoveryMessage(fieldName, sensorConfig)
	}

	return messages
}

// createDiscoveryMessage creates a discovery message for a specific sensor.
func (ad *AutoDiscovery) createDiscoveryMessage(fieldName string, sensorConfig SensorConfig) DiscoveryMessage {
	objectID := ad.objectID(fieldName)

	var entityCategory string
	if sensorConfig.Category == "diagnostic" {
		entityCategory = "diagnostic"
	}

	message := DiscoveryMessage{
		Name:              sensorConfig.Name,
		UniqueID:          objectID,
		ObjectID:          objectID,
		StateTopic:        ad.baseTopic,
		ValueTemplate:     fmt.Sprintf("{{ value_json.%s }}", fieldName),
		DeviceClass:       sensorConfig.DeviceClass,
		UnitOfMeasurement: sensorConfig.UnitOfMeasurement,
		StateClass:        sensorConfig.StateClass,
		Icon:              sensorConfig.Icon,
		EntityCategory:    entityCategory,
		Device: DeviceInfo{
			Identifiers:  []string{ad.nodeID},
			Name:         ad.config.DeviceName,
			Manufacturer: ad.config.DeviceManufacturer,
			Model:        ad.config.DeviceModel,
			SwVersion:    ad.config.SwVersion,
		},
	}

	// The status sensor stays available so it can report why the others are not.
	if !sensorConfig.AlwaysAvailable {
		message.AvailabilityTopic = ad.GetAvailabilityTopic()
		message.PayloadAvailable = ad.CreateAvailabilityMessage(true)
		message.PayloadNotAvailable = ad.CreateAvailabilityMessage(false)
	}

	return message
}

func (ad *AutoDiscovery) objectID(fieldName string) string {
	return fmt.Sprintf("%s_%s", ad.nodeID, strings.ToLower(fieldName))
}

// getDiscoveryTopic generates the MQTT discovery topic for a sensor:
// <discovery_prefix>/sensor/<node_id>/<object_id>/config
func (ad *AutoDiscovery) getDiscoveryTopic(fieldName string) string {
	return fmt.Sprintf("%s/sensor/%s/%s/config", ad.config.DiscoveryPrefix, ad.nodeID, ad.objectID(fieldName))
}

// GetAvailabilityTopic returns the availability topic for the device.
func (ad *AutoDiscovery) GetAvailabilityTopic() string {
	return ad.baseTopic + "/availability"
}

// CreateAvailabilityMessage returns the availability payload.
func (ad *AutoDiscovery) CreateAvailabilityMessage(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}

// Package config provides configuration management for the go-solarmax application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g. SOLARMAX_INVERTER_HOST.
const EnvPrefix = "SOLARMAX"

// Config holds all application configuration.
type Config struct {
	// General settings
	LogLevel        string `mapstructure:"log_level"`
	TimeZone        string `mapstructure:"timezone"`
	ValidationLevel string `mapstructure:"validation_level"`
	Language        string `mapstructure:"language"`

	// Inverter connection settings
	Inverter struct {
		Host                  string `mapstructure:"host"`
		Port                  int    `mapstructure:"port"`
		TimeoutSeconds        int    `mapstructure:"timeout_seconds"`
		UpdateIntervalSeconds int    `mapstructure:"update_interval_seconds"`
		DeviceName            string `mapstructure:"device_name"`
	} `mapstructure:"inverter"`

	// Day/night detection
	Sun struct {
		MQTTStateTopic string  `mapstructure:"mqtt_state_topic"`
		Latitude       float64 `mapstructure:"latitude"`
		Longitude      float64 `mapstructure:"longitude"`
	} `mapstructure:"sun"`

	// HTTP API settings
	API struct {
		Enabled bool   `mapstructure:"enabled"`
		Host    string `mapstructure:"host"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"api"`

	// MQTT settings
	MQTT struct {
		Enabled  bool   `mapstructure:"enabled"`
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		Topic    string `mapstructure:"topic"`
		Retain   bool   `mapstructure:"retain"`

		// Home Assistant Auto-Discovery settings
		HomeAssistantAutoDiscovery struct {
			Enabled              bool   `mapstructure:"enabled"`
			DiscoveryPrefix      string `mapstructure:"discovery_prefix"`
			DeviceManufacturer   string `mapstructure:"device_manufacturer"`
			DeviceModel          string `mapstructure:"device_model"`
			RetainDiscovery      bool   `mapstructure:"retain_discovery"`
			ListenToBirthMessage bool   `mapstructure:"listen_to_birth_message"`
			RediscoveryInterval  int    `mapstructure:"rediscovery_interval_hours"`
		} `mapstructure:"homeassistant_autodiscovery"`
	} `mapstructure:"mqtt"`

	// PVOutput settings
	PVOutput struct {
		Enabled            bool   `mapstructure:"enabled"`
		APIKey             string `mapstructure:"api_key"`
		SystemID           string `mapstructure:"system_id"`
		URL                string `mapstructure:"url"`
		UseInverterTemp    bool   `mapstructure:"use_inverter_temp"`
		DisableEnergyToday bool   `mapstructure:"disable_energy_today"`
		UpdateLimitMinutes int    `mapstructure:"update_limit_minutes"`
	} `mapstructure:"pvoutput"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{
		LogLevel:        "info",
		TimeZone:        "Local",
		ValidationLevel: "standard",
		Language:        "en",
	}

	// Default inverter settings
	cfg.Inverter.Port = 12345
	cfg.Inverter.TimeoutSeconds = 10
	cfg.Inverter.UpdateIntervalSeconds = 30
	cfg.Inverter.DeviceName = "Solarmax Inverter"

	cfg.Sun.MQTTStateTopic = "homeassistant/sun/sun/state"

	// Default API settings
	cfg.API.Enabled = true
	cfg.API.Host = "0.0.0.0"
	cfg.API.Port = 8080

	// Default MQTT settings
	cfg.MQTT.Enabled = false
	cfg.MQTT.Host = "localhost"
	cfg.MQTT.Port = 1883
	cfg.MQTT.Topic = "energy/solarmax"
	cfg.MQTT.Retain = false

	// Default Home Assistant Auto-Discovery settings
	cfg.MQTT.HomeAssistantAutoDiscovery.Enabled = false
	cfg.MQTT.HomeAssistantAutoDiscovery.DiscoveryPrefix = "homeassistant"
	cfg.MQTT.HomeAssistantAutoDiscovery.DeviceManufacturer = "Solarmax"
	cfg.MQTT.HomeAssistantAutoDiscovery.DeviceModel = "Inverter"
	cfg.MQTT.HomeAssistantAutoDiscovery.RetainDiscovery = true
	cfg.MQTT.HomeAssistantAutoDiscovery.ListenToBirthMessage = true
	cfg.MQTT.HomeAssistantAutoDiscovery.RediscoveryInterval = 24 // 24 hours

	// Default PVOutput settings
	cfg.PVOutput.Enabled = false
	cfg.PVOutput.URL = "https://pvoutput.org/service/r2/addstatus.jsp"
	cfg.PVOutput.UseInverterTemp = true
	cfg.PVOutput.UpdateLimitMinutes = 5 // 5 minutes between updates

	return cfg
}

// Load reads the configuration from a file and environment variables.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Set up Viper
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Override with specific config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	// Defaults make every key known to viper so env overrides apply without a file.
	setDefaults(v, cfg)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			log.Info().Msg("No configuration file found, using defaults")
		} else {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	// Bind environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("timezone", cfg.TimeZone)
	v.SetDefault("validation_level", cfg.ValidationLevel)
	v.SetDefault("language", cfg.Language)

	v.SetDefault("inverter.host", cfg.Inverter.Host)
	v.SetDefault("inverter.port", cfg.Inverter.Port)
	v.SetDefault("inverter.timeout_seconds", cfg.Inverter.TimeoutSeconds)
	v.SetDefault("inverter.update_interval_seconds", cfg.Inverter.UpdateIntervalSeconds)
	v.SetDefault("inverter.device_name", cfg.Inverter.DeviceName)

	v.SetDefault("sun.mqtt_state_topic", cfg.Sun.MQTTStateTopic)
	v.SetDefault("sun.latitude", cfg.Sun.Latitude)
	v.SetDefault("sun.longitude", cfg.Sun.Longitude)

	v.SetDefault("api.enabled", cfg.API.Enabled)
	v.SetDefault("api.host", cfg.API.Host)
	v.SetDefault("api.port", cfg.API.Port)

	v.SetDefault("mqtt.enabled", cfg.MQTT.Enabled)
	v.SetDefault("mqtt.host", cfg.MQTT.Host)
	v.SetDefault("mqtt.port", cfg.MQTT.Port)
	v.SetDefault("mqtt.username", cfg.MQTT.Username)
	v.SetDefault("mqtt.password", cfg.MQTT.Password)
	v.SetDefault("mqtt.topic", cfg.MQTT.Topic)
	v.SetDefault("mqtt.retain", cfg.MQTT.Retain)

	ha := cfg.MQTT.HomeAssistantAutoDiscovery
	v.SetDefault("mqtt.homeassistant_autodiscovery.enabled", ha.Enabled)
	v.SetDefault("mqtt.homeassistant_autodiscovery.discovery_prefix", ha.DiscoveryPrefix)
	v.SetDefault("mqtt.homeassistant_autodiscovery.device_manufacturer", ha.DeviceManufacturer)
	v.SetDefault("mqtt.homeassistant_autodiscovery.device_model", ha.DeviceModel)
	v.SetDefault("mqtt.homeassistant_autodiscovery.retain_discovery", ha.RetainDiscovery)
	v.SetDefault("mqtt.homeassistant_autodiscovery.listen_to_birth_message", ha.ListenToBirthMessage)
	v.SetDefault("mqtt.homeassistant_autodiscovery.rediscovery_interval_hours", ha.RediscoveryInterval)

	v.SetDefault("pvoutput.enabled", cfg.PVOutput.Enabled)
	v.SetDefault("pvoutput.api_key", cfg.PVOutput.APIKey)
	v.SetDefault("pvoutput.system_id", cfg.PVOutput.SystemID)
	v.SetDefault("pvoutput.url", cfg.PVOutput.URL)
	v.SetDefault("pvoutput.use_inverter_temp", cfg.PVOutput.UseInverterTemp)
	v.SetDefault("pvoutput.disable_energy_today", cfg.PVOutput.DisableEnergyToday)
	v.SetDefault("pvoutput.update_limit_minutes", cfg.PVOutput.UpdateLimitMinutes)
}

// Validate checks the settings the daemon cannot run without.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Inverter.Host) == "" {
		errs = append(errs, errors.New("inverter.host is required"))
	}
	if c.Inverter.Port < 1 || c.Inverter.Port > 65535 {
		errs = append(errs, fmt.Errorf("inverter.port %d out of range 1-65535", c.Inverter.Port))
	}
	if c.Inverter.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("inverter.timeout_seconds must be positive, got %d", c.Inverter.TimeoutSeconds))
	}
	if c.Inverter.UpdateIntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("inverter.update_interval_seconds must be positive, got %d", c.Inverter.UpdateIntervalSeconds))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if !isSupportedLanguage(c.Language) {
		errs = append(errs, fmt.Errorf("language %q not supported, use one of %s", c.Language, strings.Join(SupportedLanguages, ", ")))
	}
	if c.Sun.Latitude < -90 || c.Sun.Latitude > 90 {
		errs = append(errs, fmt.Errorf("sun.latitude %v out of range", c.Sun.Latitude))
	}
	if c.Sun.Longitude < -180 || c.Sun.Longitude > 180 {
		errs = append(errs, fmt.Errorf("sun.longitude %v out of range", c.Sun.Longitude))
	}
	if c.PVOutput.Enabled && (c.PVOutput.APIKey == "" || c.PVOutput.SystemID == "") {
		errs = append(errs, errors.New("pvoutput.api_key and pvoutput.system_id are required when pvoutput is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// SupportedLanguages lists the languages of the Home Assistant status texts.
var SupportedLanguages = []string{"en", "de"}

func isSupportedLanguage(language string) bool {
	if language == "" {
		return true
	}
	for _, l := range SupportedLanguages {
		if l == language {
			return true
		}
	}
	return false
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

// Timeout returns the inverter socket timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Inverter.TimeoutSeconds) * time.Second
}

// UpdateInterval returns the poll interval.
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.Inverter.UpdateIntervalSeconds) * time.Second
}

// HasLocation reports whether coordinates for the astronomical sun provider are set.
func (c *Config) HasLocation() bool {
	return c.Sun.Latitude != 0 || c.Sun.Longitude != 0
}

// Print displays the current configuration.
func (c *Config) Print() {
	logger := log.With().Str("component", "config").Logger()
	logger.Info().Msg("go-solarmax Configuration:")
	logger.Info().Msg("-----------------------------")
	logger.Info().Str("log_level", c.LogLevel).Msg("Log Level")
	logger.Info().Str("timezone", c.TimeZone).Msg("Timezone")
	logger.Info().Str("validation_level", c.ValidationLevel).Msg("Validation Level")
	logger.Info().Str("language", c.Language).Msg("Language")

	logger.Info().
		Str("host", c.Inverter.Host).
		Int("port", c.Inverter.Port).
		Int("timeout_seconds", c.Inverter.TimeoutSeconds).
		Int("update_interval_seconds", c.Inverter.UpdateIntervalSeconds).
		Str("device_name", c.Inverter.DeviceName).
		Msg("Inverter")

	logger.Info().
		Str("mqtt_state_topic", c.Sun.MQTTStateTopic).
		Bool("astronomical", c.HasLocation()).
		Msg("Day/night detection")

	logger.Info().Bool("enabled", c.API.Enabled).Msg("API Enabled")
	if c.API.Enabled {
		logger.Info().
			Str("host", c.API.Host).
			Int("port", c.API.Port).
			Msg("API Server")
	}

	logger.Info().Bool("enabled", c.MQTT.Enabled).Msg("MQTT Enabled")
	if c.MQTT.Enabled {
		logger.Info().
			Str("host", c.MQTT.Host).
			Int("port", c.MQTT.Port).
			Str("topic", c.MQTT.Topic).
			Bool("homeassistant_autodiscovery_enabled", c.MQTT.HomeAssistantAutoDiscovery.Enabled).
			Msg("MQTT Configuration")
	}

	logger.Info().Bool("enabled", c.PVOutput.Enabled).Msg("PVOutput Enabled")
	if c.PVOutput.Enabled {
		logger.Info().
			Str("system_id", c.PVOutput.SystemID).
			Int("update_limit_minutes", c.PVOutput.UpdateLimitMinutes).
			Msg("PVOutput Configuration")
	}

	logger.Info().Msg("-----------------------------")
}

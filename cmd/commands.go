package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/resident-x/go-solarmax/internal/config"
	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/resident-x/go-solarmax/internal/inverter"
	"github.com/resident-x/go-solarmax/internal/pubsub"
	"github.com/resident-x/go-solarmax/internal/service"
	"github.com/resident-x/go-solarmax/internal/service/pvoutput"
	"github.com/resident-x/go-solarmax/internal/transport"
	"github.com/resident-x/go-solarmax/internal/validation"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

// runServe starts the daemon and blocks until a shutdown signal arrives or ctx ends.
func runServe(ctx context.Context, configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	log.Info().Str("version", Version).Msg("Starting go-solarmax")
	cfg.Print()

	// Initialize MQTT publisher
	var publisher domain.MessagePublisher
	if cfg.MQTT.Enabled {
		mqttPublisher, err := pubsub.NewMQTTPublisher(cfg, Version)
		if err != nil {
			return fmt.Errorf("failed to create MQTT publisher: %w", err)
		}
		publisher = mqttPublisher
	} else {
		log.Info().Msg("MQTT disabled, using noop publisher")
		publisher = pubsub.NewNoopPublisher()
	}

	// Initialize PVOutput service
	var monitoringService domain.MonitoringService
	if cfg.PVOutput.Enabled {
		monitoringService = pvoutput.NewClient(cfg)
	} else {
		monitoringService = pvoutput.NewNoopClient()
	}

	svc, err := service.NewMonitorService(cfg, publisher, monitoringService, service.WithVersion(Version))
	if err != nil {
		return fmt.Errorf("failed to create monitoring service: %w", err)
	}

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start monitoring service: %w", err)
	}

	// Handle graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	select {
	case sig := <-signalChan:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := svc.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("error stopping monitoring service: %w", err)
	}

	log.Info().Msg("go-solarmax stopped")
	return nil
}

// newInverterAPI builds a standalone inverter API for the one-shot commands.
func newInverterAPI(cfg *config.Config) (*inverter.API, error) {
	level, err := validation.ParseLevel(cfg.ValidationLevel)
	if err != nil {
		return nil, err
	}

	client := transport.NewClient(cfg.Inverter.Host, cfg.Inverter.Port, cfg.Timeout())
	validator := validation.NewValidator(level, log.With().Str("component", "validation").Logger())

	return inverter.NewAPI(client, inverter.WithValidator(validator)), nil
}

// runProbe runs a single connection test. A silent inverter is an error so the exit code reflects it.
func runProbe(ctx context.Context, configFile string, out io.Writer) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	api, err := newInverterAPI(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	if !api.TestConnection(ctx) {
		return fmt.Errorf("inverter at %s did not answer", api.Addr())
	}

	fmt.Fprintf(out, "inverter at %s answered in %s\n", api.Addr(), time.Since(start).Round(time.Millisecond))
	return nil
}

// reading is one field of the read command output.
type reading struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	RawValue uint64  `json:"raw_value"`
}

// readOutput is the JSON document printed by the read command.
type readOutput struct {
	Timestamp string             `json:"timestamp"`
	Inverter  string             `json:"inverter"`
	Data      map[string]reading `json:"data"`
}

// runRead polls the inverter once and prints every value.
func runRead(ctx context.Context, configFile string, out io.Writer) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	api, err := newInverterAPI(cfg)
	if err != nil {
		return err
	}

	snapshot, err := api.GetData(ctx)
	if err != nil {
		return fmt.Errorf("failed to read inverter: %w", err)
	}
	if len(snapshot) == 0 {
		return domain.ErrNoData
	}

	output := readOutput{
		Timestamp: time.Now().Format(time.RFC3339),
		Inverter:  api.Addr(),
		Data:      make(map[string]reading, len(snapshot)),
	}
	for _, def := range domain.InverterFields {
		value, ok := snapshot[def.Code]
		if !ok {
			continue
		}
		output.Data[string(def.Code)] = reading{
			Label:    def.Label,
			Value:    value.Value,
			RawValue: value.RawValue,
		}
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// Package api provides HTTP API functionality for the go-solarmax daemon.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/resident-x/go-solarmax/internal/config"
	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Redacted replaces sensitive values in diagnostics output.
const Redacted = "**REDACTED**"

// IssueConnection is reported once daytime failures exceed the threshold.
const IssueConnection = "connection_issues"

// connectionIssueThreshold is the number of consecutive daytime failures before an issue opens.
const connectionIssueThreshold = 3

// ConnectionTester runs an on-demand inverter connection test.
type ConnectionTester interface {
	TestConnection(ctx context.Context) bool
}

// Issue is an open problem that needs the user's attention.
type Issue struct {
	ID           string            `json:"id"`
	Severity     string            `json:"severity"`
	Description  string            `json:"description"`
	Placeholders map[string]string `json:"placeholders"`
}

// Server represents the HTTP API server that provides monitoring and diagnostics.
type Server struct {
	config    *config.Config
	server    *http.Server
	listener  net.Listener
	router    *mux.Router
	state     domain.StateReader
	tester    ConnectionTester
	version   string
	logger    zerolog.Logger
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(cfg *config.Config, state domain.StateReader, tester ConnectionTester, version string) *Server {
	apiServer := &Server{
		config:    cfg,
		router:    mux.NewRouter(),
		state:     state,
		tester:    tester,
		version:   version,
		logger:    log.With().Str("component", "api").Logger(),
		startTime: time.Now(),
	}

	apiServer.setupRoutes()

	return apiServer
}

// setupRoutes configures all API endpoint handlers.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/data", s.handleData).Methods(http.MethodGet)
	api.HandleFunc("/diagnostics", s.handleDiagnostics).Methods(http.MethodGet)
	api.HandleFunc("/issues", s.handleIssues).Methods(http.MethodGet)
	api.HandleFunc("/test-connection", s.handleTestConnection).Methods(http.MethodPost)
}

// GetRouter returns the router for testing purposes.
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	addr := net.JoinHostPort(s.config.API.Host, strconv.Itoa(s.config.API.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.logger.Info().
			Str("address", listener.Addr().String()).
			Msg("Starting HTTP API server")

		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	return nil
}

// Addr returns the address the server listens on, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping HTTP API server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if s.server != nil {
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
	}

	return nil
}

// handleStatus returns daemon status information.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	state := s.state.Current()

	s.writeJSON(w, map[string]interface{}{
		"status":               "ok",
		"version":              s.version,
		"uptime":               time.Since(s.startTime).Round(time.Second).String(),
		"last_update":          formatTime(state.LastUpdate),
		"last_update_success":  state.LastUpdateSuccess,
		"consecutive_failures": state.ConsecutiveFailures,
		"expected_offline":     state.ExpectedOffline,
	}, http.StatusOK)
}

// handleData returns the latest snapshot. The snapshot of the last successful poll is kept
// after failures and reported as stale.
func (s *Server) handleData(w http.ResponseWriter, _ *http.Request) {
	state := s.state.Current()
	if len(state.Snapshot) == 0 {
		s.writeError(w, "No data received from inverter yet", http.StatusNotFound)
		return
	}

	labels := make(map[domain.FieldCode]string, len(domain.InverterFields))
	for _, def := range domain.InverterFields {
		labels[def.Code] = def.Label
	}

	data := make(map[string]interface{}, len(state.Snapshot))
	for code, reading := range state.Snapshot {
		data[string(code)] = map[string]interface{}{
			"label":     labels[code],
			"value":     reading.Value,
			"raw_value": reading.RawValue,
		}
	}

	s.writeJSON(w, map[string]interface{}{
		"timestamp": formatTime(state.LastSuccessfulUpdate),
		"stale":     !state.LastUpdateSuccess,
		"data":      data,
	}, http.StatusOK)
}

// handleDiagnostics returns everything useful for troubleshooting, with the inverter host redacted.
func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	state := s.state.Current()

	dataKeys := make([]string, 0, len(state.Snapshot))
	sensorData := make(map[string]interface{}, len(state.Snapshot))
	for code, reading := range state.Snapshot {
		dataKeys = append(dataKeys, string(code))
		sensorData[string(code)] = map[string]interface{}{
			"value":     reading.Value,
			"raw_value": reading.RawValue,
		}
	}
	sort.Strings(dataKeys)

	var lastException interface{}
	if state.LastError != "" {
		lastException = state.LastError
	}

	s.writeJSON(w, map[string]interface{}{
		"config": map[string]interface{}{
			"host":                    Redacted,
			"port":                    s.config.Inverter.Port,
			"timeout_seconds":         s.config.Inverter.TimeoutSeconds,
			"update_interval_seconds": s.config.Inverter.UpdateIntervalSeconds,
			"device_name":             s.config.Inverter.DeviceName,
			"timezone":                s.config.TimeZone,
			"mqtt_enabled":            s.config.MQTT.Enabled,
			"pvoutput_enabled":        s.config.PVOutput.Enabled,
		},
		"coordinator": map[string]interface{}{
			"last_update_success":    state.LastUpdateSuccess,
			"last_exception":         lastException,
			"update_interval":        s.config.UpdateInterval().String(),
			"data_available":         len(state.Snapshot) > 0,
			"data_keys":              dataKeys,
			"consecutive_failures":   state.ConsecutiveFailures,
			"last_successful_update": formatTime(state.LastSuccessfulUpdate),
			"is_expected_offline":    state.ExpectedOffline,
		},
		"api_connection": map[string]interface{}{
			"last_successful_connection": formatTime(state.LastSuccessfulConnection),
			"connection_attempts":        state.Connection.ConnectionAttempts,
			"connection_errors":          state.Connection.ConnectionErrors,
			"timeout_errors":             state.Connection.TimeoutErrors,
			"bytes_sent":                 state.Connection.BytesSent,
			"bytes_received":             state.Connection.BytesReceived,
		},
		"validation": map[string]interface{}{
			"validation_level":      state.Validation.Level,
			"validations_performed": state.Validation.ValidationsPerformed,
			"errors_found":          state.Validation.ErrorsFound,
			"warnings_found":        state.Validation.WarningsFound,
		},
		"sensor_data": sensorData,
		"system_info": map[string]interface{}{
			"version":    s.version,
			"go_version": runtime.Version(),
			"uptime":     time.Since(s.startTime).Round(time.Second).String(),
		},
		"device_info": map[string]interface{}{
			"name":         s.config.Inverter.DeviceName,
			"manufacturer": s.config.MQTT.HomeAssistantAutoDiscovery.DeviceManufacturer,
			"model":        s.config.MQTT.HomeAssistantAutoDiscovery.DeviceModel,
		},
	}, http.StatusOK)
}

// handleIssues returns the open issues.
func (s *Server) handleIssues(w http.ResponseWriter, _ *http.Request) {
	issues := s.openIssues(s.state.Current())

	s.writeJSON(w, map[string]interface{}{
		"issues": issues,
		"count":  len(issues),
	}, http.StatusOK)
}

// openIssues derives issues from the device state. Failures while the inverter is
// expected to be offline never open an issue. The host is redacted as in diagnostics.
func (s *Server) openIssues(state domain.DeviceState) []Issue {
	issues := []Issue{}

	if !state.ExpectedOffline && state.ConsecutiveFailures > connectionIssueThreshold {
		issues = append(issues, Issue{
			ID:          IssueConnection,
			Severity:    "error",
			Description: "The inverter has not answered during daytime. Check that it is powered and reachable on the network.",
			Placeholders: map[string]string{
				"host":     Redacted,
				"port":     strconv.Itoa(s.config.Inverter.Port),
				"failures": strconv.Itoa(state.ConsecutiveFailures),
			},
		})
	}

	return issues
}

// handleTestConnection asks the inverter for a single value.
func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	success := s.tester.TestConnection(r.Context())
	duration := time.Since(start)

	s.logger.Info().
		Bool("success", success).
		Dur("duration", duration).
		Msg("Connection test requested")

	s.writeJSON(w, map[string]interface{}{
		"success":     success,
		"duration_ms": duration.Milliseconds(),
	}, http.StatusOK)
}

func formatTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response.
func (s *Server) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode error response")
	}
}

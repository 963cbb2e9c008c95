// Package pvoutput provides the PVOutput.org monitoring service implementation.
package pvoutput

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/resident-x/go-solarmax/internal/config"
	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NoopClient is a no-operation implementation of the MonitoringService interface.
type NoopClient struct{}

// NewNoopClient creates a new no-operation PVOutput client.
func NewNoopClient() *NoopClient {
	return &NoopClient{}
}

// Send is a no-op for the NoopClient.
func (c *NoopClient) Send(_ context.Context, _ domain.DataSnapshot) error {
	return nil
}

// Connect is a no-op for the NoopClient.
func (c *NoopClient) Connect() error {
	return nil
}

// Close is a no-op for the NoopClient.
func (c *NoopClient) Close() error {
	return nil
}

// average accumulates a running mean.
type average struct {
	sum   float64
	count int
}

func (a *average) add(v float64) {
	a.sum += v
	a.count++
}

func (a *average) value() (float64, bool) {
	if a.count == 0 {
		return 0, false
	}
	return a.sum / float64(a.count), true
}

// readings holds what has been seen since the last upload. Power, temperature and
// voltage are averaged; energy today is a counter so the latest value wins.
type readings struct {
	energyToday    float64
	hasEnergyToday bool
	power          average
	temperature    average
	voltage        average
}

// Client implements the MonitoringService interface for PVOutput.org.
type Client struct {
	config     *config.Config
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time

	mutex      sync.Mutex
	lastUpdate time.Time
	pending    readings
}

// NewClient creates a new PVOutput client.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.With().Str("component", "pvoutput").Logger(),
		now:        time.Now,
	}
}

// Connect establishes a connection to the service.
// For PVOutput, this is a no-op as each request is independent.
func (c *Client) Connect() error {
	return nil
}

// Close terminates the connection to the service.
func (c *Client) Close() error {
	return nil
}

// Send adds the snapshot to the pending averages and uploads them once the update
// limit has passed since the previous upload.
func (c *Client) Send(ctx context.Context, snapshot domain.DataSnapshot) error {
	if !c.config.PVOutput.Enabled {
		return nil
	}

	if c.config.PVOutput.APIKey == "" || c.config.PVOutput.SystemID == "" {
		return fmt.Errorf("PVOutput API key and/or System ID not configured")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.addReading(snapshot)

	if !c.canUpdate() {
		return nil
	}

	params := c.buildParams()
	if err := c.makeRequest(ctx, params); err != nil {
		return err
	}

	c.logger.Debug().Str("params", params.Encode()).Msg("Status uploaded to PVOutput")

	c.lastUpdate = c.now()
	c.pending = readings{}
	return nil
}

// addReading folds a snapshot into the pending readings.
func (c *Client) addReading(snapshot domain.DataSnapshot) {
	if v, ok := snapshot.Value(domain.FieldKDY); ok {
		c.pending.energyToday = v
		c.pending.hasEnergyToday = true
	}
	if v, ok := snapshot.Value(domain.FieldPAC); ok {
		c.pending.power.add(v)
	}
	if v, ok := snapshot.Value(domain.FieldTKK); ok {
		c.pending.temperature.add(v)
	}
	if v, ok := snapshot.Value(domain.FieldUL1); ok {
		c.pending.voltage.add(v)
	}
}

// buildParams maps the pending readings to addstatus parameters:
// v1 energy today (Wh), v2 power (W), v5 temperature (C), v6 voltage (V).
func (c *Client) buildParams() url.Values {
	now := c.now()

	params := url.Values{}
	params.Set("d", now.Format("20060102"))
	params.Set("t", now.Format("15:04"))

	if !c.config.PVOutput.DisableEnergyToday && c.pending.hasEnergyToday {
		params.Set("v1", strconv.FormatFloat(c.pending.energyToday, 'f', 0, 64))
	}

	if power, ok := c.pending.power.value(); ok {
		params.Set("v2", strconv.FormatFloat(power, 'f', 0, 64))
	}

	if temperature, ok := c.pending.temperature.value(); ok && c.config.PVOutput.UseInverterTemp && temperature != 0 {
		params.Set("v5", strconv.FormatFloat(temperature, 'f', 1, 64))
	}

	if voltage, ok := c.pending.voltage.value(); ok && voltage > 0 {
		params.Set("v6", strconv.FormatFloat(voltage, 'f', 1, 64))
	}

	return params
}

// makeRequest makes an HTTP POST request to the PVOutput addstatus service.
func (c *Client) makeRequest(ctx context.Context, params url.Values) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.config.PVOutput.URL,
		strings.NewReader(params.Encode()),
	)
	if err != nil {
		return fmt.Errorf("failed to create PVOutput request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Pvoutput-Apikey", c.config.PVOutput.APIKey)
	req.Header.Set("X-Pvoutput-SystemId", c.config.PVOutput.SystemID)
	req.Header.Set("X-Rate-Limit", "1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("PVOutput request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck // Closing response body in defer, error not critical
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck // Body is only used for the error message
		return fmt.Errorf("PVOutput returned status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}

// canUpdate checks if an upload is allowed by the update limit. Callers hold c.mutex.
func (c *Client) canUpdate() bool {
	if c.lastUpdate.IsZero() {
		return true
	}

	updateInterval := time.Duration(c.config.PVOutput.UpdateLimitMinutes) * time.Minute
	return c.now().Sub(c.lastUpdate) >= updateInterval
}

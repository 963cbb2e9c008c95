package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/resident-x/go-solarmax/internal/simulator"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a minimal configuration pointing at the given inverter port.
func writeConfig(t *testing.T, port int) string {
	t.Helper()

	content := fmt.Sprintf(`log_level: error
inverter:
  host: 127.0.0.1
  port: %d
  timeout_seconds: 1
  update_interval_seconds: 3600
api:
  enabled: true
  host: 127.0.0.1
  port: 0
mqtt:
  enabled: false
pvoutput:
  enabled: false
`, port)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func startSimulator(t *testing.T) *simulator.Simulator {
	t.Helper()

	sim := simulator.New()
	require.NoError(t, sim.Start("127.0.0.1:0"))
	t.Cleanup(func() { _ = sim.Close() })
	return sim
}

// closedPort returns a loopback port nothing listens on.
func closedPort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return port
}

func TestVersion(t *testing.T) {
	// Test that version variable is set
	assert.Equal(t, "dev", Version)
}

func TestMainVersionOutput(t *testing.T) {
	var out bytes.Buffer

	code := run(context.Background(), []string{"--version"}, &out)

	assert.Equal(t, 0, code)
	assert.Equal(t, fmt.Sprintf("go-solarmax %s\n", Version), out.String())
}

func TestRootCommandFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"default config", []string{}, ""},
		{"long flag", []string{"--config", "test.yaml"}, "test.yaml"},
		{"short flag", []string{"-c", "other.yaml"}, "other.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd(io.Discard)
			require.NoError(t, cmd.PersistentFlags().Parse(tt.args))

			configFile, err := cmd.PersistentFlags().GetString("config")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, configFile)
		})
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	cmd := newRootCmd(io.Discard)

	for _, name := range []string{"serve", "probe", "read"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestMainConfigLoadError(t *testing.T) {
	for _, sub := range []string{"serve", "probe", "read"} {
		t.Run(sub, func(t *testing.T) {
			code := run(context.Background(), []string{sub, "--config", "non-existent-file.yaml"}, io.Discard)
			assert.Equal(t, 1, code)
		})
	}
}

func TestMainUnknownCommand(t *testing.T) {
	assert.Equal(t, 1, run(context.Background(), []string{"explode"}, io.Discard))
}

func TestProbe(t *testing.T) {
	t.Run("inverter answers", func(t *testing.T) {
		sim := startSimulator(t)
		var out bytes.Buffer

		code := run(context.Background(), []string{"probe", "--config", writeConfig(t, sim.Port())}, &out)

		assert.Equal(t, 0, code)
		assert.Contains(t, out.String(), "answered")
	})

	t.Run("inverter unreachable", func(t *testing.T) {
		var out bytes.Buffer

		code := run(context.Background(), []string{"probe", "--config", writeConfig(t, closedPort(t))}, &out)

		assert.Equal(t, 1, code)
		assert.Empty(t, out.String())
	})
}

func TestRead(t *testing.T) {
	sim := startSimulator(t)
	sim.SetValue(domain.FieldPAC, 3000)

	var out bytes.Buffer
	code := run(context.Background(), []string{"read", "--config", writeConfig(t, sim.Port())}, &out)
	require.Equal(t, 0, code)

	var output readOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &output))

	assert.Equal(t, fmt.Sprintf("127.0.0.1:%d", sim.Port()), output.Inverter)
	assert.Len(t, output.Data, len(domain.InverterFields))

	pac := output.Data["PAC"]
	assert.Equal(t, "AC_Power (W)", pac.Label)
	assert.Equal(t, uint64(3000), pac.RawValue)
	assert.InDelta(t, 1500.0, pac.Value, 0.001)
}

func TestServe(t *testing.T) {
	sim := startSimulator(t)
	configFile := writeConfig(t, sim.Port())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{"--config", configFile}, io.Discard)
	}()

	// The daemon polls once right after start.
	assert.Eventually(t, func() bool {
		return sim.Requests() > 0
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(15 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

// TestInitLogger tests the logger initialization function.
func TestInitLogger(t *testing.T) {
	// Save original logger
	originalLogger := log.Logger
	originalLevel := zerolog.GlobalLevel()

	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{
			name:     "info level",
			level:    "info",
			expected: zerolog.InfoLevel,
		},
		{
			name:     "debug level",
			level:    "debug",
			expected: zerolog.DebugLevel,
		},
		{
			name:     "warn level",
			level:    "warn",
			expected: zerolog.WarnLevel,
		},
		{
			name:     "error level",
			level:    "error",
			expected: zerolog.ErrorLevel,
		},
		{
			name:     "uppercase level",
			level:    "INFO",
			expected: zerolog.InfoLevel,
		},
		{
			name:     "invalid level defaults to info",
			level:    "invalid",
			expected: zerolog.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Capture stdout and stderr for the invalid level message
			oldStdout, oldStderr := os.Stdout, os.Stderr
			outR, outW, err := os.Pipe()
			require.NoError(t, err)
			errR, errW, err := os.Pipe()
			require.NoError(t, err)
			os.Stdout, os.Stderr = outW, errW

			// Test the function
			initLogger(tt.level)

			// Restore and capture output
			_ = outW.Close()
			_ = errW.Close()
			os.Stdout, os.Stderr = oldStdout, oldStderr
			var stdout, stderr bytes.Buffer
			_, _ = io.Copy(&stdout, outR)
			_, _ = io.Copy(&stderr, errR)

			// Check global log level was set correctly
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())

			// Stdout stays clean; the notice goes to stderr
			assert.Empty(t, stdout.String())
			if tt.level == "invalid" {
				assert.Contains(t, stderr.String(), "Invalid log level 'invalid'")
			}
		})
	}

	// Restore original logger
	log.Logger = originalLogger
	zerolog.SetGlobalLevel(originalLevel)
}

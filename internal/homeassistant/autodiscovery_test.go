package homeassistant

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Enabled:            true,
		DiscoveryPrefix:    "homeassistant",
		DeviceName:         "Solarmax Inverter",
		DeviceManufacturer: "Solarmax",
		DeviceModel:        "Inverter",
		SwVersion:          "1.2.3",
		RetainDiscovery:    true,
	}
}

func newDiscovery(t *testing.T) *AutoDiscovery {
	t.Helper()
	ad, err := New(testConfig(), "energy/solarmax")
	require.NoError(t, err)
	return ad
}

func TestNew(t *testing.T) {
	ad := newDiscovery(t)

	assert.Equal(t, "solarmax_inverter", ad.NodeID())
	assert.Equal(t, "energy/solarmax/availability", ad.GetAvailabilityTopic())
	assert.Len(t, ad.Sensors(), len(domain.InverterFields))
}

func TestLayoutCoversEveryRequestedField(t *testing.T) {
	ad := newDiscovery(t)

	for _, def := range domain.InverterFields {
		sensor, ok := ad.Sensor(string(def.Code))
		if assert.True(t, ok, "missing layout entry for %s", def.Code) {
			assert.NotEmpty(t, sensor.Name)
		}
	}
}

func TestNodeID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"default name", "Solarmax Inverter", "solarmax_inverter"},
		{"dashes", "Roof-West", "roof_west"},
		{"mqtt wildcards", "a+b#c", "a_b_c"},
		{"empty", "  ", "solarmax"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NodeID(tt.in))
		})
	}
}

func TestTranslateStatus(t *testing.T) {
	ad := newDiscovery(t)

	tests := []struct {
		name  string
		field string
		raw   interface{}
		want  string
		ok    bool
	}{
		{"feed-in", "SYS", 20019.0, "Feed-in operation", true},
		{"starting", "SYS", uint64(20018), "Starting up", true},
		{"standby", "SYS", 20000, "Standby", true},
		{"unknown status", "SYS", 12345.0, "Status Code: 12345", true},
		{"no alarms", "SAL", 0.0, "No alarms", true},
		{"insulation", "SAL", 5.0, "Insulation error", true},
		{"unknown alarm", "SAL", 99.0, "Alarm Code: 99", true},
		{"unmapped field", "PAC", 1500.0, "", false},
		{"unknown field", "XYZ", 1.0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ad.TranslateStatus(tt.field, tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyCalculations(t *testing.T) {
	ad := newDiscovery(t)

	in := map[string]interface{}{
		"PAC": 1500.0,
		"SYS": 20019.0,
		"SAL": 0.0,
	}

	out := ad.ApplyCalculations(in)

	assert.Equal(t, 1500.0, out["PAC"])
	assert.Equal(t, "Feed-in operation", out["SYS"])
	assert.Equal(t, "No alarms", out["SAL"])
	assert.Equal(t, 20019.0, in["SYS"], "input must not be modified")
}

func TestFailureStatus(t *testing.T) {
	ad := newDiscovery(t)

	assert.Equal(t, "Offline (Night)", ad.FailureStatus(true, 7))
	assert.Equal(t, "Connection Failed", ad.FailureStatus(false, 1))
	assert.Equal(t, "Connection Failed", ad.FailureStatus(false, 0))
	assert.Equal(t, "Connection Failed (4)", ad.FailureStatus(false, 4))
}

func TestGermanTexts(t *testing.T) {
	cfg := testConfig()
	cfg.Language = "de"
	ad, err := New(cfg, "energy/solarmax")
	require.NoError(t, err)

	assert.Equal(t, "Offline (Nacht)", ad.FailureStatus(true, 7))
	assert.Equal(t, "Verbindung fehlgeschlagen", ad.FailureStatus(false, 1))
	assert.Equal(t, "Verbindung fehlgeschlagen (3)", ad.FailureStatus(false, 3))

	tests := []struct {
		field string
		raw   interface{}
		want  string
	}{
		{"SYS", 20019.0, "Einspeisebetrieb"},
		{"SYS", 20002.0, "Netzüberwachung"},
		{"SYS", 12345.0, "Status Code: 12345"},
		{"SAL", 0.0, "Keine Alarme"},
		{"SAL", 4.0, "Temperatur zu hoch"},
		{"SAL", 99.0, "Alarm Code: 99"},
	}
	for _, tt := range tests {
		got, ok := ad.TranslateStatus(tt.field, tt.raw)
		assert.True(t, ok)
		assert.Equal(t, tt.want, got)
	}

	// The English layout is not touched by a translated instance.
	english := newDiscovery(t)
	got, _ := english.TranslateStatus("SYS", 20019.0)
	assert.Equal(t, "Feed-in operation", got)
}

func TestUnknownLanguage(t *testing.T) {
	cfg := testConfig()
	cfg.Language = "fr"

	_, err := New(cfg, "energy/solarmax")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no layout translation for language "fr"`)
}

func TestStatePayload(t *testing.T) {
	ad := newDiscovery(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		update := &domain.StateUpdate{
			Timestamp: now,
			Success:   true,
			Snapshot: domain.DataSnapshot{
				domain.FieldPAC: {Value: 1500, RawValue: 3000},
				domain.FieldSYS: {Value: 20019, RawValue: 20019},
				domain.FieldUL1: {Value: 230.5, RawValue: 2305},
			},
			LastSuccessfulUpdate: now,
		}

		data, err := json.Marshal(ad.StatePayload(update))
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &decoded))

		assert.Equal(t, 1500.0, decoded["PAC"])
		assert.Equal(t, 230.5, decoded["UL1"])
		assert.Equal(t, "Feed-in operation", decoded["SYS"])
		assert.Equal(t, map[string]interface{}{"PAC": 3000.0, "SYS": 20019.0, "UL1": 2305.0}, decoded["raw"])
		assert.Equal(t, "2024-06-01T12:00:00Z", decoded["timestamp"])
		assert.NotContains(t, decoded, "error")
	})

	t.Run("night failure", func(t *testing.T) {
		update := &domain.StateUpdate{
			Timestamp:           now,
			ExpectedOffline:     true,
			ConsecutiveFailures: 3,
			Error:               "inverter offline (night time): dial timeout",
		}

		payload := ad.StatePayload(update)

		assert.Equal(t, "Offline (Night)", payload["SYS"])
		assert.Equal(t, true, payload["expected_offline"])
		assert.Equal(t, 3, payload["consecutive_failures"])
		assert.NotContains(t, payload, "PAC")
		assert.NotContains(t, payload, "last_successful_update")
	})

	t.Run("day failure", func(t *testing.T) {
		update := &domain.StateUpdate{
			Timestamp:            now,
			ConsecutiveFailures:  2,
			LastSuccessfulUpdate: now.Add(-time.Hour),
		}

		payload := ad.StatePayload(update)

		assert.Equal(t, "Connection Failed (2)", payload["SYS"])
		assert.Equal(t, "2024-06-01T11:00:00Z", payload["last_successful_update"])
		assert.NotContains(t, payload, "raw")
	})

	lastGood := domain.DataSnapshot{
		domain.FieldPAC: {Value: 1500, RawValue: 3000},
		domain.FieldSYS: {Value: 20019, RawValue: 20019},
		domain.FieldSAL: {Value: 0, RawValue: 0},
	}

	t.Run("transient day failure keeps last readings", func(t *testing.T) {
		update := &domain.StateUpdate{
			Timestamp:           now,
			ConsecutiveFailures: 1,
			Snapshot:            lastGood,
			Error:               "connection refused",
		}

		payload := ad.StatePayload(update)

		assert.Equal(t, 1500.0, payload["PAC"])
		assert.Equal(t, "No alarms", payload["SAL"])
		assert.Equal(t, "Connection Failed", payload["SYS"])
		assert.Equal(t, map[string]uint64{"PAC": 3000, "SYS": 20019, "SAL": 0}, payload["raw"])
		assert.Equal(t, "connection refused", payload["error"])
	})

	t.Run("persistent day failure drops readings", func(t *testing.T) {
		update := &domain.StateUpdate{
			Timestamp:           now,
			ConsecutiveFailures: 6,
			Snapshot:            lastGood,
		}

		payload := ad.StatePayload(update)

		assert.Equal(t, "Connection Failed (6)", payload["SYS"])
		assert.NotContains(t, payload, "PAC")
		assert.NotContains(t, payload, "raw")
	})

	t.Run("night failure drops readings", func(t *testing.T) {
		update := &domain.StateUpdate{
			Timestamp:           now,
			ExpectedOffline:     true,
			ConsecutiveFailures: 1,
			Snapshot:            lastGood,
		}

		payload := ad.StatePayload(update)

		assert.Equal(t, "Offline (Night)", payload["SYS"])
		assert.NotContains(t, payload, "PAC")
	})
}

func TestGenerateDiscoveryMessages(t *testing.T) {
	ad := newDiscovery(t)

	messages := ad.GenerateDiscoveryMessages()
	require.Len(t, messages, len(domain.InverterFields))

	pac, ok := messages["homeassistant/sensor/solarmax_inverter/solarmax_inverter_pac/config"]
	require.True(t, ok)
	assert.Equal(t, "AC Power", pac.Name)
	assert.Equal(t, "solarmax_inverter_pac", pac.UniqueID)
	assert.Equal(t, "energy/solarmax", pac.StateTopic)
	assert.Equal(t, "{{ value_json.PAC }}", pac.ValueTemplate)
	assert.Equal(t, "power", pac.DeviceClass)
	assert.Equal(t, "W", pac.UnitOfMeasurement)
	assert.Equal(t, "measurement", pac.StateClass)
	assert.Equal(t, "energy/solarmax/availability", pac.AvailabilityTopic)
	assert.Equal(t, "online", pac.PayloadAvailable)
	assert.Equal(t, "offline", pac.PayloadNotAvailable)
	assert.Equal(t, []string{"solarmax_inverter"}, pac.Device.Identifiers)
	assert.Equal(t, "Solarmax", pac.Device.Manufacturer)
	assert.Equal(t, "1.2.3", pac.Device.SwVersion)

	sys := messages["homeassistant/sensor/solarmax_inverter/solarmax_inverter_sys/config"]
	assert.Equal(t, "Status Code", sys.Name)
	assert.Empty(t, sys.AvailabilityTopic, "status sensor must stay available")

	sal := messages["homeassistant/sensor/solarmax_inverter/solarmax_inverter_sal/config"]
	assert.Equal(t, "diagnostic", sal.EntityCategory)

	tkk := messages["homeassistant/sensor/solarmax_inverter/solarmax_inverter_tkk/config"]
	assert.Equal(t, "°C", tkk.UnitOfMeasurement)
	assert.Equal(t, "temperature", tkk.DeviceClass)
}

func TestDiscoveryMessageJSON(t *testing.T) {
	ad := newDiscovery(t)

	msg := ad.GenerateDiscoveryMessages()["homeassistant/sensor/solarmax_inverter/solarmax_inverter_cac/config"]
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "Startups", decoded["name"])
	assert.Equal(t, "total_increasing", decoded["state_class"])
	assert.NotContains(t, decoded, "device_class")
	assert.NotContains(t, decoded, "unit_of_measurement")
	assert.NotContains(t, decoded, "entity_category")
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
facility:
  name: central-garage
  violation_penalty: 60
  zones:
    - id: A
      name: Ground Floor
      spots:
        - id: A-1
          kind: REGULAR
        - id: A-2
          kind: MOTORBIKE
      pricing:
        hourly_rate: 3.0
        peak_multiplier: 1.5
        daily_max: 25.0
    - id: B
      name: Basement
      spots:
        - id: B-1
          kind: ELECTRIC_CHARGING
billing:
  processor: credit_card
eventlog:
  backend: sqlite
  path: events.db
notifier:
  backend: log
metrics:
  prometheus_enabled: true
api:
  addr: ":8081"
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "central-garage", cfg.Facility.Name)
	assert.Equal(t, 60.0, cfg.Facility.ViolationPenalty)
	require.Len(t, cfg.Facility.Zones, 2)
	assert.Equal(t, "A", cfg.Facility.Zones[0].ID)
	require.Len(t, cfg.Facility.Zones[0].Spots, 2)
	require.NotNil(t, cfg.Facility.Zones[0].Pricing)
	assert.Equal(t, 3.0, cfg.Facility.Zones[0].Pricing.HourlyRate)
	assert.Nil(t, cfg.Facility.Zones[1].Pricing)

	assert.Equal(t, "credit_card", cfg.Billing.Processor)
	assert.Equal(t, "sqlite", cfg.EventLog.Backend)
	assert.Equal(t, "log", cfg.Notifier.Backend)
	assert.True(t, cfg.Metrics.PrometheusEnabled)
	assert.Equal(t, ":8081", cfg.API.Addr)
	// Defaults fill the unset fields.
	assert.Equal(t, ":9090", cfg.Metrics.PrometheusPort)
	assert.NotEmpty(t, cfg.API.QRSecret)
}

func TestLoadJSON(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", `{
  "facility": {
    "name": "lot",
    "zones": [{"id": "A", "name": "A", "spots": [{"id": "A-1", "kind": "REGULAR"}]}]
  }
}`))
	require.NoError(t, err)
	assert.Equal(t, "lot", cfg.Facility.Name)
	assert.Equal(t, "jsonl", cfg.EventLog.Backend)
	assert.Equal(t, ":8080", cfg.API.Addr)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PARKD_API__ADDR", ":9999")
	cfg, err := Load(writeConfig(t, "config.yaml", sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.API.Addr)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "x = 1"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidLayout(t *testing.T) {
	cases := map[string]string{
		"missing name": `
facility:
  zones:
    - id: A
      spots: [{id: A-1, kind: REGULAR}]
`,
		"no zones": `
facility:
  name: lot
`,
		"duplicate zone": `
facility:
  name: lot
  zones:
    - {id: A, spots: [{id: A-1, kind: REGULAR}]}
    - {id: A, spots: [{id: A-2, kind: REGULAR}]}
`,
		"duplicate spot": `
facility:
  name: lot
  zones:
    - {id: A, spots: [{id: A-1, kind: REGULAR}, {id: A-1, kind: REGULAR}]}
`,
		"bad spot kind": `
facility:
  name: lot
  zones:
    - {id: A, spots: [{id: A-1, kind: HELIPAD}]}
`,
		"bad processor": `
facility:
  name: lot
  zones:
    - {id: A, spots: [{id: A-1, kind: REGULAR}]}
billing:
  processor: barter
`,
		"bad notifier": `
facility:
  name: lot
  zones:
    - {id: A, spots: [{id: A-1, kind: REGULAR}]}
notifier:
  backend: pigeon
`,
		"mqtt without broker": `
facility:
  name: lot
  zones:
    - {id: A, spots: [{id: A-1, kind: REGULAR}]}
notifier:
  backend: mqtt
`,
	}
	for name, yaml := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", yaml))
			assert.Error(t, err)
		})
	}
}

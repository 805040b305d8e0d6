// Package config loads and validates the facility configuration.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mjarreta/parkd/core/metrics"
	"github.com/mjarreta/parkd/infra/mqtt"
)

type Config struct {
	Facility FacilityConfig `json:"facility"`
	Billing  BillingConfig  `json:"billing"`
	EventLog EventLogConfig `json:"eventlog"`
	Notifier NotifierConfig `json:"notifier"`
	Metrics  metrics.Config `json:"metrics"`
	API      APIConfig      `json:"api"`
}

// Load reads the configuration file, applies environment overrides
// (PARKD_ prefix, __ as separator) and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("PARKD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "parkd_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.EventLog.SetDefaults()
	cfg.Notifier.SetDefaults()
	cfg.API.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Facility.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Billing.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EventLog.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Notifier.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BillingConfig selects the payment gateway.
type BillingConfig struct {
	// Processor selects the payment gateway: "credit_card" or "upi".
	// Empty disables payment processing.
	Processor string `json:"processor"`
}

// Validate checks the processor name.
func (c BillingConfig) Validate() error {
	switch c.Processor {
	case "", "credit_card", "upi":
		return nil
	default:
		return fmt.Errorf("unknown payment processor %s", c.Processor)
	}
}

// NotifierConfig selects the user notification channel.
type NotifierConfig struct {
	// Backend selects the notifier: "log" or "mqtt".
	Backend string      `json:"backend"`
	MQTT    mqtt.Config `json:"mqtt"`
}

// SetDefaults applies sane defaults.
func (c *NotifierConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "log"
	}
	c.MQTT.SetDefaults()
}

// Validate checks mandatory fields.
func (c NotifierConfig) Validate() error {
	switch c.Backend {
	case "log":
		return nil
	case "mqtt":
		return c.MQTT.Validate()
	default:
		return fmt.Errorf("unknown notifier backend %s", c.Backend)
	}
}

// APIConfig holds the HTTP API settings.
type APIConfig struct {
	Addr string `json:"addr"`
	// QRSecret signs the receipt verification QR payloads.
	QRSecret string `json:"qr_secret"`
	// ViolationSweepSeconds sets how often occupied spots are checked
	// for spot type violations. Zero disables the sweep.
	ViolationSweepSeconds int `json:"violation_sweep_seconds"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.QRSecret == "" {
		c.QRSecret = "parkd-receipt-secret"
	}
	if c.ViolationSweepSeconds < 0 {
		c.ViolationSweepSeconds = 0
	}
}

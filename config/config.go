// Package config loads the device configuration from a YAML or JSON file
// with PILLBOX_ environment overrides.
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

	"github.com/kilianp07/pillbox/core/dispense"
	"github.com/kilianp07/pillbox/core/factory"
	"github.com/kilianp07/pillbox/core/metrics"
	"github.com/kilianp07/pillbox/core/monitoring"
	"github.com/kilianp07/pillbox/core/schedule"
	"github.com/kilianp07/pillbox/infra/hal"
	"github.com/kilianp07/pillbox/infra/mqtt"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nested keys: PILLBOX_MQTT__BROKER sets mqtt.broker.
const EnvPrefix = "PILLBOX_"

type Config struct {
	Device   DeviceConfig    `json:"device"`
	MQTT     mqtt.Config     `json:"mqtt"`
	Dispense dispense.Config `json:"dispense"`
	Schedule schedule.Config `json:"schedule"`
	Hardware hal.Config      `json:"hardware"`
	Metrics  metrics.Config  `json:"metrics"`
	// Journal selects the dispense journal backend: none, jsonl, sqlite or s3.
	Journal    factory.ModuleConfig `json:"journal"`
	Monitoring monitoring.Config    `json:"monitoring"`
	Log        LogConfig            `json:"log"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
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
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// SetDefaults fills every section. The MQTT client id falls back to the
// thing name.
func (c *Config) SetDefaults() {
	c.Device.SetDefaults()
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = c.Device.ThingName
	}
	c.MQTT.SetDefaults()
	c.Dispense.SetDefaults()
	c.Schedule.SetDefaults()
	c.Hardware.SetDefaults()
	c.Log.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	for _, validate := range []func() error{
		c.Device.Validate,
		c.MQTT.Validate,
		c.Dispense.Validate,
		c.Schedule.Validate,
		c.Hardware.Validate,
		c.Log.Validate,
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

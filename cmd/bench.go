package cmd

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kilianp07/pillbox/config"
	"github.com/kilianp07/pillbox/infra/logger"
	"github.com/kilianp07/pillbox/infra/mqtt"
)

// dialBench connects a publisher acting as the cloud side of the shadow. The
// client id gets a random suffix so it never kicks the device off the broker.
func dialBench(component string) (*mqtt.Publisher, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	mqttCfg := cfg.MQTT
	mqttCfg.ClientID = benchClientID(mqttCfg.ClientID)
	return mqtt.Dial(mqttCfg, cfg.Device.Topics(), logger.New(component))
}

func benchClientID(base string) string {
	suffix := uuid.NewString()[:8]
	if base == "" {
		return "pillbox-bench-" + suffix
	}
	return base + "-bench-" + suffix
}

// newCommandID returns a random non-zero command id.
func newCommandID() uint64 {
	for {
		if id := uint64(uuid.New().ID()); id != 0 {
			return id
		}
	}
}

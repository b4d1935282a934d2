package config

import (
	"fmt"
	"time"
)

const (
	defaultStatsPollingInterval = time.Minute
	minStatsPollingInterval     = time.Second
)

// PollerConfig controls how often ledger gauges are refreshed.
type PollerConfig struct {
	StatsPollingInterval time.Duration `mapstructure:"stats-polling-interval"`
}

func (cfg *PollerConfig) Validate() error {
	switch {
	case cfg.StatsPollingInterval <= 0:
		cfg.StatsPollingInterval = defaultStatsPollingInterval
	case cfg.StatsPollingInterval < minStatsPollingInterval:
		return fmt.Errorf("stats polling interval %s is below the minimum of %s",
			cfg.StatsPollingInterval, minStatsPollingInterval)
	}

	return nil
}

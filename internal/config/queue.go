package config

import (
	"errors"
	"time"
)

const (
	defaultQueueExchange  = "solscore.ledger"
	defaultPublishTimeout = 5 * time.Second
)

type QueueConfig struct {
	// Enabled turns ledger event publishing on. When false events are dropped.
	Enabled        bool          `mapstructure:"enabled"`
	Url            string        `mapstructure:"url"`
	QueueUser      string        `mapstructure:"user"`
	QueuePassword  string        `mapstructure:"password"`
	Exchange       string        `mapstructure:"exchange"`
	PublishTimeout time.Duration `mapstructure:"publish-timeout"`
}

func (cfg *QueueConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Url == "" {
		return errors.New("url is required")
	}

	if cfg.QueueUser == "" {
		return errors.New("user is required")
	}

	if cfg.QueuePassword == "" {
		return errors.New("password is required")
	}

	if cfg.Exchange == "" {
		cfg.Exchange = defaultQueueExchange
	}

	if cfg.PublishTimeout <= 0 {
		return errors.New("publish-timeout must be positive")
	}

	return nil
}

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultServerTimeout     = 30 * time.Second
	defaultServerIdleTimeout = 120 * time.Second
	defaultSignatureWindow   = 2 * time.Minute
)

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle-timeout"`

	// SignatureWindow bounds how far a signed request's timestamp may be from
	// the server clock. Signatures are remembered for this long.
	SignatureWindow time.Duration `mapstructure:"signature-window"`
}

func (cfg *ServerConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("host is required")
	}

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1024 and 65535, got %d", cfg.Port)
	}

	if cfg.ReadTimeout <= 0 {
		return errors.New("read-timeout must be positive")
	}

	if cfg.WriteTimeout <= 0 {
		return errors.New("write-timeout must be positive")
	}

	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultServerIdleTimeout
	}

	if cfg.SignatureWindow <= 0 {
		cfg.SignatureWindow = defaultSignatureWindow
	}

	return nil
}

func (cfg *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

package config

import (
	"errors"
	"fmt"
	"net/url"
)

type DbConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Address  string `mapstructure:"address"`
	DbName   string `mapstructure:"db-name"`
	// InMemory keeps the ledger in process memory instead of MongoDB.
	// Mongo fields are ignored when it is set.
	InMemory bool `mapstructure:"in-memory"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.InMemory {
		return nil
	}

	if cfg.Address == "" {
		return errors.New("address is required")
	}

	u, err := url.Parse(cfg.Address)
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return fmt.Errorf("address must be a mongodb uri, got scheme %q", u.Scheme)
	}

	if cfg.DbName == "" {
		return errors.New("db-name is required")
	}

	if cfg.Username == "" && cfg.Password != "" {
		return errors.New("username is required when password is set")
	}

	return nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "SOLSCORE"

type Config struct {
	Db      DbConfig      `mapstructure:"db"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Server  ServerConfig  `mapstructure:"server"`
	Poller  PollerConfig  `mapstructure:"poller"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Bank    BankConfig    `mapstructure:"bank"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Db.Validate(); err != nil {
		return fmt.Errorf("invalid db config: %w", err)
	}

	if err := cfg.Engine.Validate(); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}

	if err := cfg.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := cfg.Poller.Validate(); err != nil {
		return fmt.Errorf("invalid poller config: %w", err)
	}

	if err := cfg.Queue.Validate(); err != nil {
		return fmt.Errorf("invalid queue config: %w", err)
	}

	if err := cfg.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}

	if err := cfg.Bank.Validate(); err != nil {
		return fmt.Errorf("invalid bank config: %w", err)
	}

	// vault balances and ledger records must share a lifetime
	if cfg.Bank.IsVolatile() && !cfg.Db.InMemory {
		return errVolatileBankWithPersistentStore
	}

	return nil
}

// New returns a fully parsed Config object from a given file path.
// Every key can be overridden from the environment, e.g. db.address is read
// from SOLSCORE_DB_ADDRESS.
func New(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(cfgFile)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.program-id", defaultProgramID)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read-timeout", defaultServerTimeout)
	v.SetDefault("server.write-timeout", defaultServerTimeout)
	v.SetDefault("server.idle-timeout", defaultServerIdleTimeout)
	v.SetDefault("server.signature-window", defaultSignatureWindow)
	v.SetDefault("poller.stats-polling-interval", defaultStatsPollingInterval)
	v.SetDefault("queue.exchange", defaultQueueExchange)
	v.SetDefault("queue.publish-timeout", defaultPublishTimeout)
	v.SetDefault("metrics.host", "0.0.0.0")
	v.SetDefault("metrics.port", 2112)
	v.SetDefault("bank.kind", BankKindMemory)
}

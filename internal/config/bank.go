package config

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const BankKindMemory = "memory"

// BankAccount is a balance credited to an account when the bank starts.
type BankAccount struct {
	Address string `mapstructure:"address"`
	Balance uint64 `mapstructure:"balance"`
}

type BankConfig struct {
	// Kind selects the transfer backend. Only the in-process memory bank is
	// available, and its balances do not survive a restart.
	Kind     string        `mapstructure:"kind"`
	Accounts []BankAccount `mapstructure:"accounts"`
}

func (cfg *BankConfig) Validate() error {
	if cfg.Kind == "" {
		cfg.Kind = BankKindMemory
	}
	if cfg.Kind != BankKindMemory {
		return fmt.Errorf("unsupported bank kind %q", cfg.Kind)
	}

	seen := make(map[string]struct{}, len(cfg.Accounts))
	for _, account := range cfg.Accounts {
		if _, err := solana.PublicKeyFromBase58(account.Address); err != nil {
			return fmt.Errorf("account %q is not a valid public key: %w", account.Address, err)
		}
		if _, ok := seen[account.Address]; ok {
			return fmt.Errorf("account %s is listed twice", account.Address)
		}
		seen[account.Address] = struct{}{}
	}

	return nil
}

// IsVolatile reports whether balances live only in process memory.
func (cfg *BankConfig) IsVolatile() bool {
	return cfg.Kind == BankKindMemory
}

var errVolatileBankWithPersistentStore = errors.New(
	"the memory bank loses every vault balance on restart while the ledger records persist, " +
		"set db.in-memory: true to run with it",
)

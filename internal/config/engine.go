package config

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const defaultProgramID = "DHZDcJbhgt57A114LYLycmyYn5s8Zr5jCnyVy2odP8aa"

type EngineConfig struct {
	// ProgramID scopes every derived address.
	ProgramID string `mapstructure:"program-id"`
}

func (cfg *EngineConfig) Validate() error {
	if cfg.ProgramID == "" {
		cfg.ProgramID = defaultProgramID
	}

	if _, err := solana.PublicKeyFromBase58(cfg.ProgramID); err != nil {
		return fmt.Errorf("program-id is not a valid public key: %w", err)
	}

	return nil
}

func (cfg *EngineConfig) GetProgramID() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(cfg.ProgramID)
}

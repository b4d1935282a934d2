package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/solscore-labs/solscore-ledger/internal/db"
	"github.com/solscore-labs/solscore-ledger/internal/observability/metrics"
	"github.com/solscore-labs/solscore-ledger/internal/utils/poller"
)

// StartStatsPoller starts the stats polling service
func (s *Service) StartStatsPoller(ctx context.Context) {
	statsPoller := poller.NewPoller(
		"stats",
		s.cfg.Poller.StatsPollingInterval,
		metrics.RecordPollerDuration("stats", s.updateStats),
	)
	go statsPoller.Start(ctx)
}

// updateStats reads the pool, the treasury and the vault balances and
// publishes them as gauges. Records that were not created yet are skipped.
func (s *Service) updateStats(ctx context.Context) error {
	log := log.Ctx(ctx)

	poolAddr, err := s.deriver.RewardPool()
	if err != nil {
		return err
	}
	pool, err := s.db.GetRewardPool(ctx, poolAddr.Address.String())
	switch {
	case err == nil:
		metrics.RecordRewardPool(pool.TotalRewards, pool.DistributedRewards)
		log.Debug().
			Uint64("total_rewards", pool.TotalRewards).
			Uint64("distributed_rewards", pool.DistributedRewards).
			Msg("Updated reward pool stats")
	case db.IsNotFoundError(err):
		log.Debug().Msg("Reward pool not created yet - skipping pool stats")
	default:
		return fmt.Errorf("failed to load reward pool: %w", err)
	}

	treasuryAddr, err := s.deriver.Treasury()
	if err != nil {
		return err
	}
	treasury, err := s.db.GetTreasury(ctx, treasuryAddr.Address.String())
	switch {
	case err == nil:
		vault, err := s.deriver.TreasuryVault()
		if err != nil {
			return err
		}
		balance, err := s.bank.Balance(ctx, vault.Address)
		if err != nil {
			return fmt.Errorf("failed to read treasury vault balance: %w", err)
		}
		metrics.RecordTreasury(balance, treasury.TotalFees)
	case db.IsNotFoundError(err):
		log.Debug().Msg("Treasury not created yet - skipping treasury stats")
	default:
		return fmt.Errorf("failed to load treasury: %w", err)
	}

	stakeVault, err := s.deriver.StakeVault()
	if err != nil {
		return err
	}
	balance, err := s.bank.Balance(ctx, stakeVault.Address)
	if err != nil {
		return fmt.Errorf("failed to read stake vault balance: %w", err)
	}
	metrics.RecordStakeVaultBalance(balance)

	return nil
}

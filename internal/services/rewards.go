package services

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"

	"github.com/solscore-labs/solscore-ledger/internal/clients/bank"
	"github.com/solscore-labs/solscore-ledger/internal/db"
	"github.com/solscore-labs/solscore-ledger/internal/db/model"
	"github.com/solscore-labs/solscore-ledger/internal/types"
	"github.com/solscore-labs/solscore-ledger/internal/utils"
)

type RewardParams struct {
	BaseAPY               uint8
	ScoreMultiplier       uint8
	DistributionFrequency uint64
}

type ClaimResult struct {
	Stake  *model.StakeDocument
	Reward uint64
}

// RewardPreview is the reward a stake would receive if claimed at Now.
type RewardPreview struct {
	Reward      uint64
	Now         int64
	ClaimableAt int64
}

func (s *Service) CreateRewardConfig(ctx context.Context, caller solana.PublicKey, params RewardParams) (*model.RewardConfigDocument, error) {
	var doc *model.RewardConfigDocument
	err := s.observe(ctx, "CreateRewardConfig", func() error {
		if params.BaseAPY > 100 {
			return types.NewValidationFailedError(
				types.InvalidRewardParameter,
				fmt.Errorf("base apy %d exceeds 100", params.BaseAPY),
			)
		}

		addr, err := derived(s.deriver.RewardConfig())
		if err != nil {
			return err
		}

		doc = &model.RewardConfigDocument{
			ID:                    addr.Address.String(),
			Admin:                 caller.String(),
			BaseAPY:               params.BaseAPY,
			ScoreMultiplier:       params.ScoreMultiplier,
			DistributionFrequency: params.DistributionFrequency,
			Bump:                  addr.Bump,
		}
		return s.commit(ctx, db.NewBatch().Insert(doc))
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("admin", caller.String()).
		Uint8("base_apy", params.BaseAPY).
		Uint8("score_multiplier", params.ScoreMultiplier).
		Uint64("distribution_frequency", params.DistributionFrequency).
		Msg("reward config created")
	return doc, nil
}

func (s *Service) GetRewardConfig(ctx context.Context) (*model.RewardConfigDocument, error) {
	addr, err := derived(s.deriver.RewardConfig())
	if err != nil {
		return nil, err
	}
	return load(ctx, s.db.GetRewardConfig, addr.Address, "reward config")
}

// CreateRewardPool opens the empty reward pool. Only the reward config admin may do it.
func (s *Service) CreateRewardPool(ctx context.Context, caller solana.PublicKey) (*model.RewardPoolDocument, error) {
	var doc *model.RewardPoolDocument
	err := s.observe(ctx, "CreateRewardPool", func() error {
		rewardCfg, err := s.GetRewardConfig(ctx)
		if err != nil {
			return err
		}
		if err := authorize(caller, rewardCfg.Admin, "reward config"); err != nil {
			return err
		}

		addr, err := derived(s.deriver.RewardPool())
		if err != nil {
			return err
		}
		// the vault needs no record, deriving it up front surfaces a bad program id early
		if _, err := derived(s.deriver.RewardVault()); err != nil {
			return err
		}

		doc = &model.RewardPoolDocument{
			ID:    addr.Address.String(),
			Admin: caller.String(),
			Bump:  addr.Bump,
		}
		return s.commit(ctx, db.NewBatch().Insert(doc))
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("admin", caller.String()).Msg("reward pool created")
	return doc, nil
}

func (s *Service) GetRewardPool(ctx context.Context) (*model.RewardPoolDocument, error) {
	addr, err := derived(s.deriver.RewardPool())
	if err != nil {
		return nil, err
	}
	return load(ctx, s.db.GetRewardPool, addr.Address, "reward pool")
}

// FundRewardPool moves amount from the pool admin into the reward vault.
func (s *Service) FundRewardPool(ctx context.Context, caller solana.PublicKey, amount uint64) (*model.RewardPoolDocument, error) {
	var pool *model.RewardPoolDocument
	err := s.observe(ctx, "FundRewardPool", func() error {
		poolAddr, err := derived(s.deriver.RewardPool())
		if err != nil {
			return err
		}
		release := s.locks.acquire(poolAddr.Address)
		defer release()

		pool, err = load(ctx, s.db.GetRewardPool, poolAddr.Address, "reward pool")
		if err != nil {
			return err
		}
		if err := authorize(caller, pool.Admin, "reward pool"); err != nil {
			return err
		}
		if amount == 0 {
			return types.NewValidationFailedError(types.InvalidDepositAmount, fmt.Errorf("funding amount must be positive"))
		}
		total, err := utils.CheckedAdd(pool.TotalRewards, amount)
		if err != nil {
			return types.NewValidationFailedError(types.InvalidDepositAmount, fmt.Errorf("pool total overflows: %w", err))
		}

		vault, err := derived(s.deriver.RewardVault())
		if err != nil {
			return err
		}
		err = s.transfer(ctx, bank.TransferRequest{
			From:   caller,
			To:     vault.Address,
			Amount: amount,
			Signer: caller,
		})
		if err != nil {
			return err
		}

		pool.TotalRewards = total
		if err := s.commit(ctx, db.NewBatch().Update(pool)); err != nil {
			s.compensate(ctx, "FundRewardPool", bank.TransferRequest{
				From:      vault.Address,
				To:        caller,
				Amount:    amount,
				Authority: &vault,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Uint64("amount", amount).
		Uint64("total_rewards", pool.TotalRewards).
		Msg("reward pool funded")
	s.emit(ctx, &types.LedgerEvent{
		Type:    types.EventRewardPoolFunded,
		Account: pool.ID,
		Actor:   caller.String(),
		Amount:  amount,
	})
	return pool, nil
}

// ClaimRewards pays the reward accrued since the stake's last claim. The claim
// and the pool debit happen under the stake and pool locks, so concurrent
// claims can never both pass the solvency check.
func (s *Service) ClaimRewards(ctx context.Context, caller, stakeAddress solana.PublicKey) (*ClaimResult, error) {
	var result *ClaimResult
	err := s.observe(ctx, "ClaimRewards", func() error {
		poolAddr, err := derived(s.deriver.RewardPool())
		if err != nil {
			return err
		}
		release := s.locks.acquire(stakeAddress, poolAddr.Address)
		defer release()

		stake, err := s.loadActiveStake(ctx, caller, stakeAddress)
		if err != nil {
			return err
		}
		rewardCfg, err := s.GetRewardConfig(ctx)
		if err != nil {
			return err
		}
		pool, err := load(ctx, s.db.GetRewardPool, poolAddr.Address, "reward pool")
		if err != nil {
			return err
		}
		user, err := s.GetUserRecord(ctx, caller)
		if err != nil {
			return err
		}

		now := s.now()
		reward, err := s.accruedReward(stake, rewardCfg, user, now)
		if err != nil {
			return err
		}
		if reward > pool.Remaining() {
			return types.NewStateError(
				types.NoRewardsAvailable,
				fmt.Errorf("reward %d exceeds the %d left in the pool", reward, pool.Remaining()),
			)
		}

		stake.LastClaimTime = now
		batch := db.NewBatch().Update(stake)
		result = &ClaimResult{Stake: stake, Reward: reward}
		if reward == 0 {
			return s.commit(ctx, batch)
		}

		pool.DistributedRewards += reward
		batch.Update(pool)

		vault, err := derived(s.deriver.RewardVault())
		if err != nil {
			return err
		}
		err = s.transfer(ctx, bank.TransferRequest{
			From:      vault.Address,
			To:        caller,
			Amount:    reward,
			Authority: &vault,
		})
		if err != nil {
			return err
		}

		if err := s.commit(ctx, batch); err != nil {
			s.compensate(ctx, "ClaimRewards", bank.TransferRequest{
				From:   caller,
				To:     vault.Address,
				Amount: reward,
				Signer: caller,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("stake", result.Stake.ID).
		Str("owner", result.Stake.Owner).
		Uint64("reward", result.Reward).
		Msg("rewards claimed")
	s.emit(ctx, &types.LedgerEvent{
		Type:    types.EventRewardsClaimed,
		Account: result.Stake.ID,
		Actor:   result.Stake.Owner,
		Amount:  result.Reward,
	})
	return result, nil
}

// PreviewRewards computes what ClaimRewards would pay at the current time
// without any effect. It ignores the claim frequency and the pool balance.
func (s *Service) PreviewRewards(ctx context.Context, stakeAddress solana.PublicKey) (*RewardPreview, error) {
	stake, err := s.GetStake(ctx, stakeAddress)
	if err != nil {
		return nil, err
	}
	rewardCfg, err := s.GetRewardConfig(ctx)
	if err != nil {
		return nil, err
	}
	owner, err := solana.PublicKeyFromBase58(stake.Owner)
	if err != nil {
		return nil, types.NewInternalServiceError(err)
	}
	user, err := s.GetUserRecord(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := s.now()
	preview := &RewardPreview{
		Now:         now,
		ClaimableAt: stake.LastClaimTime + int64(rewardCfg.DistributionFrequency),
	}
	if !stake.IsActive {
		return preview, nil
	}

	reward, err := computeReward(stake.Amount, rewardCfg.BaseAPY, rewardCfg.ScoreMultiplier, user.WeeklyScore, now-stake.LastClaimTime)
	if err != nil {
		return nil, types.NewStateError(types.NoRewardsAvailable, err)
	}
	preview.Reward = reward
	return preview, nil
}

func (s *Service) accruedReward(
	stake *model.StakeDocument,
	rewardCfg *model.RewardConfigDocument,
	user *model.UserDocument,
	now int64,
) (uint64, error) {
	elapsed := now - stake.LastClaimTime
	if elapsed < 0 || uint64(elapsed) < rewardCfg.DistributionFrequency {
		return 0, types.NewStateError(
			types.TooEarlyToClaim,
			fmt.Errorf("%d seconds since last claim, %d required", elapsed, rewardCfg.DistributionFrequency),
		)
	}

	reward, err := computeReward(stake.Amount, rewardCfg.BaseAPY, rewardCfg.ScoreMultiplier, user.WeeklyScore, elapsed)
	if err != nil {
		// a reward too large for u64 can never be covered by the pool
		return 0, types.NewStateError(types.NoRewardsAvailable, err)
	}
	return reward, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"

	"github.com/solscore-labs/solscore-ledger/internal/clients/bank"
	"github.com/solscore-labs/solscore-ledger/internal/db"
	"github.com/solscore-labs/solscore-ledger/internal/db/model"
	"github.com/solscore-labs/solscore-ledger/internal/derive"
	"github.com/solscore-labs/solscore-ledger/internal/types"
	"github.com/solscore-labs/solscore-ledger/internal/utils"
	"github.com/solscore-labs/solscore-ledger/internal/utils/state"
)

type StakeParams struct {
	MinStakeAmount     uint64
	MaxStakeAmount     uint64
	EarlyWithdrawalFee uint8
	LockOptions        []uint64
}

func (p StakeParams) validate() error {
	if p.MinStakeAmount == 0 || p.MinStakeAmount > p.MaxStakeAmount {
		return types.NewValidationFailedError(
			types.InvalidStakeParameter,
			fmt.Errorf("stake bounds [%d, %d] are invalid", p.MinStakeAmount, p.MaxStakeAmount),
		)
	}
	if p.EarlyWithdrawalFee > 100 {
		return types.NewValidationFailedError(
			types.InvalidStakeParameter,
			fmt.Errorf("early withdrawal fee %d exceeds 100", p.EarlyWithdrawalFee),
		)
	}
	if len(p.LockOptions) == 0 {
		return types.NewValidationFailedError(types.InvalidStakeParameter, errors.New("no lock options"))
	}
	for _, option := range p.LockOptions {
		if option == 0 {
			return types.NewValidationFailedError(types.InvalidStakeParameter, errors.New("lock option must be positive"))
		}
	}
	return nil
}

// UnstakeResult reports the principal paid back and the early withdrawal fee kept.
type UnstakeResult struct {
	Stake    *model.StakeDocument
	Returned uint64
	Fee      uint64
}

func (s *Service) CreateStakeConfig(ctx context.Context, caller solana.PublicKey, params StakeParams) (*model.StakeConfigDocument, error) {
	var doc *model.StakeConfigDocument
	err := s.observe(ctx, "CreateStakeConfig", func() error {
		if err := params.validate(); err != nil {
			return err
		}

		addr, err := derived(s.deriver.StakeConfig())
		if err != nil {
			return err
		}

		doc = &model.StakeConfigDocument{
			ID:                 addr.Address.String(),
			Admin:              caller.String(),
			MinStakeAmount:     params.MinStakeAmount,
			MaxStakeAmount:     params.MaxStakeAmount,
			EarlyWithdrawalFee: params.EarlyWithdrawalFee,
			LockOptions:        params.LockOptions,
			Bump:               addr.Bump,
		}
		return s.commit(ctx, db.NewBatch().Insert(doc))
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("admin", caller.String()).
		Uint64("min_stake_amount", params.MinStakeAmount).
		Uint64("max_stake_amount", params.MaxStakeAmount).
		Msg("stake config created")
	return doc, nil
}

func (s *Service) GetStakeConfig(ctx context.Context) (*model.StakeConfigDocument, error) {
	addr, err := derived(s.deriver.StakeConfig())
	if err != nil {
		return nil, err
	}
	return load(ctx, s.db.GetStakeConfig, addr.Address, "stake config")
}

// Stake locks amount from the caller for lockPeriod seconds. The new stake is
// addressed by the caller's next sequence number.
func (s *Service) Stake(ctx context.Context, caller solana.PublicKey, amount, lockPeriod uint64) (*model.StakeDocument, error) {
	var doc *model.StakeDocument
	err := s.observe(ctx, "Stake", func() error {
		counterAddr, err := derived(s.deriver.StakeCounter(caller))
		if err != nil {
			return err
		}
		release := s.locks.acquire(counterAddr.Address)
		defer release()

		stakeCfg, err := s.GetStakeConfig(ctx)
		if err != nil {
			return err
		}
		user, err := s.GetUserRecord(ctx, caller)
		if err != nil {
			return err
		}
		if err := authorize(caller, user.Authority, "user record"); err != nil {
			return err
		}

		if amount < stakeCfg.MinStakeAmount || amount > stakeCfg.MaxStakeAmount {
			return types.NewValidationFailedError(
				types.InvalidStakeAmount,
				fmt.Errorf("amount %d is outside [%d, %d]", amount, stakeCfg.MinStakeAmount, stakeCfg.MaxStakeAmount),
			)
		}
		if !stakeCfg.AllowsLockPeriod(lockPeriod) {
			return types.NewValidationFailedError(
				types.InvalidLockPeriod,
				fmt.Errorf("lock period %d is not one of %v", lockPeriod, stakeCfg.LockOptions),
			)
		}

		counter, isNew, err := s.loadStakeCounter(ctx, caller, counterAddr)
		if err != nil {
			return err
		}
		next, err := utils.CheckedAdd(counter.Count, 1)
		if err != nil {
			return types.NewInternalServiceError(fmt.Errorf("stake sequence of %s is exhausted", caller))
		}

		stakeAddr, err := derived(s.deriver.Stake(caller, counter.Count))
		if err != nil {
			return err
		}
		vault, err := derived(s.deriver.StakeVault())
		if err != nil {
			return err
		}

		now := s.now()
		doc = &model.StakeDocument{
			ID:            stakeAddr.Address.String(),
			Owner:         caller.String(),
			Sequence:      counter.Count,
			Amount:        amount,
			StartTime:     now,
			LockPeriod:    lockPeriod,
			FplUser:       user.ID,
			IsActive:      true,
			LastClaimTime: now,
			Bump:          stakeAddr.Bump,
		}
		counter.Count = next

		batch := db.NewBatch().Insert(doc)
		if isNew {
			batch.Insert(counter)
		} else {
			batch.Update(counter)
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

		if err := s.commit(ctx, batch); err != nil {
			s.compensate(ctx, "Stake", bank.TransferRequest{
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
		Str("stake", doc.ID).
		Str("owner", doc.Owner).
		Uint64("sequence", doc.Sequence).
		Uint64("amount", doc.Amount).
		Uint64("lock_period", doc.LockPeriod).
		Msg("stake created")
	s.emit(ctx, &types.LedgerEvent{
		Type:      types.EventStakeCreated,
		Timestamp: doc.StartTime,
		Account:   doc.ID,
		Actor:     doc.Owner,
		Amount:    doc.Amount,
		Extra: map[string]string{
			"sequence":    fmt.Sprintf("%d", doc.Sequence),
			"lock_period": fmt.Sprintf("%d", doc.LockPeriod),
		},
	})
	return doc, nil
}

// Unstake closes an active stake and pays the principal back to its owner.
// Closing before the lock period elapses keeps floor(amount * fee / 100) and
// credits it to the treasury fee counter.
func (s *Service) Unstake(ctx context.Context, caller, stakeAddress solana.PublicKey) (*UnstakeResult, error) {
	var result *UnstakeResult
	err := s.observe(ctx, "Unstake", func() error {
		treasuryAddr, err := derived(s.deriver.Treasury())
		if err != nil {
			return err
		}
		release := s.locks.acquire(stakeAddress, treasuryAddr.Address)
		defer release()

		stake, err := s.loadActiveStake(ctx, caller, stakeAddress)
		if err != nil {
			return err
		}
		stakeCfg, err := s.GetStakeConfig(ctx)
		if err != nil {
			return err
		}
		treasury, err := load(ctx, s.db.GetTreasury, treasuryAddr.Address, "treasury")
		if err != nil {
			return err
		}

		var fee uint64
		if elapsed := s.now() - stake.StartTime; elapsed < 0 || uint64(elapsed) < stake.LockPeriod {
			fee, err = utils.Percent(stake.Amount, uint64(stakeCfg.EarlyWithdrawalFee))
			if err != nil {
				return types.NewInternalServiceError(err)
			}
		}
		totalFees, err := utils.CheckedAdd(treasury.TotalFees, fee)
		if err != nil {
			return types.NewInternalServiceError(fmt.Errorf("treasury fee counter overflows: %w", err))
		}
		returned := stake.Amount - fee

		stake.IsActive = false
		batch := db.NewBatch().Update(stake)
		if fee > 0 {
			treasury.TotalFees = totalFees
			batch.Update(treasury)
		}

		if returned > 0 {
			vault, err := derived(s.deriver.StakeVault())
			if err != nil {
				return err
			}
			err = s.transfer(ctx, bank.TransferRequest{
				From:      vault.Address,
				To:        caller,
				Amount:    returned,
				Authority: &vault,
			})
			if err != nil {
				return err
			}

			if err := s.commit(ctx, batch); err != nil {
				s.compensate(ctx, "Unstake", bank.TransferRequest{
					From:   caller,
					To:     vault.Address,
					Amount: returned,
					Signer: caller,
				})
				return err
			}
		} else if err := s.commit(ctx, batch); err != nil {
			return err
		}

		result = &UnstakeResult{Stake: stake, Returned: returned, Fee: fee}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("stake", result.Stake.ID).
		Str("owner", result.Stake.Owner).
		Uint64("returned", result.Returned).
		Uint64("fee", result.Fee).
		Msg("stake closed")
	s.emit(ctx, &types.LedgerEvent{
		Type:    types.EventStakeClosed,
		Account: result.Stake.ID,
		Actor:   result.Stake.Owner,
		Amount:  result.Returned,
		Fee:     result.Fee,
	})
	return result, nil
}

func (s *Service) GetStake(ctx context.Context, stakeAddress solana.PublicKey) (*model.StakeDocument, error) {
	return load(ctx, s.db.GetStake, stakeAddress, "stake")
}

func (s *Service) ListStakes(ctx context.Context, owner solana.PublicKey) ([]*model.StakeDocument, error) {
	stakes, err := s.db.ListStakesByOwner(ctx, owner.String())
	if err != nil {
		return nil, types.NewInternalServiceError(fmt.Errorf("failed to list stakes of %s: %w", owner, err))
	}
	return stakes, nil
}

// loadActiveStake loads a stake the caller may act on: it must sit at the
// address derived from its owner and sequence, belong to the caller and
// still be active.
func (s *Service) loadActiveStake(ctx context.Context, caller, stakeAddress solana.PublicKey) (*model.StakeDocument, error) {
	stake, err := s.GetStake(ctx, stakeAddress)
	if err != nil {
		return nil, err
	}

	owner, err := solana.PublicKeyFromBase58(stake.Owner)
	if err != nil {
		return nil, types.NewInternalServiceError(fmt.Errorf("stake %s has a malformed owner: %w", stakeAddress, err))
	}
	expected, err := derived(s.deriver.Stake(owner, stake.Sequence))
	if err != nil {
		return nil, err
	}
	if !expected.Address.Equals(stakeAddress) || expected.Bump != stake.Bump {
		return nil, types.NewUnauthorizedError("stake %s is not derived from its owner and sequence", stakeAddress)
	}

	if err := authorize(caller, stake.Owner, "stake"); err != nil {
		return nil, err
	}

	current := types.StakeStateFromActive(stake.IsActive)
	if !state.IsQualifiedStateForStakeStateChange(current, types.StakeStateClosed) {
		return nil, types.NewStateError(types.StakeNotActive, fmt.Errorf("stake %s is %s", stakeAddress, current))
	}

	return stake, nil
}

// loadStakeCounter returns the owner's counter, or a fresh one at zero that
// still has to be inserted.
func (s *Service) loadStakeCounter(
	ctx context.Context, owner solana.PublicKey, addr derive.Authority,
) (*model.StakeCounterDocument, bool, error) {
	counter, err := s.db.GetStakeCounter(ctx, addr.Address.String())
	if err == nil {
		return counter, false, nil
	}
	if !db.IsNotFoundError(err) {
		return nil, false, types.NewInternalServiceError(fmt.Errorf("failed to load stake counter: %w", err))
	}

	return &model.StakeCounterDocument{
		ID:    addr.Address.String(),
		Owner: owner.String(),
		Count: 0,
		Bump:  addr.Bump,
	}, true, nil
}

// compensate reverses a transfer whose ledger commit failed. A failed
// reversal leaves vault balances out of sync with the ledger and needs an
// operator.
func (s *Service) compensate(ctx context.Context, operation string, reverse bank.TransferRequest) {
	if err := s.bank.Transfer(ctx, reverse); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Str("operation", operation).
			Str("from", reverse.From.String()).
			Str("to", reverse.To.String()).
			Uint64("amount", reverse.Amount).
			Msg("failed to reverse transfer after commit failure, vault and ledger diverged")
		return
	}
	log.Ctx(ctx).Warn().
		Str("operation", operation).
		Uint64("amount", reverse.Amount).
		Msg("transfer reversed after commit failure")
}

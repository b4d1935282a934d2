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

type TreasuryParams struct {
	ProtocolFee       uint8
	ReservePercentage uint8
}

// TreasuryView is the treasury record together with the live vault balance.
type TreasuryView struct {
	*model.TreasuryDocument
	VaultBalance    uint64
	MaxWithdrawable uint64
	ReservedBalance uint64
}

func validatePercentage(name string, value uint8) error {
	if value > 100 {
		return types.NewValidationFailedError(
			types.InvalidTreasuryParameter,
			fmt.Errorf("%s %d exceeds 100", name, value),
		)
	}
	return nil
}

// withdrawalLimit splits a vault balance into the reserved part and the part
// the admin may withdraw.
func withdrawalLimit(balance uint64, reservePercentage uint8) (reserved, available uint64, err error) {
	reserved, err = utils.Percent(balance, uint64(reservePercentage))
	if err != nil {
		return 0, 0, err
	}
	return reserved, utils.SaturatingSub(balance, reserved), nil
}

func (s *Service) CreateTreasury(ctx context.Context, caller solana.PublicKey, params TreasuryParams) (*model.TreasuryDocument, error) {
	var doc *model.TreasuryDocument
	err := s.observe(ctx, "CreateTreasury", func() error {
		if err := validatePercentage("protocol fee", params.ProtocolFee); err != nil {
			return err
		}
		if err := validatePercentage("reserve percentage", params.ReservePercentage); err != nil {
			return err
		}

		addr, err := derived(s.deriver.Treasury())
		if err != nil {
			return err
		}
		if _, err := derived(s.deriver.TreasuryVault()); err != nil {
			return err
		}

		doc = &model.TreasuryDocument{
			ID:                addr.Address.String(),
			Admin:             caller.String(),
			ProtocolFee:       params.ProtocolFee,
			ReservePercentage: params.ReservePercentage,
			Bump:              addr.Bump,
		}
		return s.commit(ctx, db.NewBatch().Insert(doc))
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("admin", caller.String()).
		Uint8("protocol_fee", params.ProtocolFee).
		Uint8("reserve_percentage", params.ReservePercentage).
		Msg("treasury created")
	return doc, nil
}

func (s *Service) GetTreasury(ctx context.Context) (*TreasuryView, error) {
	addr, err := derived(s.deriver.Treasury())
	if err != nil {
		return nil, err
	}
	treasury, err := load(ctx, s.db.GetTreasury, addr.Address, "treasury")
	if err != nil {
		return nil, err
	}
	vault, err := derived(s.deriver.TreasuryVault())
	if err != nil {
		return nil, err
	}
	balance, err := s.balance(ctx, vault.Address)
	if err != nil {
		return nil, err
	}
	reserved, available, err := withdrawalLimit(balance, treasury.ReservePercentage)
	if err != nil {
		return nil, types.NewInternalServiceError(err)
	}

	return &TreasuryView{
		TreasuryDocument: treasury,
		VaultBalance:     balance,
		ReservedBalance:  reserved,
		MaxWithdrawable:  available,
	}, nil
}

// DepositTreasury moves amount from any caller into the treasury vault and
// credits it to the fee counter.
func (s *Service) DepositTreasury(ctx context.Context, caller solana.PublicKey, amount uint64) (*model.TreasuryDocument, error) {
	var treasury *model.TreasuryDocument
	err := s.observe(ctx, "DepositTreasury", func() error {
		addr, err := derived(s.deriver.Treasury())
		if err != nil {
			return err
		}
		release := s.locks.acquire(addr.Address)
		defer release()

		treasury, err = load(ctx, s.db.GetTreasury, addr.Address, "treasury")
		if err != nil {
			return err
		}
		if amount == 0 {
			return types.NewValidationFailedError(types.InvalidDepositAmount, fmt.Errorf("deposit amount must be positive"))
		}
		totalFees, err := utils.CheckedAdd(treasury.TotalFees, amount)
		if err != nil {
			return types.NewValidationFailedError(types.InvalidDepositAmount, fmt.Errorf("treasury fee counter overflows: %w", err))
		}

		vault, err := derived(s.deriver.TreasuryVault())
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

		treasury.TotalFees = totalFees
		if err := s.commit(ctx, db.NewBatch().Update(treasury)); err != nil {
			s.compensate(ctx, "DepositTreasury", bank.TransferRequest{
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
		Str("depositor", caller.String()).
		Uint64("amount", amount).
		Uint64("total_fees", treasury.TotalFees).
		Msg("treasury deposit")
	s.emit(ctx, &types.LedgerEvent{
		Type:    types.EventTreasuryDeposited,
		Account: treasury.ID,
		Actor:   caller.String(),
		Amount:  amount,
	})
	return treasury, nil
}

// WithdrawTreasury pays amount from the treasury vault to recipient. The admin
// can never dip into the reserve, floor(balance * reserve_percentage / 100).
// The fee counter is lifetime and stays as it is.
func (s *Service) WithdrawTreasury(ctx context.Context, caller solana.PublicKey, amount uint64, recipient solana.PublicKey) (*TreasuryView, error) {
	var view *TreasuryView
	err := s.observe(ctx, "WithdrawTreasury", func() error {
		addr, err := derived(s.deriver.Treasury())
		if err != nil {
			return err
		}
		vault, err := derived(s.deriver.TreasuryVault())
		if err != nil {
			return err
		}
		release := s.locks.acquire(addr.Address, vault.Address)
		defer release()

		treasury, err := load(ctx, s.db.GetTreasury, addr.Address, "treasury")
		if err != nil {
			return err
		}
		if err := authorize(caller, treasury.Admin, "treasury"); err != nil {
			return err
		}
		if amount == 0 {
			return types.NewValidationFailedError(types.InvalidWithdrawalAmount, fmt.Errorf("withdrawal amount must be positive"))
		}

		balance, err := s.balance(ctx, vault.Address)
		if err != nil {
			return err
		}
		reserved, available, err := withdrawalLimit(balance, treasury.ReservePercentage)
		if err != nil {
			return types.NewInternalServiceError(err)
		}
		if amount > available {
			return types.NewStateError(
				types.ExceedsWithdrawalLimit,
				fmt.Errorf("amount %d exceeds the withdrawable %d (balance %d, reserved %d)", amount, available, balance, reserved),
			)
		}

		err = s.transfer(ctx, bank.TransferRequest{
			From:      vault.Address,
			To:        recipient,
			Amount:    amount,
			Authority: &vault,
		})
		if err != nil {
			return err
		}

		balance -= amount
		reserved, available, err = withdrawalLimit(balance, treasury.ReservePercentage)
		if err != nil {
			return types.NewInternalServiceError(err)
		}
		view = &TreasuryView{
			TreasuryDocument: treasury,
			VaultBalance:     balance,
			ReservedBalance:  reserved,
			MaxWithdrawable:  available,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("recipient", recipient.String()).
		Uint64("amount", amount).
		Uint64("vault_balance", view.VaultBalance).
		Msg("treasury withdrawal")
	s.emit(ctx, &types.LedgerEvent{
		Type:    types.EventTreasuryWithdrawn,
		Account: view.ID,
		Actor:   caller.String(),
		Amount:  amount,
		Extra:   map[string]string{"recipient": recipient.String()},
	})
	return view, nil
}

// UpdateTreasuryConfig changes the protocol fee and the reserve percentage.
// Nil values are left as they are. Both values are validated before either
// is applied.
func (s *Service) UpdateTreasuryConfig(
	ctx context.Context,
	caller solana.PublicKey,
	protocolFee *uint8,
	reservePercentage *uint8,
) (*model.TreasuryDocument, error) {
	var treasury *model.TreasuryDocument
	err := s.observe(ctx, "UpdateTreasuryConfig", func() error {
		addr, err := derived(s.deriver.Treasury())
		if err != nil {
			return err
		}
		release := s.locks.acquire(addr.Address)
		defer release()

		treasury, err = load(ctx, s.db.GetTreasury, addr.Address, "treasury")
		if err != nil {
			return err
		}
		if err := authorize(caller, treasury.Admin, "treasury"); err != nil {
			return err
		}

		if protocolFee != nil {
			if err := validatePercentage("protocol fee", *protocolFee); err != nil {
				return err
			}
		}
		if reservePercentage != nil {
			if err := validatePercentage("reserve percentage", *reservePercentage); err != nil {
				return err
			}
		}

		if protocolFee != nil {
			treasury.ProtocolFee = *protocolFee
		}
		if reservePercentage != nil {
			treasury.ReservePercentage = *reservePercentage
		}
		return s.commit(ctx, db.NewBatch().Update(treasury))
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Uint8("protocol_fee", treasury.ProtocolFee).
		Uint8("reserve_percentage", treasury.ReservePercentage).
		Msg("treasury config updated")
	s.emit(ctx, &types.LedgerEvent{
		Type:    types.EventTreasuryConfigUpdated,
		Account: treasury.ID,
		Actor:   caller.String(),
		Extra: map[string]string{
			"protocol_fee":       fmt.Sprintf("%d", treasury.ProtocolFee),
			"reserve_percentage": fmt.Sprintf("%d", treasury.ReservePercentage),
		},
	})
	return treasury, nil
}

package bank

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"

	"github.com/solscore-labs/solscore-ledger/internal/config"
	"github.com/solscore-labs/solscore-ledger/internal/utils"
)

// MemoryBank is an in-process ledger of native balances.
type MemoryBank struct {
	programID solana.PublicKey

	mu       sync.Mutex
	balances map[solana.PublicKey]uint64
}

func NewMemoryBank(programID solana.PublicKey) *MemoryBank {
	return &MemoryBank{
		programID: programID,
		balances:  make(map[solana.PublicKey]uint64),
	}
}

// NewMemoryBankFromConfig returns a memory bank holding the configured
// starting balances.
func NewMemoryBankFromConfig(programID solana.PublicKey, cfg *config.BankConfig) (*MemoryBank, error) {
	b := NewMemoryBank(programID)
	for _, account := range cfg.Accounts {
		address, err := solana.PublicKeyFromBase58(account.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid bank account %q: %w", account.Address, err)
		}
		if err := b.Credit(address, account.Balance); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Credit mints amount into account. It backs local funding and tests.
func (b *MemoryBank) Credit(account solana.PublicKey, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	balance, err := utils.CheckedAdd(b.balances[account], amount)
	if err != nil {
		return fmt.Errorf("%w: credit of %d to %s", ErrInvalidTransfer, amount, account)
	}
	b.balances[account] = balance
	return nil
}

func (b *MemoryBank) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.balances[account], nil
}

func (b *MemoryBank) Transfer(ctx context.Context, req TransferRequest) error {
	if req.Amount == 0 {
		return fmt.Errorf("%w: zero amount", ErrInvalidTransfer)
	}
	if req.From.Equals(req.To) {
		return fmt.Errorf("%w: source and destination are the same account", ErrInvalidTransfer)
	}
	if err := b.authorize(req); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	from := b.balances[req.From]
	if from < req.Amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFunds, req.From, from, req.Amount)
	}
	to, err := utils.CheckedAdd(b.balances[req.To], req.Amount)
	if err != nil {
		return fmt.Errorf("%w: destination balance overflows", ErrInvalidTransfer)
	}

	b.balances[req.From] = from - req.Amount
	b.balances[req.To] = to

	log.Ctx(ctx).Debug().
		Str("from", req.From.String()).
		Str("to", req.To.String()).
		Uint64("amount", req.Amount).
		Msg("transfer applied")
	return nil
}

func (b *MemoryBank) authorize(req TransferRequest) error {
	if req.Authority == nil {
		if req.Signer.IsZero() || !req.Signer.Equals(req.From) {
			return fmt.Errorf("%w: %s did not sign", ErrUnauthorizedTransfer, req.From)
		}
		return nil
	}

	if !req.Authority.Address.Equals(req.From) {
		return fmt.Errorf("%w: authority is for %s", ErrUnauthorizedTransfer, req.Authority.Address)
	}
	if err := req.Authority.Verify(b.programID); err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorizedTransfer, err)
	}
	return nil
}

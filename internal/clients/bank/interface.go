package bank

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/solscore-labs/solscore-ledger/internal/derive"
)

var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrUnauthorizedTransfer = errors.New("transfer is not authorized by the source account")
	ErrInvalidTransfer      = errors.New("invalid transfer")
)

// TransferRequest moves Amount from From to To. A transfer out of a user
// account is authorized by Signer, which must equal From. A transfer out of a
// vault is authorized by Authority, the derivation proof of From.
type TransferRequest struct {
	From      solana.PublicKey
	To        solana.PublicKey
	Amount    uint64
	Signer    solana.PublicKey
	Authority *derive.Authority
}

// Transferer is the fund-transfer capability. A transfer either moves the full
// amount or fails without effect.
type Transferer interface {
	Transfer(ctx context.Context, req TransferRequest) error
	Balance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

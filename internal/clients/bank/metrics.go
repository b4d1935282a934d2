package bank

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/solscore-labs/solscore-ledger/internal/observability/metrics"
)

type bankWithMetrics struct {
	bank Transferer
}

func NewBankWithMetrics(bank Transferer) *bankWithMetrics {
	return &bankWithMetrics{bank: bank}
}

func (b *bankWithMetrics) Transfer(ctx context.Context, req TransferRequest) error {
	_, err := runBankMethodWithMetrics("Transfer", func() (struct{}, error) {
		return struct{}{}, b.bank.Transfer(ctx, req)
	})
	return err
}

func (b *bankWithMetrics) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	return runBankMethodWithMetrics("Balance", func() (uint64, error) {
		return b.bank.Balance(ctx, account)
	})
}

func runBankMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	duration := time.Since(startTime)

	metrics.RecordBankLatency(duration, method, err != nil)
	return v, err
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/solscore-labs/solscore-ledger/internal/clients/bank"
	"github.com/solscore-labs/solscore-ledger/internal/config"
	"github.com/solscore-labs/solscore-ledger/internal/db"
	"github.com/solscore-labs/solscore-ledger/internal/derive"
	"github.com/solscore-labs/solscore-ledger/internal/observability/metrics"
	"github.com/solscore-labs/solscore-ledger/internal/queue"
	"github.com/solscore-labs/solscore-ledger/internal/types"
)

// Service is the ledger engine. Each exported operation loads the records it
// touches, validates, performs at most one transfer and commits its writes as
// one batch. Rejections leave every record and balance untouched.
type Service struct {
	cfg       *config.Config
	db        db.DbInterface
	bank      bank.Transferer
	deriver   *derive.Deriver
	clock     clockwork.Clock
	locks     *lockTable
	publisher queue.Publisher
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	bank bank.Transferer,
	publisher queue.Publisher,
	clock clockwork.Clock,
) *Service {
	if publisher == nil {
		publisher = queue.NoopPublisher{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		cfg:       cfg,
		db:        db,
		bank:      bank,
		deriver:   derive.New(cfg.Engine.GetProgramID()),
		clock:     clock,
		locks:     newLockTable(),
		publisher: publisher,
	}
}

func (s *Service) Deriver() *derive.Deriver {
	return s.deriver
}

// Clock is the time source every operation reads "now" from.
func (s *Service) Clock() clockwork.Clock {
	return s.clock
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Service) now() int64 {
	return s.clock.Now().Unix()
}

// observe records the duration and outcome of one engine operation.
func (s *Service) observe(ctx context.Context, operation string, f func() error) error {
	startTime := time.Now()
	err := f()
	metrics.RecordEngineOperation(time.Since(startTime), operation, err != nil)

	if err != nil {
		code := types.CodeOf(err)
		metrics.IncEngineRejection(operation, code.String())
		event := log.Ctx(ctx).Warn()
		if code == types.InternalServiceError || code == types.TransferFailed {
			event = log.Ctx(ctx).Error()
		}
		event.Err(err).
			Str("operation", operation).
			Str("code", code.String()).
			Msg("ledger operation rejected")
	}
	return err
}

// authorize checks that caller is the identity stored in a record.
func authorize(caller solana.PublicKey, stored string, record string) error {
	if caller.String() != stored {
		return types.NewUnauthorizedError("%s is not the authority of the %s", caller, record)
	}
	return nil
}

// load fetches a record by its derived address. A missing record is reported
// as AccountNotInitialized.
func load[T any](
	ctx context.Context,
	get func(ctx context.Context, id string) (*T, error),
	addr solana.PublicKey,
	record string,
) (*T, error) {
	doc, err := get(ctx, addr.String())
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewStateError(
				types.AccountNotInitialized,
				fmt.Errorf("%s %s is not initialized", record, addr),
			)
		}
		return nil, types.NewInternalServiceError(fmt.Errorf("failed to load %s: %w", record, err))
	}
	return doc, nil
}

// derived wraps derivation failures, which only happen for malformed inputs.
func derived(a derive.Authority, err error) (derive.Authority, error) {
	if err != nil {
		return derive.Authority{}, types.NewInternalServiceError(err)
	}
	return a, nil
}

func (s *Service) commit(ctx context.Context, batch *db.Batch) error {
	if err := s.db.Commit(ctx, batch); err != nil {
		if db.IsDuplicateKeyError(err) {
			return types.NewStateError(types.AccountAlreadyInitialized, err)
		}
		return types.NewInternalServiceError(fmt.Errorf("failed to commit: %w", err))
	}
	return nil
}

func (s *Service) transfer(ctx context.Context, req bank.TransferRequest) error {
	if err := s.bank.Transfer(ctx, req); err != nil {
		if errors.Is(err, bank.ErrInsufficientFunds) {
			return types.NewStateError(types.InsufficientFunds, err)
		}
		return types.NewTransferFailedError(err)
	}
	return nil
}

func (s *Service) balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	b, err := s.bank.Balance(ctx, account)
	if err != nil {
		return 0, types.NewTransferFailedError(fmt.Errorf("failed to read balance of %s: %w", account, err))
	}
	return b, nil
}

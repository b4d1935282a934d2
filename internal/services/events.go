package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/solscore-labs/solscore-ledger/internal/observability/metrics"
	"github.com/solscore-labs/solscore-ledger/internal/observability/tracing"
	"github.com/solscore-labs/solscore-ledger/internal/types"
)

// emit publishes a ledger event for an operation that already committed. A
// publish failure is logged and counted; the ledger is never rolled back.
func (s *Service) emit(ctx context.Context, event *types.LedgerEvent) {
	event.TraceID = tracing.TraceID(ctx)
	if event.Timestamp == 0 {
		event.Timestamp = s.now()
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.RecordQueueSendError()
		log.Ctx(ctx).Error().
			Err(err).
			Str("event_type", event.Type.String()).
			Str("account", event.Account).
			Msg("failed to publish ledger event")
	}
}

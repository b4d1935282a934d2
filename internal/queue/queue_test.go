package queue

import (
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solscore-labs/solscore-ledger/internal/types"
)

func TestNewPublishing(t *testing.T) {
	event := &types.LedgerEvent{
		Type:      types.EventRewardsClaimed,
		TraceID:   "trace",
		Timestamp: 1_700_000_000,
		Account:   "stake",
		Actor:     "owner",
		Amount:    110_000,
	}

	msg, err := newPublishing(event)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, event.Type.String(), msg.Type)
	assert.Equal(t, "trace", msg.CorrelationId)
	assert.Equal(t, int64(1_700_000_000), msg.Timestamp.Unix())

	var decoded types.LedgerEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, *event, decoded)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	require.NoError(t, p.Publish(t.Context(), &types.LedgerEvent{Type: types.EventStakeCreated}))
	p.Shutdown()
}

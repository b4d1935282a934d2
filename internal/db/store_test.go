package db_test

import (
	"context"
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solscore-labs/solscore-ledger/internal/db"
	"github.com/solscore-labs/solscore-ledger/internal/db/model"
)

func randomStake(owner string, sequence uint64) *model.StakeDocument {
	return &model.StakeDocument{
		ID:            gofakeit.UUID(),
		Owner:         owner,
		Sequence:      sequence,
		Amount:        gofakeit.Uint64(),
		StartTime:     gofakeit.Int64() >> 1,
		LockPeriod:    uint64(gofakeit.IntRange(1, 365)) * 86_400,
		FplUser:       gofakeit.UUID(),
		IsActive:      true,
		LastClaimTime: gofakeit.Int64() >> 1,
		Bump:          gofakeit.Uint8(),
	}
}

// testStore runs the behavior every DbInterface implementation shares.
// newStore must return an empty store.
func testStore(t *testing.T, newStore func(t *testing.T) db.DbInterface) {
	ctx := context.Background()

	t.Run("missing records", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetStake(ctx, gofakeit.UUID())
		assert.True(t, db.IsNotFoundError(err))
		_, err = store.GetTreasury(ctx, gofakeit.UUID())
		assert.True(t, db.IsNotFoundError(err))

		err = store.UpdateUserScore(ctx, gofakeit.UUID(), 1, 1, 1)
		assert.True(t, db.IsNotFoundError(err))

		stakes, err := store.ListStakesByOwner(ctx, gofakeit.UUID())
		require.NoError(t, err)
		assert.Empty(t, stakes)
	})

	t.Run("insert then update", func(t *testing.T) {
		store := newStore(t)
		pool := &model.RewardPoolDocument{ID: gofakeit.UUID(), Admin: gofakeit.UUID(), Bump: 254}
		require.NoError(t, store.Commit(ctx, db.NewBatch().Insert(pool)))

		pool.TotalRewards = 1_000
		pool.DistributedRewards = 10
		require.NoError(t, store.Commit(ctx, db.NewBatch().Update(pool)))

		stored, err := store.GetRewardPool(ctx, pool.ID)
		require.NoError(t, err)
		assert.Equal(t, pool, stored)
	})

	t.Run("amounts above max int64", func(t *testing.T) {
		store := newStore(t)
		cfg := &model.StakeConfigDocument{
			ID:             gofakeit.UUID(),
			MinStakeAmount: 1,
			MaxStakeAmount: math.MaxUint64,
			LockOptions:    []uint64{math.MaxUint64, 1 << 63},
		}
		pool := &model.RewardPoolDocument{ID: gofakeit.UUID(), Admin: gofakeit.UUID(), TotalRewards: 1 << 63}
		require.NoError(t, store.Commit(ctx, db.NewBatch().Insert(cfg, pool)))

		pool.TotalRewards = math.MaxUint64
		pool.DistributedRewards = math.MaxInt64 + 1
		require.NoError(t, store.Commit(ctx, db.NewBatch().Update(pool)))

		storedCfg, err := store.GetStakeConfig(ctx, cfg.ID)
		require.NoError(t, err)
		assert.Equal(t, cfg, storedCfg)
		storedPool, err := store.GetRewardPool(ctx, pool.ID)
		require.NoError(t, err)
		assert.Equal(t, pool, storedPool)
	})

	t.Run("duplicate insert", func(t *testing.T) {
		store := newStore(t)
		cfg := &model.StakeConfigDocument{
			ID:             gofakeit.UUID(),
			MinStakeAmount: 1,
			MaxStakeAmount: 2,
			LockOptions:    []uint64{60},
		}
		require.NoError(t, store.Commit(ctx, db.NewBatch().Insert(cfg)))

		err := store.Commit(ctx, db.NewBatch().Insert(cfg))
		assert.True(t, db.IsDuplicateKeyError(err))
	})

	t.Run("failed batch writes nothing", func(t *testing.T) {
		store := newStore(t)
		owner := gofakeit.UUID()
		existing := randomStake(owner, 0)
		require.NoError(t, store.Commit(ctx, db.NewBatch().Insert(existing)))

		fresh := randomStake(owner, 1)
		counter := &model.StakeCounterDocument{ID: gofakeit.UUID(), Owner: owner, Count: 2}
		missing := &model.TreasuryDocument{ID: gofakeit.UUID()}
		changed := *existing
		changed.IsActive = false

		err := store.Commit(ctx, db.NewBatch().Insert(fresh, counter).Update(&changed, missing))
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))

		_, err = store.GetStake(ctx, fresh.ID)
		assert.True(t, db.IsNotFoundError(err))
		_, err = store.GetStakeCounter(ctx, counter.ID)
		assert.True(t, db.IsNotFoundError(err))
		stored, err := store.GetStake(ctx, existing.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsActive)
	})

	t.Run("stakes by owner in sequence order", func(t *testing.T) {
		store := newStore(t)
		owner := gofakeit.UUID()
		batch := db.NewBatch()
		for _, seq := range []uint64{2, 0, 1} {
			batch.Insert(randomStake(owner, seq))
		}
		batch.Insert(randomStake(gofakeit.UUID(), 0))
		require.NoError(t, store.Commit(ctx, batch))

		stakes, err := store.ListStakesByOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, stakes, 3)
		for i, stake := range stakes {
			assert.Equal(t, uint64(i), stake.Sequence)
			assert.Equal(t, owner, stake.Owner)
		}
	})

	t.Run("user score updates", func(t *testing.T) {
		store := newStore(t)
		user := &model.UserDocument{
			ID:        gofakeit.UUID(),
			Authority: gofakeit.UUID(),
			FplID:     gofakeit.DigitN(7),
			TeamData:  []byte{},
		}
		require.NoError(t, store.Commit(ctx, db.NewBatch().Insert(user)))

		require.NoError(t, store.UpdateUserScore(ctx, user.ID, 77, 1_234, 1_700_000_000))

		stored, err := store.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, uint32(77), stored.WeeklyScore)
		assert.Equal(t, uint32(1_234), stored.TotalScore)
		assert.Equal(t, int64(1_700_000_000), stored.LastUpdated)
		assert.Equal(t, user.FplID, stored.FplID)
	})

	t.Run("returned documents are copies", func(t *testing.T) {
		store := newStore(t)
		treasury := &model.TreasuryDocument{ID: gofakeit.UUID(), ProtocolFee: 5, ReservePercentage: 20}
		require.NoError(t, store.Commit(ctx, db.NewBatch().Insert(treasury)))

		loaded, err := store.GetTreasury(ctx, treasury.ID)
		require.NoError(t, err)
		loaded.TotalFees = 999

		again, err := store.GetTreasury(ctx, treasury.ID)
		require.NoError(t, err)
		assert.Zero(t, again.TotalFees)
	})
}

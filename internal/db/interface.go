package db

import (
	"context"

	"github.com/solscore-labs/solscore-ledger/internal/db/model"
)

// DbInterface getters look a record up by its derived address and return
// NotFoundError when it does not exist.
type DbInterface interface {
	Ping(ctx context.Context) error
	GetGlobalConfig(ctx context.Context, id string) (*model.GlobalConfigDocument, error)
	GetUser(ctx context.Context, id string) (*model.UserDocument, error)
	GetStakeConfig(ctx context.Context, id string) (*model.StakeConfigDocument, error)
	GetStake(ctx context.Context, id string) (*model.StakeDocument, error)
	GetStakeCounter(ctx context.Context, id string) (*model.StakeCounterDocument, error)
	GetRewardConfig(ctx context.Context, id string) (*model.RewardConfigDocument, error)
	GetRewardPool(ctx context.Context, id string) (*model.RewardPoolDocument, error)
	GetTreasury(ctx context.Context, id string) (*model.TreasuryDocument, error)
	// ListStakesByOwner returns every stake of owner ordered by sequence.
	ListStakesByOwner(ctx context.Context, owner string) ([]*model.StakeDocument, error)
	// UpdateUserScore is the write surface of the score feed. The ledger never calls it.
	UpdateUserScore(ctx context.Context, id string, weeklyScore, totalScore uint32, updatedAt int64) error
	// Commit applies every write of the batch or none of them.
	Commit(ctx context.Context, batch *Batch) error
}

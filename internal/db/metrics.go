package db

import (
	"context"
	"time"

	"github.com/solscore-labs/solscore-ledger/internal/db/model"
	"github.com/solscore-labs/solscore-ledger/internal/observability/metrics"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) GetGlobalConfig(ctx context.Context, id string) (result *model.GlobalConfigDocument, err error) {
	//nolint:errcheck
	d.run("GetGlobalConfig", func() error {
		result, err = d.db.GetGlobalConfig(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) GetUser(ctx context.Context, id string) (result *model.UserDocument, err error) {
	//nolint:errcheck
	d.run("GetUser", func() error {
		result, err = d.db.GetUser(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) GetStakeConfig(ctx context.Context, id string) (result *model.StakeConfigDocument, err error) {
	//nolint:errcheck
	d.run("GetStakeConfig", func() error {
		result, err = d.db.GetStakeConfig(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) GetStake(ctx context.Context, id string) (result *model.StakeDocument, err error) {
	//nolint:errcheck
	d.run("GetStake", func() error {
		result, err = d.db.GetStake(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) GetStakeCounter(ctx context.Context, id string) (result *model.StakeCounterDocument, err error) {
	//nolint:errcheck
	d.run("GetStakeCounter", func() error {
		result, err = d.db.GetStakeCounter(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) GetRewardConfig(ctx context.Context, id string) (result *model.RewardConfigDocument, err error) {
	//nolint:errcheck
	d.run("GetRewardConfig", func() error {
		result, err = d.db.GetRewardConfig(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) GetRewardPool(ctx context.Context, id string) (result *model.RewardPoolDocument, err error) {
	//nolint:errcheck
	d.run("GetRewardPool", func() error {
		result, err = d.db.GetRewardPool(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) GetTreasury(ctx context.Context, id string) (result *model.TreasuryDocument, err error) {
	//nolint:errcheck
	d.run("GetTreasury", func() error {
		result, err = d.db.GetTreasury(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) ListStakesByOwner(ctx context.Context, owner string) (result []*model.StakeDocument, err error) {
	//nolint:errcheck
	d.run("ListStakesByOwner", func() error {
		result, err = d.db.ListStakesByOwner(ctx, owner)
		return err
	})
	return
}

func (d *DbWithMetrics) UpdateUserScore(ctx context.Context, id string, weeklyScore, totalScore uint32, updatedAt int64) error {
	return d.run("UpdateUserScore", func() error {
		return d.db.UpdateUserScore(ctx, id, weeklyScore, totalScore, updatedAt)
	})
}

func (d *DbWithMetrics) Commit(ctx context.Context, batch *Batch) error {
	return d.run("Commit", func() error {
		return d.db.Commit(ctx, batch)
	})
}

// run is private method that executes passed lambda function and send metrics data with spent time, method name
// and an error if any. It returns the error from the lambda function for convenience
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}

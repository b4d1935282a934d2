package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/solscore-labs/solscore-ledger/internal/db/model"
)

func findByID[T any](ctx context.Context, db *Database, collection, id string) (*T, error) {
	res := db.collection(collection).FindOne(ctx, bson.M{"_id": id})

	var doc T
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{Collection: collection, Key: id}
		}
		return nil, err
	}

	return &doc, nil
}

func (db *Database) GetGlobalConfig(ctx context.Context, id string) (*model.GlobalConfigDocument, error) {
	return findByID[model.GlobalConfigDocument](ctx, db, model.GlobalConfigCollection, id)
}

func (db *Database) GetUser(ctx context.Context, id string) (*model.UserDocument, error) {
	return findByID[model.UserDocument](ctx, db, model.UserCollection, id)
}

func (db *Database) GetStakeConfig(ctx context.Context, id string) (*model.StakeConfigDocument, error) {
	return findByID[model.StakeConfigDocument](ctx, db, model.StakeConfigCollection, id)
}

func (db *Database) GetStake(ctx context.Context, id string) (*model.StakeDocument, error) {
	return findByID[model.StakeDocument](ctx, db, model.StakeCollection, id)
}

func (db *Database) GetStakeCounter(ctx context.Context, id string) (*model.StakeCounterDocument, error) {
	return findByID[model.StakeCounterDocument](ctx, db, model.StakeCounterCollection, id)
}

func (db *Database) GetRewardConfig(ctx context.Context, id string) (*model.RewardConfigDocument, error) {
	return findByID[model.RewardConfigDocument](ctx, db, model.RewardConfigCollection, id)
}

func (db *Database) GetRewardPool(ctx context.Context, id string) (*model.RewardPoolDocument, error) {
	return findByID[model.RewardPoolDocument](ctx, db, model.RewardPoolCollection, id)
}

func (db *Database) GetTreasury(ctx context.Context, id string) (*model.TreasuryDocument, error) {
	return findByID[model.TreasuryDocument](ctx, db, model.TreasuryCollection, id)
}

func (db *Database) ListStakesByOwner(ctx context.Context, owner string) ([]*model.StakeDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})
	cursor, err := db.collection(model.StakeCollection).Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stakes []*model.StakeDocument
	if err := cursor.All(ctx, &stakes); err != nil {
		return nil, err
	}

	return stakes, nil
}

func (db *Database) UpdateUserScore(ctx context.Context, id string, weeklyScore, totalScore uint32, updatedAt int64) error {
	update := bson.M{
		"$set": bson.M{
			"weekly_score": weeklyScore,
			"total_score":  totalScore,
			"last_updated": updatedAt,
		},
	}

	res, err := db.collection(model.UserCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &NotFoundError{Collection: model.UserCollection, Key: id}
	}

	return nil
}

// Commit runs the batch inside a session transaction, so the deployment must
// be a replica set.
func (db *Database) Commit(ctx context.Context, batch *Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}

	session, err := db.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		for _, record := range batch.Inserts() {
			if err := db.insert(sessCtx, record); err != nil {
				return nil, err
			}
		}
		for _, record := range batch.Updates() {
			if err := db.replace(sessCtx, record); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})

	return err
}

func (db *Database) insert(ctx context.Context, record model.Record) error {
	_, err := db.collection(record.CollectionName()).InsertOne(ctx, record)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{Collection: record.CollectionName(), Key: record.Key()}
				}
			}
		}
		return err
	}

	return nil
}

func (db *Database) replace(ctx context.Context, record model.Record) error {
	res, err := db.collection(record.CollectionName()).
		ReplaceOne(ctx, bson.M{"_id": record.Key()}, record)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &NotFoundError{Collection: record.CollectionName(), Key: record.Key()}
	}

	return nil
}

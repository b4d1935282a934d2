package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/solscore-labs/solscore-ledger/internal/config"
)

// mongo error code for an existing collection
const namespaceExistsCode = 48

type index struct {
	Keys   bson.D
	Unique bool
}

var collections = map[string][]index{
	GlobalConfigCollection: nil,
	UserCollection:         {{Keys: bson.D{{Key: "authority", Value: 1}}, Unique: true}},
	StakeConfigCollection:  nil,
	StakeCollection: {
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "sequence", Value: 1}}, Unique: true},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
	},
	StakeCounterCollection: {{Keys: bson.D{{Key: "owner", Value: 1}}, Unique: true}},
	RewardConfigCollection: nil,
	RewardPoolCollection:   nil,
	TreasuryCollection:     nil,
}

// Collections lists every ledger collection name.
func Collections() []string {
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	return names
}

// Setup creates the ledger collections and their indexes. Collections must
// exist up front because mongo refuses to create them inside a transaction.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	clientOps := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" {
		clientOps.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to disconnect setup client")
		}
	}()

	database := client.Database(cfg.DbName)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for collection, idxs := range collections {
		if err := createCollection(ctx, database, collection); err != nil {
			return err
		}
		for _, idx := range idxs {
			if err := createIndex(ctx, database, collection, idx); err != nil {
				return err
			}
		}
	}

	log.Ctx(ctx).Info().Msg("collections and indexes created successfully")
	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) error {
	err := database.CreateCollection(ctx, collectionName)
	if err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == namespaceExistsCode {
			return nil
		}
		return fmt.Errorf("failed to create collection %s: %w", collectionName, err)
	}

	log.Ctx(ctx).Debug().Str("collection", collectionName).Msg("collection created")
	return nil
}

func createIndex(ctx context.Context, database *mongo.Database, collectionName string, idx index) error {
	indexModel := mongo.IndexModel{
		Keys:    idx.Keys,
		Options: options.Index().SetUnique(idx.Unique),
	}

	_, err := database.Collection(collectionName).Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		return fmt.Errorf("failed to create index on %s: %w", collectionName, err)
	}

	return nil
}

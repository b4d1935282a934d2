//go:build integration

package db_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/solscore-labs/solscore-ledger/internal/config"
	"github.com/solscore-labs/solscore-ledger/internal/db"
	"github.com/solscore-labs/solscore-ledger/internal/db/model"
	"github.com/solscore-labs/solscore-ledger/testutil"
)

var (
	testDB       *db.Database
	testDbConfig *config.DbConfig
)

func TestMain(m *testing.M) {
	// first setup container with MongoDb
	dbConfig, cleanup, err := testutil.SetupMongoContainer()
	if err != nil {
		log.Fatalf("failed to setup mongo container: %v", err)
	}
	testDbConfig = dbConfig

	// apply migrations
	err = model.Setup(context.Background(), dbConfig)
	if err != nil {
		cleanup()
		log.Fatalf("failed to init mongo database: %v", err)
	}

	// using config from container mongo initialize client used in tests
	testDB, err = setupClient(dbConfig)
	if err != nil {
		cleanup()
		log.Fatalf("failed to setup client: %v", err)
	}

	// integration tests run on this line
	code := m.Run()
	cleanup()

	os.Exit(code)
}

func setupClient(cfg *config.DbConfig) (*db.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return db.New(ctx, *cfg)
}

func TestMongoDatabase(t *testing.T) {
	testStore(t, func(t *testing.T) db.DbInterface {
		resetDatabase(t)
		return testDB
	})
}

func TestSetupIsIdempotent(t *testing.T) {
	require.NoError(t, model.Setup(context.Background(), testDbConfig))
}

func TestPing(t *testing.T) {
	require.NoError(t, testDB.Ping(context.Background()))
}

// resetDatabase empties every ledger collection, keeping the collections and
// their indexes.
func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(testDbConfig.Address))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, client.Disconnect(ctx))
	}()

	database := client.Database(testDbConfig.DbName)
	for _, collection := range model.Collections() {
		_, err := database.Collection(collection).DeleteMany(ctx, bson.M{})
		require.NoError(t, err)
	}
}

package testutil

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/solscore-labs/solscore-ledger/internal/config"
)

const (
	mongoDatabase   = "test-database"
	mongoReplicaSet = "rs0"

	// this version corresponds to docker tag for mongodb
	// it should be in sync with mongo version used in production
	mongoVersion = "7.0.5"
)

// SetupMongoContainer starts a single node mongo replica set, which the
// ledger needs for transactional commits. It returns the db config, a
// cleanup function that MUST be called to release docker resources, and an
// error if there is any.
func SetupMongoContainer() (*config.DbConfig, func(), error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, nil, err
	}

	// there can be only 1 container with the same name, so we add
	// random string in the end in case there is still old container running
	suffix := gofakeit.LetterN(6)
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       "mongo-integration-tests-db-" + suffix,
		Repository: "mongo",
		Tag:        mongoVersion,
		Cmd:        []string{"--replSet", mongoReplicaSet, "--bind_ip_all"},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := pool.Purge(resource); err != nil {
			log.Fatalf("failed to purge resource: %v", err)
		}
	}

	// get host port (randomly chosen) that is mapped to mongo port inside container
	hostPort := resource.GetPort("27017/tcp")
	cfg := &config.DbConfig{
		DbName:  mongoDatabase,
		Address: fmt.Sprintf("mongodb://localhost:%s/?directConnection=true", hostPort),
	}

	pool.MaxWait = time.Minute
	if err := pool.Retry(func() error { return initiateReplicaSet(cfg.Address) }); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("replica set did not come up: %w", err)
	}

	return cfg, cleanup, nil
}

func initiateReplicaSet(address string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(address))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(ctx)
	}()

	admin := client.Database("admin")
	err = admin.RunCommand(ctx, bson.D{{Key: "replSetInitiate", Value: bson.D{
		{Key: "_id", Value: mongoReplicaSet},
		{Key: "members", Value: bson.A{
			bson.D{{Key: "_id", Value: 0}, {Key: "host", Value: "localhost:27017"}},
		}},
	}}}).Err()
	var cmdErr mongo.CommandError
	// AlreadyInitialized from an earlier attempt
	if err != nil && !(errors.As(err, &cmdErr) && cmdErr.Code == 23) {
		return err
	}

	var hello struct {
		IsWritablePrimary bool `bson:"isWritablePrimary"`
	}
	if err := admin.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		return err
	}
	if !hello.IsWritablePrimary {
		return errors.New("replica set has no primary yet")
	}
	return nil
}

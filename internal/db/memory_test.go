package db_test

import (
	"testing"

	"github.com/solscore-labs/solscore-ledger/internal/db"
)

func TestMemoryDatabase(t *testing.T) {
	testStore(t, func(t *testing.T) db.DbInterface {
		return db.NewMemoryDatabase()
	})
}

func TestDbWithMetrics(t *testing.T) {
	testStore(t, func(t *testing.T) db.DbInterface {
		return db.NewDbWithMetrics(db.NewMemoryDatabase())
	})
}

package db

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/solscore-labs/solscore-ledger/internal/db/model"
)

// MemoryDatabase keeps records bson encoded in process memory, so callers
// never share a document with the store.
type MemoryDatabase struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		collections: make(map[string]map[string][]byte),
	}
}

func (m *MemoryDatabase) Ping(ctx context.Context) error {
	return nil
}

func memoryGet[T any](m *MemoryDatabase, collection, id string) (*T, error) {
	m.mu.RLock()
	raw, ok := m.collections[collection][id]
	m.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Collection: collection, Key: id}
	}

	var doc T
	if err := bson.UnmarshalWithRegistry(registry, raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s record: %w", collection, err)
	}
	return &doc, nil
}

func (m *MemoryDatabase) GetGlobalConfig(ctx context.Context, id string) (*model.GlobalConfigDocument, error) {
	return memoryGet[model.GlobalConfigDocument](m, model.GlobalConfigCollection, id)
}

func (m *MemoryDatabase) GetUser(ctx context.Context, id string) (*model.UserDocument, error) {
	return memoryGet[model.UserDocument](m, model.UserCollection, id)
}

func (m *MemoryDatabase) GetStakeConfig(ctx context.Context, id string) (*model.StakeConfigDocument, error) {
	return memoryGet[model.StakeConfigDocument](m, model.StakeConfigCollection, id)
}

func (m *MemoryDatabase) GetStake(ctx context.Context, id string) (*model.StakeDocument, error) {
	return memoryGet[model.StakeDocument](m, model.StakeCollection, id)
}

func (m *MemoryDatabase) GetStakeCounter(ctx context.Context, id string) (*model.StakeCounterDocument, error) {
	return memoryGet[model.StakeCounterDocument](m, model.StakeCounterCollection, id)
}

func (m *MemoryDatabase) GetRewardConfig(ctx context.Context, id string) (*model.RewardConfigDocument, error) {
	return memoryGet[model.RewardConfigDocument](m, model.RewardConfigCollection, id)
}

func (m *MemoryDatabase) GetRewardPool(ctx context.Context, id string) (*model.RewardPoolDocument, error) {
	return memoryGet[model.RewardPoolDocument](m, model.RewardPoolCollection, id)
}

func (m *MemoryDatabase) GetTreasury(ctx context.Context, id string) (*model.TreasuryDocument, error) {
	return memoryGet[model.TreasuryDocument](m, model.TreasuryCollection, id)
}

func (m *MemoryDatabase) ListStakesByOwner(ctx context.Context, owner string) ([]*model.StakeDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stakes []*model.StakeDocument
	for _, raw := range m.collections[model.StakeCollection] {
		var stake model.StakeDocument
		if err := bson.UnmarshalWithRegistry(registry, raw, &stake); err != nil {
			return nil, fmt.Errorf("failed to decode stake record: %w", err)
		}
		if stake.Owner == owner {
			stakes = append(stakes, &stake)
		}
	}

	slices.SortFunc(stakes, func(a, b *model.StakeDocument) int {
		return cmp.Compare(a.Sequence, b.Sequence)
	})
	return stakes, nil
}

func (m *MemoryDatabase) UpdateUserScore(ctx context.Context, id string, weeklyScore, totalScore uint32, updatedAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.collections[model.UserCollection][id]
	if !ok {
		return &NotFoundError{Collection: model.UserCollection, Key: id}
	}

	var user model.UserDocument
	if err := bson.UnmarshalWithRegistry(registry, raw, &user); err != nil {
		return fmt.Errorf("failed to decode user record: %w", err)
	}
	user.WeeklyScore = weeklyScore
	user.TotalScore = totalScore
	user.LastUpdated = updatedAt

	encoded, err := bson.MarshalWithRegistry(registry, &user)
	if err != nil {
		return err
	}
	m.collections[model.UserCollection][id] = encoded
	return nil
}

// Commit checks every precondition of the batch before writing anything.
func (m *MemoryDatabase) Commit(ctx context.Context, batch *Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}

	type write struct {
		collection string
		key        string
		raw        []byte
	}
	writes := make([]write, 0, batch.Len())

	m.mu.Lock()
	defer m.mu.Unlock()

	pending := make(map[string]struct{}, batch.Len())
	for _, record := range batch.Inserts() {
		name, key := record.CollectionName(), record.Key()
		_, exists := m.collections[name][key]
		if _, dup := pending[name+"/"+key]; exists || dup {
			return &DuplicateKeyError{Collection: name, Key: key}
		}
		pending[name+"/"+key] = struct{}{}

		raw, err := bson.MarshalWithRegistry(registry, record)
		if err != nil {
			return fmt.Errorf("failed to encode %s record: %w", name, err)
		}
		writes = append(writes, write{collection: name, key: key, raw: raw})
	}

	for _, record := range batch.Updates() {
		name, key := record.CollectionName(), record.Key()
		if _, exists := m.collections[name][key]; !exists {
			return &NotFoundError{Collection: name, Key: key}
		}

		raw, err := bson.MarshalWithRegistry(registry, record)
		if err != nil {
			return fmt.Errorf("failed to encode %s record: %w", name, err)
		}
		writes = append(writes, write{collection: name, key: key, raw: raw})
	}

	for _, w := range writes {
		if m.collections[w.collection] == nil {
			m.collections[w.collection] = make(map[string][]byte)
		}
		m.collections[w.collection][w.key] = w.raw
	}

	return nil
}

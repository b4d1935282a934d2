package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/solscore-labs/solscore-ledger/internal/clients/bank"
	"github.com/solscore-labs/solscore-ledger/internal/config"
	"github.com/solscore-labs/solscore-ledger/internal/db"
	"github.com/solscore-labs/solscore-ledger/internal/derive"
	"github.com/solscore-labs/solscore-ledger/internal/types"
)

const (
	day  = 24 * 60 * 60
	week = 7 * day
	year = secondsPerYear
)

var (
	defaultStakeParams = StakeParams{
		MinStakeAmount:     1_000,
		MaxStakeAmount:     1_000_000_000,
		EarlyWithdrawalFee: 10,
		LockOptions:        []uint64{week, 30 * day},
	}
	defaultRewardParams = RewardParams{
		BaseAPY:               10,
		ScoreMultiplier:       20,
		DistributionFrequency: day,
	}
	defaultTreasuryParams = TreasuryParams{
		ProtocolFee:       5,
		ReservePercentage: 20,
	}
)

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []types.LedgerEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event *types.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

func (p *recordingPublisher) Shutdown() {}

func (p *recordingPublisher) ofType(typ types.EventType) []types.LedgerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []types.LedgerEvent
	for _, e := range p.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// failingDatabase fails Commit while failCommit is set.
type failingDatabase struct {
	db.DbInterface
	failCommit atomic.Bool
}

func (f *failingDatabase) Commit(ctx context.Context, batch *db.Batch) error {
	if f.failCommit.Load() {
		return errors.New("connection reset by peer")
	}
	return f.DbInterface.Commit(ctx, batch)
}

type fixture struct {
	ctx    context.Context
	svc    *Service
	store  *failingDatabase
	memory *db.MemoryDatabase
	bank   *bank.MemoryBank
	clock  *clockwork.FakeClock
	events *recordingPublisher
	admin  solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		Engine: config.EngineConfig{ProgramID: derive.DefaultProgramID.String()},
		Poller: config.PollerConfig{StatsPollingInterval: time.Minute},
	}
	memory := db.NewMemoryDatabase()
	store := &failingDatabase{DbInterface: memory}
	memoryBank := bank.NewMemoryBank(cfg.Engine.GetProgramID())
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	events := &recordingPublisher{}

	f := &fixture{
		ctx:    context.Background(),
		svc:    NewService(cfg, store, memoryBank, events, clock),
		store:  store,
		memory: memory,
		bank:   memoryBank,
		clock:  clock,
		events: events,
		admin:  newPublicKey(t),
	}
	require.NoError(t, memoryBank.Credit(f.admin, 1_000_000_000))
	return f
}

// bootstrap creates every singleton with default parameters.
func (f *fixture) bootstrap(t *testing.T) {
	t.Helper()

	_, err := f.svc.CreateGlobalConfig(f.ctx, f.admin, GlobalParams{
		CurrentGameweek: 1,
		SeasonStart:     f.clock.Now().Unix(),
		SeasonEnd:       f.clock.Now().Add(280 * 24 * time.Hour).Unix(),
		APIURL:          "https://fantasy.premierleague.com/api",
	})
	require.NoError(t, err)
	_, err = f.svc.CreateStakeConfig(f.ctx, f.admin, defaultStakeParams)
	require.NoError(t, err)
	_, err = f.svc.CreateRewardConfig(f.ctx, f.admin, defaultRewardParams)
	require.NoError(t, err)
	_, err = f.svc.CreateRewardPool(f.ctx, f.admin)
	require.NoError(t, err)
	_, err = f.svc.CreateTreasury(f.ctx, f.admin, defaultTreasuryParams)
	require.NoError(t, err)
}

// newUser creates a funded and registered user.
func (f *fixture) newUser(t *testing.T, funds uint64) solana.PublicKey {
	t.Helper()

	owner := newPublicKey(t)
	require.NoError(t, f.bank.Credit(owner, funds))
	_, err := f.svc.RegisterUser(f.ctx, owner, gofakeit.LetterN(uint(gofakeit.IntRange(1, 20))))
	require.NoError(t, err)
	return owner
}

func (f *fixture) setWeeklyScore(t *testing.T, owner solana.PublicKey, weekly uint32) {
	t.Helper()

	addr, err := f.svc.Deriver().User(owner)
	require.NoError(t, err)
	require.NoError(t, f.memory.UpdateUserScore(f.ctx, addr.Address.String(), weekly, weekly, f.svc.now()))
}

func (f *fixture) fundPool(t *testing.T, amount uint64) {
	t.Helper()

	_, err := f.svc.FundRewardPool(f.ctx, f.admin, amount)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, account solana.PublicKey) uint64 {
	t.Helper()

	b, err := f.bank.Balance(f.ctx, account)
	require.NoError(t, err)
	return b
}

func (f *fixture) vault(t *testing.T, fn func() (derive.Authority, error)) solana.PublicKey {
	t.Helper()

	a, err := fn()
	require.NoError(t, err)
	return a.Address
}

func (f *fixture) advance(seconds int64) {
	f.clock.Advance(time.Duration(seconds) * time.Second)
}

func stakeAddress(t *testing.T, doc interface{ Key() string }) solana.PublicKey {
	t.Helper()

	pk, err := solana.PublicKeyFromBase58(doc.Key())
	require.NoError(t, err)
	return pk
}

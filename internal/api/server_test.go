package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solscore-labs/solscore-ledger/internal/api"
	"github.com/solscore-labs/solscore-ledger/internal/clients/bank"
	"github.com/solscore-labs/solscore-ledger/internal/config"
	"github.com/solscore-labs/solscore-ledger/internal/db"
	"github.com/solscore-labs/solscore-ledger/internal/derive"
	"github.com/solscore-labs/solscore-ledger/internal/services"
	"github.com/solscore-labs/solscore-ledger/internal/types"
)

type testServer struct {
	handler http.Handler
	bank    *bank.MemoryBank
	clock   *clockwork.FakeClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Engine: config.EngineConfig{ProgramID: derive.DefaultProgramID.String()},
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         8090,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,

			SignatureWindow: time.Minute,
		},
	}
	memoryBank := bank.NewMemoryBank(derive.DefaultProgramID)
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	svc := services.NewService(cfg, db.NewMemoryDatabase(), memoryBank, nil, clock)

	return &testServer{
		handler: api.New(&cfg.Server, svc).Handler(),
		bank:    memoryBank,
		clock:   clock,
	}
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func (s *testServer) do(t *testing.T, signer solana.PrivateKey, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	if signer != nil {
		// identical calls must not share a signature
		s.clock.Advance(time.Millisecond)
		sign(t, req, signer, s.clock.Now().UnixMilli(), raw)
	}

	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func sign(t *testing.T, req *http.Request, signer solana.PrivateKey, timestamp int64, body []byte) {
	t.Helper()
	signature, err := signer.Sign(api.SignedMessage(req.Method, req.URL.Path, timestamp, body))
	require.NoError(t, err)
	req.Header.Set(api.CallerHeader, signer.PublicKey().String())
	req.Header.Set(api.SignatureHeader, signature.String())
	req.Header.Set(api.TimestampHeader, strconv.FormatInt(timestamp, 10))
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}

func (s *testServer) bootstrap(t *testing.T, admin solana.PrivateKey) {
	t.Helper()

	requireStatus(t, s.do(t, admin, http.MethodPost, "/v1/global-config", map[string]any{
		"currentGameweek": 1, "seasonStart": 0, "seasonEnd": 1_800_000_000,
	}), http.StatusCreated)
	requireStatus(t, s.do(t, admin, http.MethodPost, "/v1/stake-config", map[string]any{
		"minStakeAmount": 1_000, "maxStakeAmount": 1_000_000_000, "earlyWithdrawalFee": 10, "lockOptions": []uint64{604_800},
	}), http.StatusCreated)
	requireStatus(t, s.do(t, admin, http.MethodPost, "/v1/reward-config", map[string]any{
		"baseApy": 10, "scoreMultiplier": 20, "distributionFrequency": 86_400,
	}), http.StatusCreated)
	requireStatus(t, s.do(t, admin, http.MethodPost, "/v1/reward-pool", nil), http.StatusCreated)
	requireStatus(t, s.do(t, admin, http.MethodPost, "/v1/treasury", map[string]any{
		"protocolFee": 5, "reservePercentage": 20,
	}), http.StatusCreated)
}

func TestHealthcheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, nil, http.MethodGet, "/healthcheck", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)
	caller := newKey(t)
	body := []byte(`{"fplId":"12345"}`)
	now := s.clock.Now().UnixMilli()

	signWith := func(key solana.PrivateKey, method, path string, ts int64, signed []byte) func(req *http.Request) {
		return func(req *http.Request) {
			signature, err := key.Sign(api.SignedMessage(method, path, ts, signed))
			require.NoError(t, err)
			req.Header.Set(api.CallerHeader, caller.PublicKey().String())
			req.Header.Set(api.SignatureHeader, signature.String())
			req.Header.Set(api.TimestampHeader, strconv.FormatInt(now, 10))
		}
	}

	tests := []struct {
		name    string
		prepare func(req *http.Request)
	}{
		{
			name:    "missing headers",
			prepare: func(req *http.Request) {},
		},
		{
			name: "malformed caller",
			prepare: func(req *http.Request) {
				req.Header.Set(api.CallerHeader, "not-a-key")
				req.Header.Set(api.SignatureHeader, "1111")
				req.Header.Set(api.TimestampHeader, strconv.FormatInt(now, 10))
			},
		},
		{
			name: "missing timestamp",
			prepare: func(req *http.Request) {
				sign(t, req, caller, now, body)
				req.Header.Del(api.TimestampHeader)
			},
		},
		{
			name: "malformed timestamp",
			prepare: func(req *http.Request) {
				sign(t, req, caller, now, body)
				req.Header.Set(api.TimestampHeader, "yesterday")
			},
		},
		{
			name:    "signed by someone else",
			prepare: signWith(newKey(t), http.MethodPost, "/v1/users", now, body),
		},
		{
			name:    "signature over another body",
			prepare: signWith(caller, http.MethodPost, "/v1/users", now, []byte(`{"fplId":"99999"}`)),
		},
		{
			name:    "signature over another path",
			prepare: signWith(caller, http.MethodPost, "/v1/stakes", now, body),
		},
		{
			name:    "signature over another timestamp",
			prepare: signWith(caller, http.MethodPost, "/v1/users", now-1, body),
		},
		{
			name: "signed too long ago",
			prepare: func(req *http.Request) {
				sign(t, req, caller, now-(2*time.Minute).Milliseconds(), body)
			},
		},
		{
			name: "signed in the future",
			prepare: func(req *http.Request) {
				sign(t, req, caller, now+(2*time.Minute).Milliseconds(), body)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader(body))
			tt.prepare(req)
			rec := s.serve(req)

			requireStatus(t, rec, http.StatusUnauthorized)
			resp := decodeBody[api.ErrorResponse](t, rec)
			assert.Equal(t, types.Unauthenticated.String(), resp.ErrorCode)
		})
	}
}

func TestReplayedRequest(t *testing.T) {
	s := newTestServer(t)
	admin := newKey(t)
	s.bootstrap(t, admin)

	user := newKey(t)
	require.NoError(t, s.bank.Credit(user.PublicKey(), 10_000_000))
	requireStatus(t, s.do(t, user, http.MethodPost, "/v1/users", map[string]any{"fplId": gofakeit.DigitN(6)}), http.StatusCreated)

	body := []byte(`{"amount":1000000,"lockPeriod":604800}`)
	signedAt := s.clock.Now().UnixMilli()
	replay := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/stakes", bytes.NewReader(body))
		sign(t, req, user, signedAt, body)
		return s.serve(req)
	}

	requireStatus(t, replay(), http.StatusCreated)

	t.Run("within the window", func(t *testing.T) {
		rec := replay()
		requireStatus(t, rec, http.StatusUnauthorized)
		assert.Equal(t, types.Unauthenticated.String(), decodeBody[api.ErrorResponse](t, rec).ErrorCode)
	})

	t.Run("after the window", func(t *testing.T) {
		s.clock.Advance(2 * time.Minute)
		requireStatus(t, replay(), http.StatusUnauthorized)
	})

	balance, err := s.bank.Balance(context.Background(), user.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(9_000_000), balance)

	rec := s.do(t, nil, http.MethodGet, "/v1/owners/"+user.PublicKey().String()+"/stakes", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decodeBody[[]api.StakeView](t, rec), 1)

	t.Run("a fresh signature of the same call is accepted", func(t *testing.T) {
		requireStatus(t, s.do(t, user, http.MethodPost, "/v1/stakes", map[string]any{"amount": 1_000_000, "lockPeriod": 604_800}), http.StatusCreated)
	})
}

func TestStakeLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := newKey(t)
	s.bootstrap(t, admin)

	user := newKey(t)
	require.NoError(t, s.bank.Credit(user.PublicKey(), 2_000_000))
	fplID := gofakeit.DigitN(7)
	rec := s.do(t, user, http.MethodPost, "/v1/users", map[string]any{"fplId": fplID})
	requireStatus(t, rec, http.StatusCreated)
	assert.Equal(t, fplID, decodeBody[api.UserView](t, rec).FplID)

	t.Run("stake below minimum", func(t *testing.T) {
		rec := s.do(t, user, http.MethodPost, "/v1/stakes", map[string]any{"amount": 999, "lockPeriod": 604_800})
		requireStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, types.InvalidStakeAmount.String(), decodeBody[api.ErrorResponse](t, rec).ErrorCode)
	})

	rec = s.do(t, user, http.MethodPost, "/v1/stakes", map[string]any{"amount": 1_000_000, "lockPeriod": 604_800})
	requireStatus(t, rec, http.StatusCreated)
	stake := decodeBody[api.StakeView](t, rec)
	assert.Equal(t, uint64(0), stake.Sequence)
	assert.True(t, stake.IsActive)

	rec = s.do(t, nil, http.MethodGet, "/v1/owners/"+user.PublicKey().String()+"/stakes", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decodeBody[[]api.StakeView](t, rec), 1)

	rec = s.do(t, nil, http.MethodGet, "/v1/stakes/"+stake.Address+"/rewards", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Zero(t, decodeBody[api.RewardPreviewView](t, rec).Reward)

	t.Run("claim too early", func(t *testing.T) {
		rec := s.do(t, user, http.MethodPost, "/v1/stakes/"+stake.Address+"/claim", nil)
		requireStatus(t, rec, http.StatusConflict)
		assert.Equal(t, types.TooEarlyToClaim.String(), decodeBody[api.ErrorResponse](t, rec).ErrorCode)
	})

	t.Run("someone else unstakes", func(t *testing.T) {
		rec := s.do(t, newKey(t), http.MethodPost, "/v1/stakes/"+stake.Address+"/unstake", nil)
		requireStatus(t, rec, http.StatusForbidden)
		assert.Equal(t, types.UnauthorizedAccess.String(), decodeBody[api.ErrorResponse](t, rec).ErrorCode)
	})

	rec = s.do(t, user, http.MethodPost, "/v1/stakes/"+stake.Address+"/unstake", nil)
	requireStatus(t, rec, http.StatusOK)
	unstaked := decodeBody[api.UnstakeView](t, rec)
	assert.Equal(t, uint64(100_000), unstaked.Fee)
	assert.Equal(t, uint64(900_000), unstaked.Returned)
	assert.False(t, unstaked.Stake.IsActive)

	rec = s.do(t, nil, http.MethodGet, "/v1/treasury", nil)
	requireStatus(t, rec, http.StatusOK)
	treasury := decodeBody[api.TreasuryView](t, rec)
	assert.Equal(t, uint64(100_000), treasury.TotalFees)
	require.NotNil(t, treasury.VaultBalance)
	assert.Zero(t, *treasury.VaultBalance)
}

func TestTreasuryRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := newKey(t)
	s.bootstrap(t, admin)

	depositor := newKey(t)
	require.NoError(t, s.bank.Credit(depositor.PublicKey(), 1_000))
	requireStatus(t, s.do(t, depositor, http.MethodPost, "/v1/treasury/deposit", map[string]any{"amount": 1_000}), http.StatusOK)

	recipient := newKey(t).PublicKey().String()
	rec := s.do(t, admin, http.MethodPost, "/v1/treasury/withdraw", map[string]any{"amount": 801, "recipient": recipient})
	requireStatus(t, rec, http.StatusUnprocessableEntity)
	assert.Equal(t, types.ExceedsWithdrawalLimit.String(), decodeBody[api.ErrorResponse](t, rec).ErrorCode)

	rec = s.do(t, admin, http.MethodPost, "/v1/treasury/withdraw", map[string]any{"amount": 800, "recipient": recipient})
	requireStatus(t, rec, http.StatusOK)
	view := decodeBody[api.TreasuryView](t, rec)
	require.NotNil(t, view.VaultBalance)
	assert.Equal(t, uint64(200), *view.VaultBalance)

	rec = s.do(t, admin, http.MethodPatch, "/v1/treasury/config", map[string]any{"protocolFee": 150})
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, types.InvalidTreasuryParameter.String(), decodeBody[api.ErrorResponse](t, rec).ErrorCode)

	rec = s.do(t, admin, http.MethodPatch, "/v1/treasury/config", map[string]any{"reservePercentage": 50})
	requireStatus(t, rec, http.StatusOK)
	updated := decodeBody[api.TreasuryView](t, rec)
	assert.Equal(t, uint8(5), updated.ProtocolFee)
	assert.Equal(t, uint8(50), updated.ReservePercentage)
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t)

	t.Run("unknown stake", func(t *testing.T) {
		rec := s.do(t, nil, http.MethodGet, "/v1/stakes/"+newKey(t).PublicKey().String(), nil)
		requireStatus(t, rec, http.StatusNotFound)
		assert.Equal(t, types.AccountNotInitialized.String(), decodeBody[api.ErrorResponse](t, rec).ErrorCode)
	})

	t.Run("malformed address", func(t *testing.T) {
		rec := s.do(t, nil, http.MethodGet, "/v1/stakes/0xdeadbeef", nil)
		requireStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, types.BadRequest.String(), decodeBody[api.ErrorResponse](t, rec).ErrorCode)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := s.do(t, newKey(t), http.MethodPost, "/v1/users", map[string]any{"fpl": "1"})
		requireStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, types.BadRequest.String(), decodeBody[api.ErrorResponse](t, rec).ErrorCode)
	})
}

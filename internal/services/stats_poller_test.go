package services

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/solscore-labs/solscore-ledger/internal/observability/metrics"
)

func TestStatsPoller(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.updateStats(f.ctx))

	f.bootstrap(t)
	f.fundPool(t, 1_000)

	depositor := f.newUser(t, 2_000)
	_, err := f.svc.DepositTreasury(f.ctx, depositor, 1_500)
	require.NoError(t, err)

	require.NoError(t, f.svc.updateStats(f.ctx))

	const expected = `
# HELP reward_pool_distributed Cumulative distributed rewards
# TYPE reward_pool_distributed gauge
reward_pool_distributed 0
# HELP reward_pool_remaining Funded rewards not yet distributed
# TYPE reward_pool_remaining gauge
reward_pool_remaining 1000
# HELP treasury_total_fees Lifetime fees credited to the treasury
# TYPE treasury_total_fees gauge
treasury_total_fees 1500
# HELP treasury_vault_balance Live balance of the treasury vault
# TYPE treasury_vault_balance gauge
treasury_vault_balance 1500
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Gatherer(), strings.NewReader(expected),
		"reward_pool_distributed", "reward_pool_remaining", "treasury_total_fees", "treasury_vault_balance"))
}

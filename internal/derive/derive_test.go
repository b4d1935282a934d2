package derive

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKey(t *testing.T) solana.PublicKey {
	t.Helper()
	pk, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return pk.PublicKey()
}

func TestDerive(t *testing.T) {
	d := New(DefaultProgramID)

	t.Run("idempotent", func(t *testing.T) {
		owner := randomKey(t)
		first, err := d.Stake(owner, 7)
		require.NoError(t, err)
		second, err := d.Stake(owner, 7)
		require.NoError(t, err)

		assert.Equal(t, first.Address, second.Address)
		assert.Equal(t, first.Bump, second.Bump)
	})
	t.Run("distinct tuples do not collide", func(t *testing.T) {
		ownerA := randomKey(t)
		ownerB := randomKey(t)

		seen := map[solana.PublicKey]string{}
		record := func(name string, a Authority, err error) {
			require.NoError(t, err)
			prev, ok := seen[a.Address]
			require.False(t, ok, "%s collides with %s", name, prev)
			seen[a.Address] = name
		}

		for seq := range uint64(16) {
			a, err := d.Stake(ownerA, seq)
			record("stake a", a, err)
			b, err := d.Stake(ownerB, seq)
			record("stake b", b, err)
		}
		a, err := d.User(ownerA)
		record("user a", a, err)
		a, err = d.StakeCounter(ownerA)
		record("counter a", a, err)

		singletons := []func() (Authority, error){
			d.GlobalConfig, d.StakeConfig, d.StakeVault, d.RewardConfig,
			d.RewardPool, d.RewardVault, d.Treasury, d.TreasuryVault,
		}
		for _, f := range singletons {
			a, err := f()
			record("singleton", a, err)
		}
	})
	t.Run("program id scopes addresses", func(t *testing.T) {
		other := New(randomKey(t))
		a, err := d.Treasury()
		require.NoError(t, err)
		b, err := other.Treasury()
		require.NoError(t, err)
		assert.NotEqual(t, a.Address, b.Address)
	})
	t.Run("sequence seed is little endian", func(t *testing.T) {
		assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, SequenceSeed(1))
		assert.Equal(t, []byte{0, 1, 0, 0, 0, 0, 0, 0}, SequenceSeed(256))
	})
}

func TestAuthorityVerify(t *testing.T) {
	d := New(DefaultProgramID)

	vault, err := d.RewardVault()
	require.NoError(t, err)
	require.NoError(t, vault.Verify(DefaultProgramID))
	assert.True(t, vault.HasTag(TagRewardVault))
	assert.False(t, vault.HasTag(TagTreasuryVault))

	t.Run("wrong bump", func(t *testing.T) {
		forged := vault
		forged.Bump = vault.Bump - 1
		assert.Error(t, forged.Verify(DefaultProgramID))
	})
	t.Run("wrong address", func(t *testing.T) {
		treasury, err := d.TreasuryVault()
		require.NoError(t, err)
		forged := vault
		forged.Address = treasury.Address
		assert.Error(t, forged.Verify(DefaultProgramID))
	})
	t.Run("wrong program", func(t *testing.T) {
		assert.Error(t, vault.Verify(randomKey(t)))
	})
}

// Package derive computes the deterministic addresses of every ledger record
// and vault. An address is a program derived address over fixed tag bytes
// plus identifying material; the bump found alongside it is the proof that
// only the engine (never a user key) can authorize transfers out of it.
package derive

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type Tag string

func (t Tag) String() string {
	return string(t)
}

const (
	TagGlobalConfig  Tag = "fpl-global"
	TagUser          Tag = "fpl-user"
	TagStakeConfig   Tag = "stake-config"
	TagStake         Tag = "stake"
	TagStakeCounter  Tag = "stake-count"
	TagStakeVault    Tag = "stake-vault"
	TagRewardConfig  Tag = "reward-config"
	TagRewardPool    Tag = "reward-pool"
	TagRewardVault   Tag = "reward-vault"
	TagTreasury      Tag = "treasury"
	TagTreasuryVault Tag = "treasury-vault"
)

// DefaultProgramID is the program id the addresses are derived under when
// the config does not override it.
var DefaultProgramID = solana.MustPublicKeyFromBase58("DHZDcJbhgt57A114LYLycmyYn5s8Zr5jCnyVy2odP8aa")

// Authority is a derived address together with the seeds and bump that
// produced it.
type Authority struct {
	Address solana.PublicKey
	Bump    uint8
	Seeds   [][]byte
}

// SignerSeeds returns the seeds with the bump appended, the form accepted
// by CreateProgramAddress.
func (a Authority) SignerSeeds() [][]byte {
	seeds := make([][]byte, 0, len(a.Seeds)+1)
	seeds = append(seeds, a.Seeds...)
	return append(seeds, []byte{a.Bump})
}

// Verify re-creates the address from the signer seeds and checks it matches.
func (a Authority) Verify(programID solana.PublicKey) error {
	addr, err := solana.CreateProgramAddress(a.SignerSeeds(), programID)
	if err != nil {
		return fmt.Errorf("invalid authority seeds: %w", err)
	}
	if !addr.Equals(a.Address) {
		return fmt.Errorf("authority seeds derive %s, not %s", addr, a.Address)
	}
	return nil
}

// HasTag reports whether the authority was derived under the given tag.
func (a Authority) HasTag(tag Tag) bool {
	return len(a.Seeds) > 0 && bytes.Equal(a.Seeds[0], []byte(tag))
}

type Deriver struct {
	programID solana.PublicKey
}

func New(programID solana.PublicKey) *Deriver {
	return &Deriver{programID: programID}
}

func (d *Deriver) ProgramID() solana.PublicKey {
	return d.programID
}

// Derive finds the address for tag and material. Deriving twice with the same
// inputs always returns the same address and bump.
func (d *Deriver) Derive(tag Tag, material ...[]byte) (Authority, error) {
	seeds := make([][]byte, 0, len(material)+1)
	seeds = append(seeds, []byte(tag))
	for _, m := range material {
		seeds = append(seeds, bytes.Clone(m))
	}

	addr, bump, err := solana.FindProgramAddress(seeds, d.programID)
	if err != nil {
		return Authority{}, fmt.Errorf("failed to derive %s address: %w", tag, err)
	}

	return Authority{
		Address: addr,
		Bump:    bump,
		Seeds:   seeds,
	}, nil
}

// SequenceSeed encodes a per-owner sequence number as 8 little-endian bytes.
func SequenceSeed(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, seq)
	return buf
}

func (d *Deriver) GlobalConfig() (Authority, error) {
	return d.Derive(TagGlobalConfig)
}

func (d *Deriver) User(owner solana.PublicKey) (Authority, error) {
	return d.Derive(TagUser, owner.Bytes())
}

func (d *Deriver) StakeConfig() (Authority, error) {
	return d.Derive(TagStakeConfig)
}

func (d *Deriver) Stake(owner solana.PublicKey, sequence uint64) (Authority, error) {
	return d.Derive(TagStake, owner.Bytes(), SequenceSeed(sequence))
}

func (d *Deriver) StakeCounter(owner solana.PublicKey) (Authority, error) {
	return d.Derive(TagStakeCounter, owner.Bytes())
}

func (d *Deriver) StakeVault() (Authority, error) {
	return d.Derive(TagStakeVault)
}

func (d *Deriver) RewardConfig() (Authority, error) {
	return d.Derive(TagRewardConfig)
}

func (d *Deriver) RewardPool() (Authority, error) {
	return d.Derive(TagRewardPool)
}

func (d *Deriver) RewardVault() (Authority, error) {
	return d.Derive(TagRewardVault)
}

func (d *Deriver) Treasury() (Authority, error) {
	return d.Derive(TagTreasury)
}

func (d *Deriver) TreasuryVault() (Authority, error) {
	return d.Derive(TagTreasuryVault)
}

package api

import (
	"github.com/solscore-labs/solscore-ledger/internal/db/model"
	"github.com/solscore-labs/solscore-ledger/internal/services"
)

type GlobalConfigView struct {
	Address         string `json:"address"`
	Admin           string `json:"admin"`
	CurrentGameweek uint8  `json:"currentGameweek"`
	SeasonStart     int64  `json:"seasonStart"`
	SeasonEnd       int64  `json:"seasonEnd"`
	APIURL          string `json:"apiUrl"`
}

func newGlobalConfigView(d *model.GlobalConfigDocument) GlobalConfigView {
	return GlobalConfigView{
		Address:         d.ID,
		Admin:           d.Admin,
		CurrentGameweek: d.CurrentGameweek,
		SeasonStart:     d.SeasonStart,
		SeasonEnd:       d.SeasonEnd,
		APIURL:          d.APIURL,
	}
}

type UserView struct {
	Address     string `json:"address"`
	Authority   string `json:"authority"`
	FplID       string `json:"fplId"`
	WeeklyScore uint32 `json:"weeklyScore"`
	TotalScore  uint32 `json:"totalScore"`
	LastUpdated int64  `json:"lastUpdated"`
}

func newUserView(d *model.UserDocument) UserView {
	return UserView{
		Address:     d.ID,
		Authority:   d.Authority,
		FplID:       d.FplID,
		WeeklyScore: d.WeeklyScore,
		TotalScore:  d.TotalScore,
		LastUpdated: d.LastUpdated,
	}
}

type StakeConfigView struct {
	Address            string   `json:"address"`
	Admin              string   `json:"admin"`
	MinStakeAmount     uint64   `json:"minStakeAmount"`
	MaxStakeAmount     uint64   `json:"maxStakeAmount"`
	EarlyWithdrawalFee uint8    `json:"earlyWithdrawalFee"`
	LockOptions        []uint64 `json:"lockOptions"`
}

func newStakeConfigView(d *model.StakeConfigDocument) StakeConfigView {
	return StakeConfigView{
		Address:            d.ID,
		Admin:              d.Admin,
		MinStakeAmount:     d.MinStakeAmount,
		MaxStakeAmount:     d.MaxStakeAmount,
		EarlyWithdrawalFee: d.EarlyWithdrawalFee,
		LockOptions:        d.LockOptions,
	}
}

type StakeView struct {
	Address       string `json:"address"`
	Owner         string `json:"owner"`
	Sequence      uint64 `json:"sequence"`
	Amount        uint64 `json:"amount"`
	StartTime     int64  `json:"startTime"`
	LockPeriod    uint64 `json:"lockPeriod"`
	FplUser       string `json:"fplUser"`
	IsActive      bool   `json:"isActive"`
	LastClaimTime int64  `json:"lastClaimTime"`
}

func newStakeView(d *model.StakeDocument) StakeView {
	return StakeView{
		Address:       d.ID,
		Owner:         d.Owner,
		Sequence:      d.Sequence,
		Amount:        d.Amount,
		StartTime:     d.StartTime,
		LockPeriod:    d.LockPeriod,
		FplUser:       d.FplUser,
		IsActive:      d.IsActive,
		LastClaimTime: d.LastClaimTime,
	}
}

type UnstakeView struct {
	Stake    StakeView `json:"stake"`
	Returned uint64    `json:"returned"`
	Fee      uint64    `json:"fee"`
}

type ClaimView struct {
	Stake  StakeView `json:"stake"`
	Reward uint64    `json:"reward"`
}

type RewardPreviewView struct {
	Reward      uint64 `json:"reward"`
	Now         int64  `json:"now"`
	ClaimableAt int64  `json:"claimableAt"`
}

type RewardConfigView struct {
	Address               string `json:"address"`
	Admin                 string `json:"admin"`
	BaseAPY               uint8  `json:"baseApy"`
	ScoreMultiplier       uint8  `json:"scoreMultiplier"`
	DistributionFrequency uint64 `json:"distributionFrequency"`
}

func newRewardConfigView(d *model.RewardConfigDocument) RewardConfigView {
	return RewardConfigView{
		Address:               d.ID,
		Admin:                 d.Admin,
		BaseAPY:               d.BaseAPY,
		ScoreMultiplier:       d.ScoreMultiplier,
		DistributionFrequency: d.DistributionFrequency,
	}
}

type RewardPoolView struct {
	Address            string `json:"address"`
	Admin              string `json:"admin"`
	TotalRewards       uint64 `json:"totalRewards"`
	DistributedRewards uint64 `json:"distributedRewards"`
	Remaining          uint64 `json:"remaining"`
}

func newRewardPoolView(d *model.RewardPoolDocument) RewardPoolView {
	return RewardPoolView{
		Address:            d.ID,
		Admin:              d.Admin,
		TotalRewards:       d.TotalRewards,
		DistributedRewards: d.DistributedRewards,
		Remaining:          d.Remaining(),
	}
}

type TreasuryView struct {
	Address           string  `json:"address"`
	Admin             string  `json:"admin"`
	TotalFees         uint64  `json:"totalFees"`
	ProtocolFee       uint8   `json:"protocolFee"`
	ReservePercentage uint8   `json:"reservePercentage"`
	VaultBalance      *uint64 `json:"vaultBalance,omitempty"`
	ReservedBalance   *uint64 `json:"reservedBalance,omitempty"`
	MaxWithdrawable   *uint64 `json:"maxWithdrawable,omitempty"`
}

func newTreasuryView(d *model.TreasuryDocument) TreasuryView {
	return TreasuryView{
		Address:           d.ID,
		Admin:             d.Admin,
		TotalFees:         d.TotalFees,
		ProtocolFee:       d.ProtocolFee,
		ReservePercentage: d.ReservePercentage,
	}
}

func newTreasuryBalanceView(v *services.TreasuryView) TreasuryView {
	view := newTreasuryView(v.TreasuryDocument)
	view.VaultBalance = &v.VaultBalance
	view.ReservedBalance = &v.ReservedBalance
	view.MaxWithdrawable = &v.MaxWithdrawable
	return view
}

package types

type EventType string

func (e EventType) String() string {
	return string(e)
}

const (
	EventStakeCreated          EventType = "solscore.stake.v1.StakeCreated"
	EventStakeClosed           EventType = "solscore.stake.v1.StakeClosed"
	EventRewardsClaimed        EventType = "solscore.rewards.v1.RewardsClaimed"
	EventRewardPoolFunded      EventType = "solscore.rewards.v1.RewardPoolFunded"
	EventTreasuryDeposited     EventType = "solscore.treasury.v1.TreasuryDeposited"
	EventTreasuryWithdrawn     EventType = "solscore.treasury.v1.TreasuryWithdrawn"
	EventTreasuryConfigUpdated EventType = "solscore.treasury.v1.TreasuryConfigUpdated"
)

// LedgerEvent is emitted after an operation commits.
type LedgerEvent struct {
	Type      EventType         `json:"type"`
	TraceID   string            `json:"trace_id,omitempty"`
	Timestamp int64             `json:"timestamp"`
	Account   string            `json:"account"`
	Actor     string            `json:"actor"`
	Amount    uint64            `json:"amount,omitempty"`
	Fee       uint64            `json:"fee,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

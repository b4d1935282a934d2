package model

const (
	StakeConfigCollection  = "stake_config"
	StakeCollection        = "stake"
	StakeCounterCollection = "stake_counter"
)

type StakeConfigDocument struct {
	ID                 string   `bson:"_id"`
	Admin              string   `bson:"admin"`
	MinStakeAmount     uint64   `bson:"min_stake_amount"`
	MaxStakeAmount     uint64   `bson:"max_stake_amount"`
	EarlyWithdrawalFee uint8    `bson:"early_withdrawal_fee"`
	LockOptions        []uint64 `bson:"lock_options"`
	Bump               uint8    `bson:"bump"`
}

func (d *StakeConfigDocument) CollectionName() string { return StakeConfigCollection }
func (d *StakeConfigDocument) Key() string            { return d.ID }

// AllowsLockPeriod reports whether period is one of the configured lock options.
func (d *StakeConfigDocument) AllowsLockPeriod(period uint64) bool {
	for _, option := range d.LockOptions {
		if option == period {
			return true
		}
	}
	return false
}

type StakeDocument struct {
	ID            string `bson:"_id"`
	Owner         string `bson:"owner"`
	Sequence      uint64 `bson:"sequence"`
	Amount        uint64 `bson:"amount"`
	StartTime     int64  `bson:"start_time"`
	LockPeriod    uint64 `bson:"lock_period"`
	FplUser       string `bson:"fpl_user"`
	IsActive      bool   `bson:"is_active"`
	LastClaimTime int64  `bson:"last_claim_time"`
	Bump          uint8  `bson:"bump"`
}

func (d *StakeDocument) CollectionName() string { return StakeCollection }
func (d *StakeDocument) Key() string            { return d.ID }

type StakeCounterDocument struct {
	ID    string `bson:"_id"`
	Owner string `bson:"owner"`
	Count uint64 `bson:"count"`
	Bump  uint8  `bson:"bump"`
}

func (d *StakeCounterDocument) CollectionName() string { return StakeCounterCollection }
func (d *StakeCounterDocument) Key() string            { return d.ID }

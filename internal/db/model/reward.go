package model

const (
	RewardConfigCollection = "reward_config"
	RewardPoolCollection   = "reward_pool"
)

type RewardConfigDocument struct {
	ID                    string `bson:"_id"`
	Admin                 string `bson:"admin"`
	BaseAPY               uint8  `bson:"base_apy"`
	ScoreMultiplier       uint8  `bson:"score_multiplier"`
	DistributionFrequency uint64 `bson:"distribution_frequency"`
	Bump                  uint8  `bson:"bump"`
}

func (d *RewardConfigDocument) CollectionName() string { return RewardConfigCollection }
func (d *RewardConfigDocument) Key() string            { return d.ID }

type RewardPoolDocument struct {
	ID                 string `bson:"_id"`
	Admin              string `bson:"admin"`
	TotalRewards       uint64 `bson:"total_rewards"`
	DistributedRewards uint64 `bson:"distributed_rewards"`
	Bump               uint8  `bson:"bump"`
}

func (d *RewardPoolDocument) CollectionName() string { return RewardPoolCollection }
func (d *RewardPoolDocument) Key() string            { return d.ID }

// Remaining is the funded amount not yet paid out.
func (d *RewardPoolDocument) Remaining() uint64 {
	return d.TotalRewards - d.DistributedRewards
}

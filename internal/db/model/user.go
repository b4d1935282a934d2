package model

const UserCollection = "user"

// MaxFplIDLength bounds UserDocument.FplID in bytes.
const MaxFplIDLength = 20

// UserDocument is owned by the score feed. The ledger only reads the scores.
type UserDocument struct {
	ID          string `bson:"_id"`
	Authority   string `bson:"authority"`
	FplID       string `bson:"fpl_id"`
	TeamData    []byte `bson:"team_data"`
	WeeklyScore uint32 `bson:"weekly_score"`
	TotalScore  uint32 `bson:"total_score"`
	LastUpdated int64  `bson:"last_updated"`
	Bump        uint8  `bson:"bump"`
}

func (d *UserDocument) CollectionName() string { return UserCollection }
func (d *UserDocument) Key() string            { return d.ID }

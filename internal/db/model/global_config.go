package model

const GlobalConfigCollection = "global_config"

// MaxAPIURLLength bounds GlobalConfigDocument.APIURL in bytes.
const MaxAPIURLLength = 100

type GlobalConfigDocument struct {
	ID              string `bson:"_id"`
	Admin           string `bson:"admin"`
	CurrentGameweek uint8  `bson:"current_gameweek"`
	SeasonStart     int64  `bson:"season_start"`
	SeasonEnd       int64  `bson:"season_end"`
	APIURL          string `bson:"api_url"`
	Bump            uint8  `bson:"bump"`
}

func (d *GlobalConfigDocument) CollectionName() string { return GlobalConfigCollection }
func (d *GlobalConfigDocument) Key() string            { return d.ID }

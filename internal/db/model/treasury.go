package model

const TreasuryCollection = "treasury"

// TreasuryDocument.TotalFees is a lifetime counter of collected fees, not the
// live vault balance. Withdrawals never decrement it.
type TreasuryDocument struct {
	ID                string `bson:"_id"`
	Admin             string `bson:"admin"`
	TotalFees         uint64 `bson:"total_fees"`
	ProtocolFee       uint8  `bson:"protocol_fee"`
	ReservePercentage uint8  `bson:"reserve_percentage"`
	Bump              uint8  `bson:"bump"`
}

func (d *TreasuryDocument) CollectionName() string { return TreasuryCollection }
func (d *TreasuryDocument) Key() string            { return d.ID }

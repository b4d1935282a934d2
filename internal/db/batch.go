package db

import "github.com/solscore-labs/solscore-ledger/internal/db/model"

// Batch is the set of record writes produced by one ledger operation. It is
// applied by Commit as a unit: inserts require the key to be absent, updates
// require it to be present, and a failed precondition leaves every record
// untouched.
type Batch struct {
	inserts []model.Record
	updates []model.Record
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Insert(records ...model.Record) *Batch {
	b.inserts = append(b.inserts, records...)
	return b
}

func (b *Batch) Update(records ...model.Record) *Batch {
	b.updates = append(b.updates, records...)
	return b
}

func (b *Batch) Inserts() []model.Record {
	return b.inserts
}

func (b *Batch) Updates() []model.Record {
	return b.updates
}

func (b *Batch) Len() int {
	return len(b.inserts) + len(b.updates)
}

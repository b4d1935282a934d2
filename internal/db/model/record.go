package model

// Record is a ledger document stored under its derived address.
type Record interface {
	CollectionName() string
	Key() string
}

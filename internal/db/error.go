package db

import (
	"errors"
	"fmt"
)

// DuplicateKeyError is returned when a batch inserts a record whose key
// already exists in its collection.
type DuplicateKeyError struct {
	Collection string
	Key        string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s record %s already exists", e.Collection, e.Key)
}

func IsDuplicateKeyError(err error) bool {
	var target *DuplicateKeyError
	return errors.As(err, &target)
}

// NotFoundError is returned by lookups and updates of a missing record.
type NotFoundError struct {
	Collection string
	Key        string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s record %s not found", e.Collection, e.Key)
}

func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

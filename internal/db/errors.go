package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrSensorNotFound reports a query that referenced a sensor id with no
// matching row. Callers can present it as "no such sensor" instead of a
// server malfunction.
var ErrSensorNotFound = errors.New("sensor not found")

// StorageError wraps a failure at the persistence boundary with the
// operation that produced it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsDuplicate reports whether err is a unique-constraint violation,
// e.g. a concurrent insert for the same mac_address.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsConstraint reports whether err is any constraint violation
// (unique or foreign key), as opposed to a transient I/O failure.
func IsConstraint(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated)
}

// Package storage defines the record store the ledger reads from: one repository per
// entity kind, each offering list, get, create, update and delete.
//
// Implementations live in storage/memory and storage/sqlite.
package storage

import (
	"context"
	"errors"

	"kakeibo/internal/core"
)

// ErrNotFound is returned by Update when no record has the given id.
var ErrNotFound = errors.New("record not found")

// Record is implemented by every stored entity so repositories can assign ids.
type Record[T any] interface {
	RecordID() string
	WithRecordID(id string) T
}

// Repository is the per-entity storage contract.
type Repository[T Record[T]] interface {
	// List returns every record. The order carries no meaning.
	List(ctx context.Context) ([]T, error)
	// Get returns the record with id; ok is false if none exists.
	Get(ctx context.Context, id string) (record T, ok bool, err error)
	// Create assigns a fresh id, stores the record and returns it.
	Create(ctx context.Context, record T) (T, error)
	// Update applies patch to the stored record and returns the result.
	// It fails with ErrNotFound if id is unknown.
	Update(ctx context.Context, id string, patch func(*T)) (T, error)
	// Delete removes the record; deleting an unknown id is a no-op.
	Delete(ctx context.Context, id string) error
}

// Store groups the repositories for every entity kind.
type Store interface {
	Accounts() Repository[core.Account]
	PaymentMethods() Repository[core.PaymentMethod]
	Transactions() Repository[core.Transaction]
	RecurringPayments() Repository[core.RecurringPayment]
	SavingsGoals() Repository[core.SavingsGoal]
	Close() error
}

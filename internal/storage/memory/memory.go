// Package memory is an in-process Store, used by tests and the memory backend.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"kakeibo/internal/core"
	"kakeibo/internal/storage"
)

type Store struct {
	accounts  *collection[core.Account]
	methods   *collection[core.PaymentMethod]
	txs       *collection[core.Transaction]
	recurring *collection[core.RecurringPayment]
	goals     *collection[core.SavingsGoal]
}

func New() *Store {
	return &Store{
		accounts:  newCollection[core.Account](),
		methods:   newCollection[core.PaymentMethod](),
		txs:       newCollection[core.Transaction](),
		recurring: newCollection[core.RecurringPayment](),
		goals:     newCollection[core.SavingsGoal](),
	}
}

var _ storage.Store = (*Store)(nil)

func (s *Store) Accounts() storage.Repository[core.Account]             { return s.accounts }
func (s *Store) PaymentMethods() storage.Repository[core.PaymentMethod] { return s.methods }
func (s *Store) Transactions() storage.Repository[core.Transaction]     { return s.txs }
func (s *Store) SavingsGoals() storage.Repository[core.SavingsGoal]     { return s.goals }

func (s *Store) RecurringPayments() storage.Repository[core.RecurringPayment] {
	return s.recurring
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

type collection[T storage.Record[T]] struct {
	mu    sync.Mutex
	order []string
	items map[string]T
}

func newCollection[T storage.Record[T]]() *collection[T] {
	return &collection[T]{items: make(map[string]T)}
}

func (c *collection[T]) List(_ context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out, nil
}

func (c *collection[T]) Get(_ context.Context, id string) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	return item, ok, nil
}

// Create keeps a caller-supplied id if it is not taken, which lets fixtures use
// readable ids; otherwise a UUID is assigned.
func (c *collection[T]) Create(_ context.Context, record T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := record.RecordID()
	if id == "" {
		id = uuid.NewString()
	} else if _, taken := c.items[id]; taken {
		return record, fmt.Errorf("create record: id %q already exists", id)
	}
	record = record.WithRecordID(id)
	c.items[id] = record
	c.order = append(c.order, id)
	return record, nil
}

func (c *collection[T]) Update(_ context.Context, id string, patch func(*T)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("update %s: %w", id, storage.ErrNotFound)
	}
	patch(&item)
	item = item.WithRecordID(id)
	c.items[id] = item
	return item, nil
}

func (c *collection[T]) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return nil
	}
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Package services reads fresh snapshots from storage and runs the scheduling
// engine over them.
package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"kakeibo/internal/core"
	"kakeibo/internal/obligations"
	"kakeibo/internal/recurring"
	"kakeibo/internal/savings"
	"kakeibo/internal/storage"
)

// Ledger answers read-only questions about a household's records. Every call
// reads storage again; nothing is cached between calls.
type Ledger struct {
	store storage.Store
}

func NewLedger(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

// Snapshot loads every collection concurrently.
func (l *Ledger) Snapshot(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Accounts, err = load(ctx, "accounts", l.store.Accounts())
		return err
	})
	g.Go(func() (err error) {
		snap.PaymentMethods, err = load(ctx, "payment methods", l.store.PaymentMethods())
		return err
	})
	g.Go(func() (err error) {
		snap.Transactions, err = load(ctx, "transactions", l.store.Transactions())
		return err
	})
	g.Go(func() (err error) {
		snap.RecurringPayments, err = load(ctx, "recurring payments", l.store.RecurringPayments())
		return err
	})
	g.Go(func() (err error) {
		snap.SavingsGoals, err = load(ctx, "savings goals", l.store.SavingsGoals())
		return err
	})

	if err := g.Wait(); err != nil {
		return core.Snapshot{}, err
	}
	return snap, nil
}

func load[T storage.Record[T]](ctx context.Context, what string, repo storage.Repository[T]) ([]T, error) {
	records, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", what, err)
	}
	return records, nil
}

// RecurringLine is one recurring payment as it applies to a month.
type RecurringLine struct {
	Payment core.RecurringPayment
	Dates   []core.Date
	Amount  core.Yen
}

// RecurringPaymentsForMonth lists the recurring payments that occur in month,
// with their occurrence dates and the amount in effect for that month.
func (l *Ledger) RecurringPaymentsForMonth(ctx context.Context, month core.Month) ([]RecurringLine, error) {
	y, m, ok := month.YearMonth()
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidMonthString, month)
	}
	rps, err := load(ctx, "recurring payments", l.store.RecurringPayments())
	if err != nil {
		return nil, err
	}
	due := recurring.ForMonth(rps, y, m)
	lines := make([]RecurringLine, 0, len(due))
	for _, rp := range due {
		lines = append(lines, RecurringLine{
			Payment: rp,
			Dates:   recurring.Occurrences(rp, month),
			Amount:  recurring.EffectiveAmount(rp, month),
		})
	}
	return lines, nil
}

// Obligations groups open obligations by funding account as seen from month.
func (l *Ledger) Obligations(ctx context.Context, month core.Month) ([]obligations.AccountObligations, error) {
	if !month.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidMonthString, month)
	}
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return obligations.Aggregate(snap, month), nil
}

// SavingsProgress reports every savings goal as of asOf.
func (l *Ledger) SavingsProgress(ctx context.Context, asOf core.Month) ([]savings.Status, error) {
	if !asOf.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidMonthString, asOf)
	}
	goals, err := load(ctx, "savings goals", l.store.SavingsGoals())
	if err != nil {
		return nil, err
	}
	out := make([]savings.Status, 0, len(goals))
	for _, goal := range goals {
		out = append(out, savings.Progress(goal, asOf))
	}
	return out, nil
}

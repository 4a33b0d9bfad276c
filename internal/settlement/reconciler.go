// Package settlement marks deferred-billing transactions as settled once their
// card statement has been paid.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kakeibo/internal/billing"
	"kakeibo/internal/core"
	"kakeibo/internal/log"
	"kakeibo/internal/storage"
)

// Publisher is notified about every transaction the sweep settles.
type Publisher interface {
	PublishTransactionSettled(ctx context.Context, tx core.Transaction, paymentDate core.Date) error
}

// Failure records a transaction the sweep could not settle.
type Failure struct {
	TransactionID string
	Err           error
}

// Result summarises one sweep.
type Result struct {
	Checked  int
	Settled  []string
	Skipped  int
	Failures []Failure
}

// Reconciler settles overdue card transactions.
type Reconciler struct {
	store     storage.Store
	publisher Publisher
	logger    *log.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithPublisher sends a settlement event for each settled transaction.
func WithPublisher(p Publisher) Option {
	return func(r *Reconciler) {
		r.publisher = p
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Reconciler) {
		r.logger = l
	}
}

// NewReconciler creates a reconciler over store.
func NewReconciler(store storage.Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:  store,
		logger: log.Default().WithComponent(log.ComponentSettlement),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Unsettled returns every transaction charged to a payment method that has not
// been settled yet.
func (r *Reconciler) Unsettled(ctx context.Context) ([]core.Transaction, error) {
	all, err := r.store.Transactions().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	var out []core.Transaction
	for _, tx := range all {
		if tx.PaymentMethodID != "" && !tx.IsSettled() {
			out = append(out, tx)
		}
	}
	return out, nil
}

// SettleOverdue sets SettledAt to now on every unsettled transaction whose
// statement payment date is on or before now. Each transaction is handled
// independently; failures are collected in the result and the sweep goes on.
// Running it again with the same now changes nothing.
func (r *Reconciler) SettleOverdue(ctx context.Context, now time.Time) (Result, error) {
	if r.store == nil {
		return Result{}, errors.New("reconciler not properly initialized")
	}

	unsettled, err := r.Unsettled(ctx)
	if err != nil {
		return Result{}, err
	}
	methods, err := r.store.PaymentMethods().List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list payment methods: %w", err)
	}
	byID := core.Snapshot{PaymentMethods: methods}.PaymentMethodsByID()

	r.logger.InfoContext(ctx, "Settling overdue transactions",
		log.FieldCount, len(unsettled),
		log.FieldSettledAt, now.Format(time.RFC3339))

	result := Result{Checked: len(unsettled)}
	for _, tx := range unsettled {
		pm, ok := byID[tx.PaymentMethodID]
		if !ok || !pm.IsMonthly() {
			result.Skipped++
			continue
		}
		paymentDate, ok := billing.PaymentDate(tx.Date, pm)
		if !ok {
			r.logger.WarnContext(ctx, "Payment method has incomplete billing cycle",
				log.FieldTransactionID, tx.ID,
				log.FieldPaymentMethodID, pm.ID)
			result.Skipped++
			continue
		}
		if !Due(paymentDate, now) {
			result.Skipped++
			continue
		}

		settledAt := now
		updated, err := r.store.Transactions().Update(ctx, tx.ID, func(rec *core.Transaction) {
			if rec.SettledAt == nil {
				rec.SettledAt = &settledAt
			}
		})
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to settle transaction",
				log.NewFields().
					WithOperation(log.OpSettle).
					WithTransaction(tx.ID, pm.ID, int64(tx.Amount)).
					WithError(err).
					ToSlice()...)
			result.Failures = append(result.Failures, Failure{TransactionID: tx.ID, Err: err})
			continue
		}

		result.Settled = append(result.Settled, tx.ID)
		r.logger.InfoContext(ctx, "Transaction settled",
			log.FieldTransactionID, tx.ID,
			log.FieldPaymentMethodID, pm.ID,
			log.FieldPaymentDate, paymentDate.String(),
			log.FieldAmount, int64(tx.Amount))

		if r.publisher != nil {
			if err := r.publisher.PublishTransactionSettled(ctx, updated, paymentDate); err != nil {
				// The settlement stands; consumers can rebuild from storage.
				r.logger.ErrorContext(ctx, "Failed to publish settlement event",
					log.FieldTransactionID, tx.ID,
					log.FieldError, err)
			}
		}
	}

	r.logger.InfoContext(ctx, "Settlement sweep complete",
		"settled", len(result.Settled),
		"failed", len(result.Failures),
		"total_checked", result.Checked)

	return result, nil
}

// Due reports whether a statement paid on paymentDate has been paid by now, that
// is whether the payment date is on or before now's calendar day in now's location.
func Due(paymentDate core.Date, now time.Time) bool {
	if paymentDate.IsEmpty() {
		return false
	}
	return !paymentDate.After(core.DateOf(now))
}

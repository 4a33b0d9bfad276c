// Package storagetest holds the behaviour every storage.Store must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/storage"
)

// RunContract exercises create, get, list, update and delete against store.
func RunContract(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("create assigns id", func(t *testing.T) {
		acc, err := store.Accounts().Create(ctx, core.Account{Name: "Bank", Type: "bank", Balance: 120000})
		if err != nil {
			t.Fatalf("create account: %v", err)
		}
		if acc.ID == "" {
			t.Fatal("expected generated id")
		}
		got, ok, err := store.Accounts().Get(ctx, acc.ID)
		if err != nil || !ok {
			t.Fatalf("get account: ok=%v err=%v", ok, err)
		}
		if got.Name != "Bank" || got.Balance != 120000 {
			t.Fatalf("unexpected account %+v", got)
		}
	})

	t.Run("get unknown id is absent", func(t *testing.T) {
		_, ok, err := store.PaymentMethods().Get(ctx, "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Fatal("expected unknown id to be absent")
		}
	})

	t.Run("round trips nested fields", func(t *testing.T) {
		closing, payment, offset := 15, 10, 1
		pm, err := store.PaymentMethods().Create(ctx, core.PaymentMethod{
			Name: "Card", Type: "credit", BillingKind: core.BillingMonthly, AccountID: "acc",
			ClosingDay: &closing, PaymentDay: &payment, PaymentMonthOffset: &offset,
		})
		if err != nil {
			t.Fatalf("create payment method: %v", err)
		}
		got, _, err := store.PaymentMethods().Get(ctx, pm.ID)
		if err != nil {
			t.Fatalf("get payment method: %v", err)
		}
		if c, p, o, ok := got.CycleParams(); !ok || c != 15 || p != 10 || o != 1 {
			t.Fatalf("cycle params lost: %+v", got)
		}

		rp, err := store.RecurringPayments().Create(ctx, core.RecurringPayment{
			Name: "Gym", Type: core.Expense, Amount: 8000, PeriodType: core.PeriodMonths, PeriodValue: 1,
			Anchor:           core.NewDate(2026, 1, 31),
			MonthlyOverrides: map[core.Month]core.Yen{"2026-02": 4000},
		})
		if err != nil {
			t.Fatalf("create recurring payment: %v", err)
		}
		gotRP, _, err := store.RecurringPayments().Get(ctx, rp.ID)
		if err != nil {
			t.Fatalf("get recurring payment: %v", err)
		}
		if !gotRP.Anchor.Equal(core.NewDate(2026, 1, 31)) || gotRP.MonthlyOverrides["2026-02"] != 4000 {
			t.Fatalf("recurring payment fields lost: %+v", gotRP)
		}

		goal, err := store.SavingsGoals().Create(ctx, core.SavingsGoal{
			Name: "Trip", TargetAmount: 100000, StartMonth: "2026-01", TargetDate: core.NewDate(2026, 3, 31),
			ExcludedMonths: []core.Month{"2026-02"},
		})
		if err != nil {
			t.Fatalf("create savings goal: %v", err)
		}
		gotGoal, _, err := store.SavingsGoals().Get(ctx, goal.ID)
		if err != nil {
			t.Fatalf("get savings goal: %v", err)
		}
		if gotGoal.TargetMonth() != "2026-03" || len(gotGoal.ExcludedMonths) != 1 {
			t.Fatalf("savings goal fields lost: %+v", gotGoal)
		}
	})

	t.Run("update merges and keeps id", func(t *testing.T) {
		tx, err := store.Transactions().Create(ctx, core.Transaction{
			Type: core.Expense, Amount: 3000, Date: core.NewDate(2026, 2, 20), PaymentMethodID: "pm",
		})
		if err != nil {
			t.Fatalf("create transaction: %v", err)
		}
		settledAt := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
		updated, err := store.Transactions().Update(ctx, tx.ID, func(rec *core.Transaction) {
			rec.SettledAt = &settledAt
			rec.ID = "hijacked"
		})
		if err != nil {
			t.Fatalf("update transaction: %v", err)
		}
		if updated.ID != tx.ID {
			t.Fatalf("update changed id to %s", updated.ID)
		}
		got, _, _ := store.Transactions().Get(ctx, tx.ID)
		if got.SettledAt == nil || !got.SettledAt.Equal(settledAt) || got.Amount != 3000 {
			t.Fatalf("update not persisted: %+v", got)
		}
	})

	t.Run("update unknown id fails", func(t *testing.T) {
		_, err := store.Transactions().Update(ctx, "missing", func(*core.Transaction) {})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		acc, err := store.Accounts().Create(ctx, core.Account{Name: "Wallet", Type: "cash"})
		if err != nil {
			t.Fatalf("create account: %v", err)
		}
		if err := store.Accounts().Delete(ctx, acc.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := store.Accounts().Delete(ctx, acc.ID); err != nil {
			t.Fatalf("second delete: %v", err)
		}
		if _, ok, _ := store.Accounts().Get(ctx, acc.ID); ok {
			t.Fatal("deleted account still present")
		}
		list, err := store.Accounts().List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, a := range list {
			if a.ID == acc.ID {
				t.Fatal("deleted account still listed")
			}
		}
	})
}

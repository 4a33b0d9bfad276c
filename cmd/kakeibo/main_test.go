package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/log"
	"kakeibo/internal/storage/memory"
)

func intPtr(v int) *int { return &v }

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	steps := []error{}
	_, err := store.Accounts().Create(ctx, core.Account{ID: "acc-bank", Name: "Bank", Type: "bank"})
	steps = append(steps, err)
	_, err = store.PaymentMethods().Create(ctx, core.PaymentMethod{
		ID: "pm-card", Name: "Card", Type: "credit", BillingKind: core.BillingMonthly, AccountID: "acc-bank",
		ClosingDay: intPtr(15), PaymentDay: intPtr(10), PaymentMonthOffset: intPtr(1),
	})
	steps = append(steps, err)
	_, err = store.Transactions().Create(ctx, core.Transaction{
		ID: "tx-1", Type: core.Expense, Amount: 5000, Date: core.NewDate(2026, 2, 3), PaymentMethodID: "pm-card",
	})
	steps = append(steps, err)
	_, err = store.RecurringPayments().Create(ctx, core.RecurringPayment{
		ID: "rp-rent", Name: "Rent", Type: core.Expense, Amount: 80000, PeriodType: core.PeriodMonths,
		PeriodValue: 1, Anchor: core.NewDate(2026, 1, 25), AccountID: "acc-bank",
	})
	steps = append(steps, err)
	_, err = store.SavingsGoals().Create(ctx, core.SavingsGoal{
		ID: "goal-trip", Name: "Trip", TargetAmount: 100000, StartMonth: "2026-01", TargetDate: core.NewDate(2026, 3, 31),
	})
	steps = append(steps, err)
	for _, err := range steps {
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return store
}

func TestRun(t *testing.T) {
	now := time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		cmd  string
		args []string
		want []string
	}{
		{
			name: "obligations",
			cmd:  "obligations",
			args: []string{"-month", "2026-03"},
			want: []string{"Bank", "2026-03-10", "card_billing", "2026-03-25", "Rent", "period 2026-01-16..2026-02-15"},
		},
		{
			name: "recurring defaults to current month",
			cmd:  "recurring",
			want: []string{"2026-03-25", "Rent", "80000"},
		},
		{
			name: "savings",
			cmd:  "savings",
			args: []string{"-month", "2026-03"},
			want: []string{"Trip (reached)", "33334", "100002"},
		},
		{
			name: "settle",
			cmd:  "settle",
			want: []string{"checked 1, settled 1, failed 0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			logger := log.New(log.Config{Level: slog.LevelError, Output: &bytes.Buffer{}})
			if err := run(context.Background(), &out, logger, seededStore(t), nil, tt.cmd, tt.args, now); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	logger := log.New(log.Config{Level: slog.LevelError, Output: &bytes.Buffer{}})
	store := memory.New()
	now := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

	if err := run(context.Background(), &bytes.Buffer{}, logger, store, nil, "bogus", nil, now); err == nil {
		t.Error("expected error for unknown command")
	}
	if err := run(context.Background(), &bytes.Buffer{}, logger, store, nil, "obligations", []string{"-month", "2026-3"}, now); err == nil {
		t.Error("expected error for malformed month")
	}

	var out bytes.Buffer
	if err := run(context.Background(), &out, logger, store, nil, "obligations", nil, now); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "no obligations") {
		t.Errorf("unexpected output %q", out.String())
	}
}

type recordingPublisher struct {
	settled []string
}

func (p *recordingPublisher) PublishTransactionSettled(_ context.Context, tx core.Transaction, paymentDate core.Date) error {
	p.settled = append(p.settled, tx.ID+"@"+paymentDate.String())
	return nil
}

func TestRunSettlePublishes(t *testing.T) {
	logger := log.New(log.Config{Level: slog.LevelError, Output: &bytes.Buffer{}})
	store := seededStore(t)
	pub := &recordingPublisher{}
	now := time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)

	var out bytes.Buffer
	if err := run(context.Background(), &out, logger, store, pub, "settle", nil, now); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if len(pub.settled) != 1 || pub.settled[0] != "tx-1@2026-03-10" {
		t.Errorf("published = %v, want [tx-1@2026-03-10]", pub.settled)
	}

	// A second sweep settles nothing and announces nothing.
	if err := run(context.Background(), &out, logger, store, pub, "settle", nil, now); err != nil {
		t.Fatalf("second run() error = %v", err)
	}
	if len(pub.settled) != 1 {
		t.Errorf("second sweep published again: %v", pub.settled)
	}
}

package obligations

import (
	"testing"
	"time"

	"kakeibo/internal/core"
)

func intPtr(v int) *int { return &v }

func fixture() core.Snapshot {
	return core.Snapshot{
		Accounts: []core.Account{
			{ID: "acc-bank", Name: "Bank", Order: 1},
			{ID: "acc-cash", Name: "Cash", Order: 0},
			{ID: "acc-empty", Name: "Empty", Order: 2},
		},
		PaymentMethods: []core.PaymentMethod{
			{
				ID: "pm-card", Name: "Card", BillingKind: core.BillingMonthly, AccountID: "acc-bank",
				ClosingDay: intPtr(15), PaymentDay: intPtr(10), PaymentMonthOffset: intPtr(1),
			},
			{ID: "pm-debit", Name: "Debit", BillingKind: core.BillingImmediate, AccountID: "acc-bank"},
			{
				ID: "pm-broken", Name: "Broken", BillingKind: core.BillingMonthly, AccountID: "acc-bank",
				ClosingDay: intPtr(15), PaymentDay: intPtr(10),
			},
		},
	}
}

func TestAggregateOrdersByDate(t *testing.T) {
	snap := fixture()
	snap.Transactions = []core.Transaction{
		// closes 2026-02-15, paid 2026-03-10
		{ID: "tx-1", Type: core.Expense, Amount: 5000, Date: core.NewDate(2026, 2, 3), PaymentMethodID: "pm-card"},
	}
	snap.RecurringPayments = []core.RecurringPayment{
		{ID: "rp-rent", Name: "Rent", Type: core.Expense, Amount: 80000, PeriodType: core.PeriodMonths,
			PeriodValue: 1, Anchor: core.NewDate(2026, 1, 5), AccountID: "acc-bank"},
		{ID: "rp-weird", Name: "Weird", Type: core.Expense, Amount: 100, PeriodType: "fortnights",
			PeriodValue: 1, AccountID: "acc-bank"},
	}

	got := Aggregate(snap, "2026-03")
	if len(got) != 1 || got[0].Account.ID != "acc-bank" {
		t.Fatalf("expected only the bank account, got %+v", got)
	}
	entries := got[0].Entries
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Kind != Recurring || entries[0].Date.String() != "2026-03-05" {
		t.Errorf("first entry = %s %s, want recurring on 2026-03-05", entries[0].Kind, entries[0].Date)
	}
	if entries[1].Kind != CardBilling || entries[1].Date.String() != "2026-03-10" {
		t.Errorf("second entry = %s %s, want card billing on 2026-03-10", entries[1].Kind, entries[1].Date)
	}
	if entries[2].Dated() {
		t.Errorf("undated entry should sort last, got %s", entries[2].Date)
	}
	if got[0].Total != 80000+5000+100 {
		t.Errorf("account total = %d", got[0].Total)
	}
}

func TestAggregateCardGroup(t *testing.T) {
	snap := fixture()
	settled := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	snap.Transactions = []core.Transaction{
		{ID: "tx-b", Type: core.Expense, Amount: 3000, Date: core.NewDate(2026, 3, 1), PaymentMethodID: "pm-card"},
		{ID: "tx-a", Type: core.Expense, Amount: 2000, Date: core.NewDate(2026, 2, 20), PaymentMethodID: "pm-card"},
		{ID: "tx-refund", Type: core.Income, Amount: 500, Date: core.NewDate(2026, 2, 25), PaymentMethodID: "pm-card"},
		{ID: "tx-settled", Type: core.Expense, Amount: 9999, Date: core.NewDate(2026, 2, 21), PaymentMethodID: "pm-card", SettledAt: &settled},
		{ID: "tx-debit", Type: core.Expense, Amount: 700, Date: core.NewDate(2026, 2, 21), PaymentMethodID: "pm-debit"},
		{ID: "tx-broken", Type: core.Expense, Amount: 800, Date: core.NewDate(2026, 2, 21), PaymentMethodID: "pm-broken"},
		{ID: "tx-orphan", Type: core.Expense, Amount: 900, Date: core.NewDate(2026, 2, 21), PaymentMethodID: "pm-deleted"},
	}
	snap.RecurringPayments = []core.RecurringPayment{
		{ID: "rp-stream", Name: "Streaming", Type: core.Expense, Amount: 1500, PeriodType: core.PeriodMonths,
			PeriodValue: 1, PaymentMethodID: "pm-card",
			MonthlyOverrides: map[core.Month]core.Yen{"2026-03": 1200}},
		{ID: "rp-broken", Name: "Broken", Type: core.Expense, Amount: 400, PeriodType: core.PeriodMonths,
			PeriodValue: 1, PaymentMethodID: "pm-broken"},
	}

	got := Aggregate(snap, "2026-03")
	if len(got) != 1 {
		t.Fatalf("expected one account, got %d", len(got))
	}
	entries := got[0].Entries
	if len(entries) != 1 {
		t.Fatalf("expected a single card entry, got %+v", entries)
	}
	e := entries[0]
	if e.PaymentMonth != "2026-04" || e.Date.String() != "2026-04-10" {
		t.Errorf("card entry month/date = %s %s", e.PaymentMonth, e.Date)
	}
	if e.Period.Start.String() != "2026-02-16" || e.Period.End.String() != "2026-03-15" {
		t.Errorf("period = %s..%s", e.Period.Start, e.Period.End)
	}
	if len(e.Transactions) != 3 || e.Transactions[0].ID != "tx-a" {
		t.Errorf("unexpected transactions %+v", e.Transactions)
	}
	if e.TransactionTotal != 2000+3000-500 {
		t.Errorf("transaction total = %d", e.TransactionTotal)
	}
	if len(e.Recurring) != 1 || e.RecurringTotal != 1200 {
		t.Errorf("recurring = %+v total %d", e.Recurring, e.RecurringTotal)
	}
	if e.Total != 4500+1200 || got[0].Total != e.Total {
		t.Errorf("totals = %d / %d", e.Total, got[0].Total)
	}
}

func TestAggregateRecurringCreatesCardGroup(t *testing.T) {
	snap := fixture()
	snap.RecurringPayments = []core.RecurringPayment{
		{ID: "rp-stream", Name: "Streaming", Type: core.Expense, Amount: 1500, PeriodType: core.PeriodMonths,
			PeriodValue: 1, PaymentMethodID: "pm-card"},
	}

	got := Aggregate(snap, "2026-12")
	if len(got) != 1 || len(got[0].Entries) != 1 {
		t.Fatalf("expected one card entry, got %+v", got)
	}
	e := got[0].Entries[0]
	if e.Kind != CardBilling || e.PaymentMonth != "2027-01" || e.Date.String() != "2027-01-10" {
		t.Errorf("entry = %s %s %s", e.Kind, e.PaymentMonth, e.Date)
	}
	if e.Period.Start.String() != "2026-11-16" || e.Period.End.String() != "2026-12-15" {
		t.Errorf("period = %s..%s", e.Period.Start, e.Period.End)
	}
}

func TestAggregateDirectRecurringGrouping(t *testing.T) {
	snap := fixture()
	snap.RecurringPayments = []core.RecurringPayment{
		{ID: "rp-salary", Name: "Salary", Type: core.Income, Amount: 300000, PeriodType: core.PeriodMonths,
			PeriodValue: 1, Anchor: core.NewDate(2025, 4, 25), AccountID: "acc-bank"},
		{ID: "rp-phone", Name: "Phone", Type: core.Expense, Amount: 6000, PeriodType: core.PeriodMonths,
			PeriodValue: 1, Anchor: core.NewDate(2025, 1, 25), PaymentMethodID: "pm-debit"},
		{ID: "rp-pocket", Name: "Pocket money", Type: core.Expense, Amount: 1000, PeriodType: core.PeriodDays,
			PeriodValue: 7, Anchor: core.NewDate(2026, 2, 27), AccountID: "acc-cash"},
		{ID: "rp-lost", Name: "Lost", Type: core.Expense, Amount: 1000, PeriodType: core.PeriodMonths,
			PeriodValue: 1, AccountID: "acc-deleted"},
	}

	got := Aggregate(snap, "2026-03")
	if len(got) != 2 {
		t.Fatalf("expected cash and bank accounts, got %d", len(got))
	}
	if got[0].Account.ID != "acc-cash" {
		t.Errorf("accounts should follow display order, got %s first", got[0].Account.ID)
	}
	cash := got[0].Entries
	if len(cash) != 1 || cash[0].Date.String() != "2026-03-06" || cash[0].Total != 1000 {
		t.Errorf("unexpected cash entries %+v", cash)
	}

	bank := got[1].Entries
	if len(bank) != 1 {
		t.Fatalf("salary and phone share 2026-03-25, got %d entries", len(bank))
	}
	if bank[0].Date.String() != "2026-03-25" || len(bank[0].Recurring) != 2 {
		t.Errorf("unexpected bank entry %+v", bank[0])
	}
	if bank[0].Total != 6000-300000 {
		t.Errorf("income should subtract, total = %d", bank[0].Total)
	}
}

func TestAggregateSkipsCardRecurringNotDueThisMonth(t *testing.T) {
	snap := fixture()
	snap.RecurringPayments = []core.RecurringPayment{
		{ID: "rp-quarterly", Name: "Insurance", Type: core.Expense, Amount: 9000, PeriodType: core.PeriodMonths,
			PeriodValue: 3, Anchor: core.NewDate(2026, 1, 20), PaymentMethodID: "pm-card"},
	}
	if got := Aggregate(snap, "2026-02"); len(got) != 0 {
		t.Fatalf("quarterly item should not appear in February, got %+v", got)
	}
	if got := Aggregate(snap, "2026-04"); len(got) != 1 {
		t.Fatalf("quarterly item should appear in April, got %+v", got)
	}
}

func TestAggregateAnchorlessQuarterlyIsUndated(t *testing.T) {
	snap := fixture()
	snap.RecurringPayments = []core.RecurringPayment{
		{ID: "rp-card-q", Name: "Card quarterly", Type: core.Expense, Amount: 9000, PeriodType: core.PeriodMonths,
			PeriodValue: 3, PaymentMethodID: "pm-card"},
		{ID: "rp-bank-q", Name: "Bank quarterly", Type: core.Expense, Amount: 6000, PeriodType: core.PeriodMonths,
			PeriodValue: 3, AccountID: "acc-bank"},
	}

	for _, m := range core.MonthsInRange("2026-01", "2026-12") {
		got := Aggregate(snap, m)
		if len(got) != 1 || len(got[0].Entries) != 1 {
			t.Fatalf("%s: expected a single undated entry, got %+v", m, got)
		}
		e := got[0].Entries[0]
		if e.Kind != Recurring || e.Dated() || len(e.Recurring) != 1 || e.Recurring[0].Payment.ID != "rp-bank-q" {
			t.Errorf("%s: unexpected entry %+v", m, e)
		}
		if got[0].Total != 6000 {
			t.Errorf("%s: card statements must not count the anchorless item, total = %d", m, got[0].Total)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(fixture(), "2026-03"); len(got) != 0 {
		t.Fatalf("expected no accounts, got %+v", got)
	}
	if got := Aggregate(fixture(), "bogus"); got != nil {
		t.Fatalf("expected nil for malformed month")
	}
}

// Package obligations builds, per funding account, the ordered list of upcoming
// debits and credits: card statements that will be paid from the account and
// recurring items charged to it directly.
package obligations

import (
	"sort"

	"kakeibo/internal/billing"
	"kakeibo/internal/core"
	"kakeibo/internal/recurring"
)

type EntryKind string

const (
	// CardBilling is one card statement: unsettled purchases plus card-charged
	// recurring items, paid together on the statement's payment date.
	CardBilling EntryKind = "card_billing"
	// Recurring groups recurring items charged directly to the account on one date.
	Recurring EntryKind = "recurring"
)

// RecurringItem is one recurring payment's contribution to an entry.
type RecurringItem struct {
	Payment core.RecurringPayment
	Date    core.Date
	Amount  core.Yen
}

// Entry is one dated (or undated) group of obligations on an account.
// Totals are signed: expenses add, income subtracts.
type Entry struct {
	Kind             EntryKind
	Date             core.Date
	PaymentMethod    core.PaymentMethod
	PaymentMonth     core.Month
	Period           billing.Cycle
	Transactions     []core.Transaction
	Recurring        []RecurringItem
	TransactionTotal core.Yen
	RecurringTotal   core.Yen
	Total            core.Yen
}

// Dated reports whether the entry has a resolvable date.
func (e Entry) Dated() bool {
	return !e.Date.IsZero()
}

// AccountObligations is the display-ready list for one account.
type AccountObligations struct {
	Account core.Account
	Entries []Entry
	Total   core.Yen
}

type cardKey struct {
	month  core.Month
	method string
}

type accountBuilder struct {
	account core.Account
	cards   map[cardKey]*Entry
	byDate  map[string]*Entry
	entries []*Entry
}

func newAccountBuilder(account core.Account) *accountBuilder {
	return &accountBuilder{
		account: account,
		cards:   make(map[cardKey]*Entry),
		byDate:  make(map[string]*Entry),
	}
}

// card returns the statement entry for (paymentMonth, pm), creating it with its
// billing period and payment date on first use.
func (b *accountBuilder) card(paymentMonth core.Month, pm core.PaymentMethod) (*Entry, bool) {
	key := cardKey{month: paymentMonth, method: pm.ID}
	if e, ok := b.cards[key]; ok {
		return e, true
	}
	period, ok := billing.Period(paymentMonth, pm)
	if !ok {
		return nil, false
	}
	date, ok := billing.ActualPaymentDate(paymentMonth, pm)
	if !ok {
		return nil, false
	}
	e := &Entry{
		Kind:          CardBilling,
		Date:          date,
		PaymentMethod: pm,
		PaymentMonth:  paymentMonth,
		Period:        period,
	}
	b.cards[key] = e
	b.entries = append(b.entries, e)
	return e, true
}

// direct returns the recurring entry for date; the zero date collects undated items.
func (b *accountBuilder) direct(date core.Date) *Entry {
	key := date.String()
	if e, ok := b.byDate[key]; ok {
		return e
	}
	e := &Entry{Kind: Recurring, Date: date}
	b.byDate[key] = e
	b.entries = append(b.entries, e)
	return e
}

func (b *accountBuilder) build() AccountObligations {
	out := AccountObligations{Account: b.account}
	for _, e := range b.entries {
		sort.SliceStable(e.Transactions, func(i, j int) bool {
			return e.Transactions[i].Date.Before(e.Transactions[j].Date)
		})
		e.Total = e.TransactionTotal + e.RecurringTotal
		out.Total += e.Total
		out.Entries = append(out.Entries, *e)
	}
	sortEntries(out.Entries)
	return out
}

// sortEntries orders entries by date ascending; undated entries go last and keep
// their relative order.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Dated() != b.Dated() {
			return a.Dated()
		}
		return a.Date.Before(b.Date)
	})
}

// Aggregate groups the snapshot's open obligations by funding account as seen from
// the calendar month ref. Accounts without any obligation are omitted. Records that
// reference unknown or misconfigured payment methods are skipped individually.
func Aggregate(snap core.Snapshot, ref core.Month) []AccountObligations {
	if !ref.Valid() {
		return nil
	}
	methods := snap.PaymentMethodsByID()

	builders := make(map[string]*accountBuilder, len(snap.Accounts))
	accounts := make([]core.Account, len(snap.Accounts))
	copy(accounts, snap.Accounts)
	sort.SliceStable(accounts, func(i, j int) bool { return accounts[i].Order < accounts[j].Order })
	for _, acc := range accounts {
		builders[acc.ID] = newAccountBuilder(acc)
	}

	// Unsettled purchases on deferred-billing methods, bucketed by statement.
	for _, tx := range snap.Transactions {
		if tx.IsSettled() || tx.PaymentMethodID == "" {
			continue
		}
		pm, ok := methods[tx.PaymentMethodID]
		if !ok || !pm.IsMonthly() {
			continue
		}
		b, ok := builders[pm.AccountID]
		if !ok {
			continue
		}
		month, ok := billing.PaymentMonth(tx.Date, pm)
		if !ok {
			continue
		}
		e, ok := b.card(month, pm)
		if !ok {
			continue
		}
		e.Transactions = append(e.Transactions, tx)
		e.TransactionTotal += core.Signed(tx.Type, tx.Amount)
	}

	for _, rp := range snap.RecurringPayments {
		pm, hasMethod := methods[rp.PaymentMethodID]
		if rp.PaymentMethodID != "" && hasMethod && pm.IsMonthly() {
			addCardRecurring(builders, rp, pm, ref)
			continue
		}
		accountID := rp.AccountID
		if accountID == "" && hasMethod {
			accountID = pm.AccountID
		}
		b, ok := builders[accountID]
		if !ok {
			continue
		}
		addDirectRecurring(b, rp, ref)
	}

	var out []AccountObligations
	for _, acc := range accounts {
		if result := builders[acc.ID].build(); len(result.Entries) > 0 {
			out = append(out, result)
		}
	}
	return out
}

// addCardRecurring folds a card-charged recurring item into the statement that closes
// in ref, when the item occurs in ref.
func addCardRecurring(builders map[string]*accountBuilder, rp core.RecurringPayment, pm core.PaymentMethod, ref core.Month) {
	_, _, offset, ok := pm.CycleParams()
	if !ok {
		return
	}
	b, ok := builders[pm.AccountID]
	if !ok || !recurring.OccursIn(rp, ref) {
		return
	}
	e, ok := b.card(ref.AddMonths(offset), pm)
	if !ok {
		return
	}
	date, _ := recurring.NextDate(rp, ref.FirstDay())
	amount := recurring.EffectiveAmount(rp, ref)
	e.Recurring = append(e.Recurring, RecurringItem{Payment: rp, Date: date, Amount: amount})
	e.RecurringTotal += core.Signed(rp.Type, amount)
}

// addDirectRecurring buckets an account-charged recurring item by its next
// occurrence on or after the first day of ref.
func addDirectRecurring(b *accountBuilder, rp core.RecurringPayment, ref core.Month) {
	date, ok := recurring.NextDate(rp, ref.FirstDay())
	month := ref
	if ok {
		month = date.Key()
	} else {
		date = core.Date{}
	}
	amount := recurring.EffectiveAmount(rp, month)
	e := b.direct(date)
	e.Recurring = append(e.Recurring, RecurringItem{Payment: rp, Date: date, Amount: amount})
	e.RecurringTotal += core.Signed(rp.Type, amount)
}

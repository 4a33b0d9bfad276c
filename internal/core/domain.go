package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	// BillingImmediate debits the linked account at purchase time.
	BillingImmediate BillingKind = "immediate"
	// BillingMonthly defers purchases into a monthly card statement.
	BillingMonthly BillingKind = "monthly"
)

const (
	PeriodMonths PeriodType = "months"
	PeriodDays   PeriodType = "days"
)

type (
	TransactionType string
	BillingKind     string
	PeriodType      string

	// Yen is a whole-yen amount. There are no minor units.
	Yen int64

	Account struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Type     string `json:"type"`
		Balance  Yen    `json:"balance"`
		Color    string `json:"color,omitempty"`
		MemberID string `json:"memberId,omitempty"`
		Order    int    `json:"order"`
	}

	// PaymentMethod is a card-like funding source. The cycle parameters are set
	// only for BillingMonthly methods.
	PaymentMethod struct {
		ID                 string      `json:"id"`
		Name               string      `json:"name"`
		Type               string      `json:"type"`
		BillingKind        BillingKind `json:"billingType"`
		AccountID          string      `json:"linkedAccountId,omitempty"`
		ClosingDay         *int        `json:"closingDay,omitempty"`
		PaymentDay         *int        `json:"paymentDay,omitempty"`
		PaymentMonthOffset *int        `json:"paymentMonthOffset,omitempty"`
	}

	Transaction struct {
		ID              string          `json:"id"`
		Type            TransactionType `json:"type"`
		Amount          Yen             `json:"amount"`
		Date            Date            `json:"date"`
		CategoryID      string          `json:"categoryId,omitempty"`
		AccountID       string          `json:"accountId,omitempty"`
		PaymentMethodID string          `json:"paymentMethodId,omitempty"`
		Memo            string          `json:"memo,omitempty"`
		SettledAt       *time.Time      `json:"settledAt,omitempty"`
	}

	// RecurringPayment recurs indefinitely every PeriodValue units of PeriodType,
	// counted from Anchor.
	RecurringPayment struct {
		ID               string          `json:"id"`
		Name             string          `json:"name"`
		Type             TransactionType `json:"type"`
		Amount           Yen             `json:"amount"`
		PeriodType       PeriodType      `json:"periodType"`
		PeriodValue      int             `json:"periodValue"`
		Anchor           Date            `json:"anchor"`
		CategoryID       string          `json:"categoryId,omitempty"`
		AccountID        string          `json:"accountId,omitempty"`
		PaymentMethodID  string          `json:"paymentMethodId,omitempty"`
		MonthlyOverrides map[Month]Yen   `json:"monthlyOverrides,omitempty"`
	}

	SavingsGoal struct {
		ID               string        `json:"id"`
		Name             string        `json:"name"`
		TargetAmount     Yen           `json:"targetAmount"`
		StartMonth       Month         `json:"startMonth"`
		TargetDate       Date          `json:"targetDate"`
		ExcludedMonths   []Month       `json:"excludedMonths,omitempty"`
		MonthlyOverrides map[Month]Yen `json:"monthlyOverrides,omitempty"`
		Icon             string        `json:"icon,omitempty"`
		Color            string        `json:"color,omitempty"`
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyName            = errors.New("empty name")
	ErrInvalidType          = errors.New("invalid transaction type")
	ErrInvalidBillingKind   = errors.New("invalid billing kind")
	ErrMissingCycleParams   = errors.New("monthly billing requires closing day, payment day and payment month offset")
	ErrUnexpectedCycleParam = errors.New("cycle parameters are only allowed for monthly billing")
	ErrInvalidDay           = errors.New("invalid day")
	ErrInvalidOffset        = errors.New("invalid payment month offset")
	ErrInvalidPeriod        = errors.New("invalid recurrence period")
	ErrMissingAnchor        = errors.New("recurrence with cadence above one requires an anchor date")
	ErrInvalidGoalRange     = errors.New("savings goal starts after its target month")
)

// Signed returns the amount with expense positive and income negative, the sign
// convention used for obligation totals.
func Signed(t TransactionType, amount Yen) Yen {
	if t == Income {
		return -amount
	}
	return amount
}

func (y Yen) Validate() error {
	if y <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

// RecordID and WithRecordID let storage assign identifiers generically.
func (a Account) RecordID() string { return a.ID }

func (a Account) WithRecordID(id string) Account {
	a.ID = id
	return a
}

func (p PaymentMethod) RecordID() string { return p.ID }

func (p PaymentMethod) WithRecordID(id string) PaymentMethod {
	p.ID = id
	return p
}

func (t Transaction) RecordID() string { return t.ID }

func (t Transaction) WithRecordID(id string) Transaction {
	t.ID = id
	return t
}

func (r RecurringPayment) RecordID() string { return r.ID }

func (r RecurringPayment) WithRecordID(id string) RecurringPayment {
	r.ID = id
	return r
}

func (g SavingsGoal) RecordID() string { return g.ID }

func (g SavingsGoal) WithRecordID(id string) SavingsGoal {
	g.ID = id
	return g
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// IsMonthly reports whether purchases on the method are deferred to a card statement.
func (p PaymentMethod) IsMonthly() bool {
	return p.BillingKind == BillingMonthly
}

// CycleParams returns closing day, payment day and payment month offset.
// ok is false unless the method is monthly and all three are present and in range.
func (p PaymentMethod) CycleParams() (closingDay, paymentDay, offset int, ok bool) {
	if !p.IsMonthly() || p.ClosingDay == nil || p.PaymentDay == nil || p.PaymentMonthOffset == nil {
		return 0, 0, 0, false
	}
	closingDay, paymentDay, offset = *p.ClosingDay, *p.PaymentDay, *p.PaymentMonthOffset
	if closingDay < 1 || closingDay > 31 || paymentDay < 1 || paymentDay > 31 || offset < 0 {
		return 0, 0, 0, false
	}
	return closingDay, paymentDay, offset, true
}

func (p PaymentMethod) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	switch p.BillingKind {
	case BillingImmediate:
		if p.ClosingDay != nil || p.PaymentDay != nil || p.PaymentMonthOffset != nil {
			return ErrUnexpectedCycleParam
		}
		return nil
	case BillingMonthly:
		if p.ClosingDay == nil || p.PaymentDay == nil || p.PaymentMonthOffset == nil {
			return ErrMissingCycleParams
		}
		if *p.ClosingDay < 1 || *p.ClosingDay > 31 || *p.PaymentDay < 1 || *p.PaymentDay > 31 {
			return ErrInvalidDay
		}
		if *p.PaymentMonthOffset < 0 {
			return ErrInvalidOffset
		}
		return nil
	default:
		return ErrInvalidBillingKind
	}
}

// IsSettled reports whether the transaction has been resolved against its funding account.
func (t Transaction) IsSettled() bool {
	return t.SettledAt != nil
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return errors.New("invalid date: " + err.Error())
	}
	return nil
}

func (r RecurringPayment) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	switch r.PeriodType {
	case PeriodMonths, PeriodDays:
	default:
		return ErrInvalidPeriod
	}
	if r.PeriodValue < 1 {
		return ErrInvalidPeriod
	}
	if r.Anchor.IsZero() && r.PeriodValue > 1 {
		return ErrMissingAnchor
	}
	for m := range r.MonthlyOverrides {
		if !m.Valid() {
			return ErrInvalidMonthString
		}
	}
	return nil
}

// TargetMonth is the month of the goal's target date.
func (g SavingsGoal) TargetMonth() Month {
	if g.TargetDate.IsZero() {
		return ""
	}
	return g.TargetDate.Key()
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if !g.StartMonth.Valid() {
		return errors.New("invalid start month: " + string(g.StartMonth))
	}
	if err := g.TargetDate.Validate(); err != nil {
		return errors.New("invalid target date: " + err.Error())
	}
	if g.StartMonth > g.TargetMonth() {
		return ErrInvalidGoalRange
	}
	for _, m := range g.ExcludedMonths {
		if !m.Valid() {
			return ErrInvalidMonthString
		}
	}
	return nil
}

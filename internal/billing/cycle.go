// Package billing maps purchases on deferred-billing payment methods onto card
// statements: which billing cycle a purchase falls into, in which month that cycle
// is paid, and on which day.
//
// Every function returns ok=false when the payment method is not monthly or its
// cycle parameters are incomplete. That is "not applicable", not an error.
package billing

import "kakeibo/internal/core"

// Cycle is the inclusive purchase window of one card statement.
type Cycle struct {
	Start core.Date
	End   core.Date
}

// Contains reports whether d falls within the cycle, bounds included.
func (c Cycle) Contains(d core.Date) bool {
	return !d.Before(c.Start) && !d.After(c.End)
}

// ClosingMonth returns the month whose closing day ends the cycle containing date.
// A cycle runs from the day after the previous closing day through the closing day.
func ClosingMonth(date core.Date, pm core.PaymentMethod) (core.Month, bool) {
	closingDay, _, _, ok := pm.CycleParams()
	if !ok {
		return "", false
	}
	month := date.Key()
	if date.Day() > month.Day(closingDay).Day() {
		month = month.Next()
	}
	return month, true
}

// PaymentMonth returns the month in which a purchase made on date is paid.
func PaymentMonth(date core.Date, pm core.PaymentMethod) (core.Month, bool) {
	closing, ok := ClosingMonth(date, pm)
	if !ok {
		return "", false
	}
	_, _, offset, _ := pm.CycleParams()
	return closing.AddMonths(offset), true
}

// PaymentDate returns the concrete day a purchase made on date is debited.
func PaymentDate(date core.Date, pm core.PaymentMethod) (core.Date, bool) {
	month, ok := PaymentMonth(date, pm)
	if !ok {
		return core.Date{}, false
	}
	return ActualPaymentDate(month, pm)
}

// ActualPaymentDate returns the payment day within paymentMonth, clamped to the
// month's length.
func ActualPaymentDate(paymentMonth core.Month, pm core.PaymentMethod) (core.Date, bool) {
	_, paymentDay, _, ok := pm.CycleParams()
	if !ok || !paymentMonth.Valid() {
		return core.Date{}, false
	}
	return paymentMonth.Day(paymentDay), true
}

// Period returns the billing cycle whose total is paid in paymentMonth.
func Period(paymentMonth core.Month, pm core.PaymentMethod) (Cycle, bool) {
	closingDay, _, offset, ok := pm.CycleParams()
	if !ok || !paymentMonth.Valid() {
		return Cycle{}, false
	}
	closing := paymentMonth.AddMonths(-offset)
	return Cycle{
		Start: closing.Prev().Day(closingDay).AddDays(1),
		End:   closing.Day(closingDay),
	}, true
}

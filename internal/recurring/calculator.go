package recurring

import "kakeibo/internal/core"

// EffectiveAmount returns the month's override if one exists, otherwise the base amount.
func EffectiveAmount(rp core.RecurringPayment, month core.Month) core.Yen {
	if amount, ok := rp.MonthlyOverrides[month]; ok {
		return amount
	}
	return rp.Amount
}

// anchorFor returns the series anchor. Records without a stored anchor are anchored at
// the first day of the reference month, so cadence-1 records fire on the 1st of every
// month. NextDate never calls it for anchorless records with a longer cadence.
func anchorFor(rp core.RecurringPayment, ref core.Date) core.Date {
	if !rp.Anchor.IsZero() {
		return rp.Anchor
	}
	return ref.Key().FirstDay()
}

// NextDate returns the first date on or after from on which rp occurs.
// ok is false when the record has no usable cadence, including an anchorless
// record repeating less often than every period: without an anchor its phase is unknown.
func NextDate(rp core.RecurringPayment, from core.Date) (core.Date, bool) {
	if rp.PeriodValue < 1 || from.IsZero() {
		return core.Date{}, false
	}
	if rp.Anchor.IsZero() && rp.PeriodValue > 1 {
		return core.Date{}, false
	}
	cadence, err := GetCadence(rp.PeriodType)
	if err != nil {
		return core.Date{}, false
	}
	return cadence.Next(anchorFor(rp, from), from, rp.PeriodValue), true
}

// OccursIn reports whether rp has at least one occurrence within month.
func OccursIn(rp core.RecurringPayment, month core.Month) bool {
	if !month.Valid() {
		return false
	}
	next, ok := NextDate(rp, month.FirstDay())
	return ok && !next.After(month.LastDay())
}

// Occurrences lists every occurrence of rp within month in ascending order.
func Occurrences(rp core.RecurringPayment, month core.Month) []core.Date {
	if !month.Valid() {
		return nil
	}
	var dates []core.Date
	last := month.LastDay()
	from := month.FirstDay()
	for {
		next, ok := NextDate(rp, from)
		if !ok || next.After(last) {
			return dates
		}
		dates = append(dates, next)
		from = next.AddDays(1)
	}
}

// ForMonth returns the records active in the given calendar month, in input order.
func ForMonth(rps []core.RecurringPayment, year, month int) []core.RecurringPayment {
	target := core.NewMonth(year, month)
	var active []core.RecurringPayment
	for _, rp := range rps {
		if OccursIn(rp, target) {
			active = append(active, rp)
		}
	}
	return active
}

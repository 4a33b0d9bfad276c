// Package recurring computes when recurring obligations occur and how much they
// amount to in a given month.
//
// Each period type has its own Cadence strategy, looked up through a registry so
// that new period types can be added without touching the calculator.
package recurring

import (
	"fmt"

	"kakeibo/internal/core"
)

// Cadence is the strategy interface for one period type.
type Cadence interface {
	// Next returns the first occurrence on or after from for a series that starts at
	// anchor and repeats every n units.
	Next(anchor, from core.Date, n int) core.Date
}

// MonthlyCadence repeats on the anchor's day of month every n months. Each occurrence
// is computed from the anchor, not from the previous occurrence, so a series anchored
// on the 31st lands on the 30th in April and back on the 31st in May.
type MonthlyCadence struct{}

// Next implements Cadence.
func (MonthlyCadence) Next(anchor, from core.Date, n int) core.Date {
	if !from.After(anchor) {
		return anchor
	}
	start := anchor.Key()
	k := core.MonthsBetween(start, from.Key()) / n
	occurrence := start.AddMonths(k * n).Day(anchor.Day())
	for occurrence.Before(from) {
		k++
		occurrence = start.AddMonths(k * n).Day(anchor.Day())
	}
	return occurrence
}

// DailyCadence repeats every n days from the anchor.
type DailyCadence struct{}

// Next implements Cadence.
func (DailyCadence) Next(anchor, from core.Date, n int) core.Date {
	if !from.After(anchor) {
		return anchor
	}
	elapsed := from.DaysSince(anchor)
	steps := (elapsed + n - 1) / n
	return anchor.AddDays(steps * n)
}

var cadences = map[core.PeriodType]Cadence{
	core.PeriodMonths: MonthlyCadence{},
	core.PeriodDays:   DailyCadence{},
}

// GetCadence returns the strategy registered for a period type.
func GetCadence(period core.PeriodType) (Cadence, error) {
	c, ok := cadences[period]
	if !ok {
		return nil, fmt.Errorf("unknown period type: %s", period)
	}
	return c, nil
}

// RegisterCadence adds or replaces the strategy for a period type.
func RegisterCadence(period core.PeriodType, c Cadence) {
	cadences[period] = c
}

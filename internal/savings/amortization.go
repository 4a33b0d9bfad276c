// Package savings spreads a fixed savings target evenly across the active months of
// a goal and tracks how much has been set aside by a given month.
//
// Each month's share is rounded up, so the shares of all active months can exceed
// the target by up to activeMonths-1 yen. That surplus is kept as is.
package savings

import (
	"slices"

	"kakeibo/internal/core"
)

// IsMonthExcluded reports whether month is explicitly skipped by the goal.
func IsMonthExcluded(goal core.SavingsGoal, month core.Month) bool {
	return slices.Contains(goal.ExcludedMonths, month)
}

// ActiveMonths returns the goal's months from start to target month, minus exclusions.
func ActiveMonths(goal core.SavingsGoal) []core.Month {
	return activeMonthsThrough(goal, goal.TargetMonth())
}

func activeMonthsThrough(goal core.SavingsGoal, end core.Month) []core.Month {
	var active []core.Month
	for _, m := range core.MonthsInRange(goal.StartMonth, end) {
		if !IsMonthExcluded(goal, m) {
			active = append(active, m)
		}
	}
	return active
}

// MonthlyAmount returns the even per-month share, ceil(target / activeMonths).
// A goal with no active months is treated as a single undivided payment.
func MonthlyAmount(goal core.SavingsGoal) core.Yen {
	n := core.Yen(len(ActiveMonths(goal)))
	if n == 0 {
		return goal.TargetAmount
	}
	return (goal.TargetAmount + n - 1) / n
}

// EffectiveMonthlyAmount returns the month's override if one exists, otherwise the
// even share.
func EffectiveMonthlyAmount(goal core.SavingsGoal, month core.Month) core.Yen {
	if amount, ok := goal.MonthlyOverrides[month]; ok {
		return amount
	}
	return MonthlyAmount(goal)
}

// AccumulatedAmount sums the effective amounts of every active month from the start
// month through the earlier of asOf and the target month.
func AccumulatedAmount(goal core.SavingsGoal, asOf core.Month) core.Yen {
	end := goal.TargetMonth()
	if asOf < end {
		end = asOf
	}
	share := MonthlyAmount(goal)
	var total core.Yen
	for _, m := range activeMonthsThrough(goal, end) {
		if amount, ok := goal.MonthlyOverrides[m]; ok {
			total += amount
			continue
		}
		total += share
	}
	return total
}

// Status summarises a goal as of a month.
type Status struct {
	Goal         core.SavingsGoal
	AsOf         core.Month
	MonthlyShare core.Yen
	ActiveMonths int
	Accumulated  core.Yen
	Remaining    core.Yen
	Reached      bool
}

// Progress reports how far a goal has come by asOf. Remaining never goes below zero.
func Progress(goal core.SavingsGoal, asOf core.Month) Status {
	accumulated := AccumulatedAmount(goal, asOf)
	remaining := goal.TargetAmount - accumulated
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Goal:         goal,
		AsOf:         asOf,
		MonthlyShare: MonthlyAmount(goal),
		ActiveMonths: len(ActiveMonths(goal)),
		Accumulated:  accumulated,
		Remaining:    remaining,
		Reached:      accumulated >= goal.TargetAmount,
	}
}

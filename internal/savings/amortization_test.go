package savings

import (
	"testing"

	"kakeibo/internal/core"
)

func trip() core.SavingsGoal {
	return core.SavingsGoal{
		ID:           "goal-trip",
		Name:         "Trip",
		TargetAmount: 100000,
		StartMonth:   "2026-01",
		TargetDate:   core.NewDate(2026, 3, 20),
	}
}

func TestMonthlyAmount(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*core.SavingsGoal)
		expected core.Yen
	}{
		{"three months rounds up", func(*core.SavingsGoal) {}, 33334},
		{"exclusion spreads over remaining months", func(g *core.SavingsGoal) {
			g.ExcludedMonths = []core.Month{"2026-02"}
		}, 50000},
		{"all months excluded pays in one shot", func(g *core.SavingsGoal) {
			g.ExcludedMonths = []core.Month{"2026-01", "2026-02", "2026-03"}
		}, 100000},
		{"start after target pays in one shot", func(g *core.SavingsGoal) {
			g.StartMonth = "2026-04"
		}, 100000},
		{"even split", func(g *core.SavingsGoal) {
			g.TargetAmount = 90000
		}, 30000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := trip()
			tt.mutate(&goal)
			if got := MonthlyAmount(goal); got != tt.expected {
				t.Errorf("MonthlyAmount() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestAccumulatedAmount(t *testing.T) {
	goal := trip()
	tests := []struct {
		asOf     core.Month
		expected core.Yen
	}{
		{"2025-12", 0},
		{"2026-01", 33334},
		{"2026-02", 66668},
		{"2026-03", 100002},
		{"2026-09", 100002},
	}

	for _, tt := range tests {
		t.Run(string(tt.asOf), func(t *testing.T) {
			if got := AccumulatedAmount(goal, tt.asOf); got != tt.expected {
				t.Errorf("AccumulatedAmount(%s) = %d, want %d", tt.asOf, got, tt.expected)
			}
		})
	}
}

func TestAccumulatedAmountWithExclusion(t *testing.T) {
	goal := trip()
	goal.ExcludedMonths = []core.Month{"2026-02"}

	if got := AccumulatedAmount(goal, "2026-01"); got != 50000 {
		t.Errorf("through January = %d, want 50000", got)
	}
	if got := AccumulatedAmount(goal, "2026-02"); got != 50000 {
		t.Errorf("excluded February must contribute nothing, got %d", got)
	}
	if got := AccumulatedAmount(goal, "2026-03"); got != 100000 {
		t.Errorf("through March = %d, want 100000", got)
	}
	if !IsMonthExcluded(goal, "2026-02") || IsMonthExcluded(goal, "2026-03") {
		t.Error("IsMonthExcluded() disagrees with ExcludedMonths")
	}
}

func TestEffectiveMonthlyAmount(t *testing.T) {
	goal := trip()
	goal.MonthlyOverrides = map[core.Month]core.Yen{"2026-02": 10000}

	if got := EffectiveMonthlyAmount(goal, "2026-02"); got != 10000 {
		t.Errorf("override month = %d, want 10000", got)
	}
	if got := EffectiveMonthlyAmount(goal, "2026-03"); got != 33334 {
		t.Errorf("plain month = %d, want 33334", got)
	}
	if got := AccumulatedAmount(goal, "2026-03"); got != 33334+10000+33334 {
		t.Errorf("accumulated with override = %d", got)
	}
}

func TestProgress(t *testing.T) {
	goal := trip()

	mid := Progress(goal, "2026-02")
	if mid.Accumulated != 66668 || mid.Remaining != 33332 || mid.Reached {
		t.Errorf("unexpected mid progress: %+v", mid)
	}
	if mid.ActiveMonths != 3 || mid.MonthlyShare != 33334 {
		t.Errorf("unexpected share: %+v", mid)
	}

	done := Progress(goal, "2026-03")
	if done.Remaining != 0 || !done.Reached {
		t.Errorf("expected goal reached with no remaining, got %+v", done)
	}
}

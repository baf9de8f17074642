package store

import "github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"

// ComputeTotals derives the budget view from the current snapshot. It is a
// pure read: no remote calls, no state changes, no messages.
func (s *Store) ComputeTotals() Totals {
	st := s.Snapshot()
	now := s.now()

	var totals Totals
	for _, it := range st.Items {
		totals.Total += it.Amount
		if !it.IsPaid {
			totals.Pending += it.Amount
		}
	}

	totals.DaysLeft = core.RemainingDaysIncludingToday(now)
	totals.DailyBase = s.dailyTarget * int64(totals.DaysLeft)
	if st.Household != nil {
		totals.DailyAdjustment = st.Household.DailyAdjustment
	}
	totals.DailyRemaining = totals.DailyBase + totals.DailyAdjustment

	return totals
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
)

// ApplyRollover performs the monthly reset for one household: advances its
// month token and zeroes the daily adjustment, then batch-resets isPaid on
// every expense item and purchasedQty on every shopping item, stamping a
// fresh updatedAt. The three remote write steps run in order and are not
// transactional; on failure the already-applied writes stay and the caller
// gets the error. household is updated in place as the remote writes land.
//
// Shared by the state store's load path and the rollover worker.
func ApplyRollover(ctx context.Context, rs records.Store, household *core.Household, now time.Time) error {
	monthID := core.MonthID(now)

	_, err := rs.Update(ctx, records.CollectionHouseholds, household.ID, records.Fields{
		"monthId":         monthID,
		"dailyAdjustment": int64(0),
	})
	if err != nil {
		return fmt.Errorf("reset household month: %w", err)
	}
	household.MonthID = monthID
	household.DailyAdjustment = 0

	stamp := now.UTC().Format(time.RFC3339)

	items, err := rs.List(ctx, records.CollectionItems,
		records.Eq("householdCode", household.Code), records.Options{MaxRecords: maxItemRecords})
	if err != nil {
		return fmt.Errorf("list items for reset: %w", err)
	}
	if len(items) > 0 {
		updates := make([]records.Update, 0, len(items))
		for _, it := range items {
			updates = append(updates, records.Update{
				ID:     it.ID,
				Fields: records.Fields{"isPaid": false, "updatedAt": stamp},
			})
		}
		if _, err := rs.BatchUpdate(ctx, records.CollectionItems, updates); err != nil {
			return fmt.Errorf("reset items: %w", err)
		}
	}

	shopping, err := rs.List(ctx, records.CollectionShoppingItems,
		records.Eq("householdCode", household.Code), records.Options{MaxRecords: maxItemRecords})
	if err != nil {
		return fmt.Errorf("list shopping items for reset: %w", err)
	}
	if len(shopping) > 0 {
		updates := make([]records.Update, 0, len(shopping))
		for _, si := range shopping {
			updates = append(updates, records.Update{
				ID:     si.ID,
				Fields: records.Fields{"purchasedQty": int64(0), "updatedAt": stamp},
			})
		}
		if _, err := rs.BatchUpdate(ctx, records.CollectionShoppingItems, updates); err != nil {
			return fmt.Errorf("reset shopping items: %w", err)
		}
	}

	return nil
}

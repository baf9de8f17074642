package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
)

// LoadHouseholdAndItems fetches the household and both item lists, replacing
// the in-memory copies. With forceResetCheck, a stale month token triggers
// the monthly rollover first: the household's monthId advances and
// dailyAdjustment drops to zero, every item's isPaid resets, every shopping
// item's purchasedQty resets. Rollover is idempotent per month boundary and
// has no partial-failure rollback; a failure leaves whatever writes already
// landed and surfaces the error.
//
// No-op when no session is active.
func (s *Store) LoadHouseholdAndItems(ctx context.Context, forceResetCheck bool) {
	sess := s.Session()
	if sess == nil {
		return
	}
	s.begin()
	err := s.load(ctx, sess.HouseholdCode, forceResetCheck)
	s.finish(err, "", "No se pudo cargar el hogar.")
}

func (s *Store) load(ctx context.Context, householdCode string, forceResetCheck bool) error {
	households, err := s.records.List(ctx, records.CollectionHouseholds,
		records.Eq("householdCode", householdCode), records.Options{MaxRecords: maxLookupRecords})
	if err != nil {
		return fmt.Errorf("fetch household: %w", err)
	}
	if len(households) == 0 {
		return core.ErrHouseholdNotFound
	}

	rec := households[0]
	household := core.Household{
		ID:              rec.ID,
		Code:            rec.Fields.String("householdCode"),
		MonthID:         rec.Fields.String("monthId"),
		DailyAdjustment: rec.Fields.Int("dailyAdjustment"),
	}
	if household.Code == "" {
		household.Code = householdCode
	}

	now := s.now()
	if forceResetCheck && household.MonthID != core.MonthID(now) {
		slog.InfoContext(ctx, "Month boundary crossed, applying rollover",
			"household_code", household.Code,
			"stored_month", household.MonthID,
			"current_month", core.MonthID(now))
		if err := ApplyRollover(ctx, s.records, &household, now); err != nil {
			return err
		}
		s.publish(ctx, EventRollover)
	}

	items, err := s.fetchItems(ctx, householdCode)
	if err != nil {
		return err
	}
	shopping, err := s.fetchShoppingItems(ctx, householdCode)
	if err != nil {
		return err
	}

	s.setState(func(st *State) {
		st.Household = &household
		st.Items = items
		st.ShoppingItems = shopping
	})
	return nil
}

func (s *Store) fetchItems(ctx context.Context, householdCode string) ([]core.Item, error) {
	recs, err := s.records.List(ctx, records.CollectionItems,
		records.Eq("householdCode", householdCode), records.Options{MaxRecords: maxItemRecords})
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	items := make([]core.Item, 0, len(recs))
	for _, r := range recs {
		items = append(items, itemFromRecord(r, householdCode))
	}
	sortItemsByName(items)
	return items, nil
}

func (s *Store) fetchShoppingItems(ctx context.Context, householdCode string) ([]core.ShoppingItem, error) {
	recs, err := s.records.List(ctx, records.CollectionShoppingItems,
		records.Eq("householdCode", householdCode), records.Options{MaxRecords: maxItemRecords})
	if err != nil {
		return nil, fmt.Errorf("fetch shopping items: %w", err)
	}
	items := make([]core.ShoppingItem, 0, len(recs))
	for _, r := range recs {
		items = append(items, shoppingItemFromRecord(r, householdCode))
	}
	sortShoppingByName(items)
	return items, nil
}

func itemFromRecord(r records.Record, householdCode string) core.Item {
	code := r.Fields.String("householdCode")
	if code == "" {
		code = householdCode
	}
	return core.Item{
		ID:            r.ID,
		HouseholdCode: code,
		Name:          r.Fields.String("name"),
		Amount:        r.Fields.Int("amount"),
		IsPaid:        r.Fields.Bool("isPaid"),
	}
}

func shoppingItemFromRecord(r records.Record, householdCode string) core.ShoppingItem {
	code := r.Fields.String("householdCode")
	if code == "" {
		code = householdCode
	}
	return core.ShoppingItem{
		ID:            r.ID,
		HouseholdCode: code,
		Name:          r.Fields.String("name"),
		TargetQty:     r.Fields.Int("targetQty"),
		PurchasedQty:  r.Fields.Int("purchasedQty"),
	}
}

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
)

// ItemPatch is a partial update; only non-nil fields are applied.
type ItemPatch struct {
	Name   *string
	Amount *int64
	IsPaid *bool
}

// AddItem validates and creates an expense item, then inserts it locally
// keeping the list sorted. Validation failures never reach the record
// service.
func (s *Store) AddItem(ctx context.Context, name string, amount int64) {
	if s.Session() == nil {
		return
	}
	s.begin()
	err := s.addItem(ctx, name, amount)
	s.finish(err, "Ítem agregado.", "No se pudo agregar el ítem.")
}

func (s *Store) addItem(ctx context.Context, name string, amount int64) error {
	sess := s.Session()
	if sess == nil {
		return nil
	}
	item := core.Item{
		HouseholdCode: sess.HouseholdCode,
		Name:          strings.TrimSpace(name),
		Amount:        amount,
	}
	if err := item.Validate(); err != nil {
		return err
	}

	rec, err := s.records.Create(ctx, records.CollectionItems, records.Fields{
		"householdCode": item.HouseholdCode,
		"name":          item.Name,
		"amount":        item.Amount,
		"isPaid":        false,
		"updatedAt":     s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	item.ID = rec.ID

	s.setState(func(st *State) {
		st.Items = append(st.Items, item)
		sortItemsByName(st.Items)
	})
	s.publish(ctx, EventItemsChanged)
	return nil
}

// UpdateItem applies a partial patch remotely and merges it locally,
// re-sorting in case the name changed.
func (s *Store) UpdateItem(ctx context.Context, itemID string, patch ItemPatch) {
	s.begin()
	err := s.updateItem(ctx, itemID, patch)
	s.finish(err, "Cambios guardados.", "No se pudo actualizar el ítem.")
}

func (s *Store) updateItem(ctx context.Context, itemID string, patch ItemPatch) error {
	fields := records.Fields{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return core.ErrEmptyItemName
		}
		fields["name"] = name
	}
	if patch.Amount != nil {
		if *patch.Amount <= 0 {
			return core.ErrInvalidAmount
		}
		fields["amount"] = *patch.Amount
	}
	if patch.IsPaid != nil {
		fields["isPaid"] = *patch.IsPaid
	}
	fields["updatedAt"] = s.now().UTC().Format(time.RFC3339)

	if _, err := s.records.Update(ctx, records.CollectionItems, itemID, fields); err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	s.setState(func(st *State) {
		for i := range st.Items {
			if st.Items[i].ID != itemID {
				continue
			}
			if patch.Name != nil {
				st.Items[i].Name = strings.TrimSpace(*patch.Name)
			}
			if patch.Amount != nil {
				st.Items[i].Amount = *patch.Amount
			}
			if patch.IsPaid != nil {
				st.Items[i].IsPaid = *patch.IsPaid
			}
			break
		}
		sortItemsByName(st.Items)
	})
	s.publish(ctx, EventItemsChanged)
	return nil
}

// RemoveItem deletes remotely then locally.
func (s *Store) RemoveItem(ctx context.Context, itemID string) {
	s.begin()
	err := s.removeItem(ctx, itemID)
	s.finish(err, "Ítem eliminado.", "No se pudo eliminar el ítem.")
}

func (s *Store) removeItem(ctx context.Context, itemID string) error {
	if _, err := s.records.Delete(ctx, records.CollectionItems, itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	s.setState(func(st *State) {
		kept := st.Items[:0]
		for _, it := range st.Items {
			if it.ID != itemID {
				kept = append(kept, it)
			}
		}
		st.Items = kept
	})
	s.publish(ctx, EventItemsChanged)
	return nil
}

// UpdateDailyAdjustment persists a new signed adjustment for the loaded
// household. No-op when no household is loaded.
func (s *Store) UpdateDailyAdjustment(ctx context.Context, value int64) {
	s.mu.Lock()
	loaded := s.state.Household != nil
	s.mu.Unlock()
	if !loaded {
		return
	}
	s.begin()
	err := s.updateDailyAdjustment(ctx, value)
	s.finish(err, "Diario actualizado.", "No se pudo actualizar el diario.")
}

func (s *Store) updateDailyAdjustment(ctx context.Context, value int64) error {
	s.mu.Lock()
	household := s.state.Household
	s.mu.Unlock()
	if household == nil {
		return nil
	}

	_, err := s.records.Update(ctx, records.CollectionHouseholds, household.ID,
		records.Fields{"dailyAdjustment": value})
	if err != nil {
		return fmt.Errorf("update daily adjustment: %w", err)
	}

	s.setState(func(st *State) {
		if st.Household != nil {
			st.Household.DailyAdjustment = value
		}
	})
	s.publish(ctx, EventHouseholdChanged)
	return nil
}

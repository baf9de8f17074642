package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/records"
)

// ShoppingPatch is a partial update applied to a shopping item. The merged
// result is validated and its purchased quantity clamped before anything is
// written.
type ShoppingPatch struct {
	Name         *string
	TargetQty    *int64
	PurchasedQty *int64
}

// AddShoppingItem validates and creates a shopping list entry.
func (s *Store) AddShoppingItem(ctx context.Context, name string, targetQty int64) {
	if s.Session() == nil {
		return
	}
	s.begin()
	err := s.addShoppingItem(ctx, name, targetQty)
	s.finish(err, "Producto agregado.", "No se pudo agregar el producto.")
}

func (s *Store) addShoppingItem(ctx context.Context, name string, targetQty int64) error {
	sess := s.Session()
	if sess == nil {
		return nil
	}
	item := core.ShoppingItem{
		HouseholdCode: sess.HouseholdCode,
		Name:          strings.TrimSpace(name),
		TargetQty:     targetQty,
	}
	if err := item.Validate(); err != nil {
		return err
	}
	item = item.Clamped()

	rec, err := s.records.Create(ctx, records.CollectionShoppingItems, records.Fields{
		"householdCode": item.HouseholdCode,
		"name":          item.Name,
		"targetQty":     item.TargetQty,
		"purchasedQty":  item.PurchasedQty,
		"updatedAt":     s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("create shopping item: %w", err)
	}
	item.ID = rec.ID

	s.setState(func(st *State) {
		st.ShoppingItems = append(st.ShoppingItems, item)
		sortShoppingByName(st.ShoppingItems)
	})
	s.publish(ctx, EventShoppingChanged)
	return nil
}

// UpdateShoppingItem merges patch into the current item, validates the
// result and writes the full merged record. Lowering the target below the
// purchased quantity clamps the purchased quantity down with it.
func (s *Store) UpdateShoppingItem(ctx context.Context, itemID string, patch ShoppingPatch) {
	s.begin()
	err := s.updateShoppingItem(ctx, itemID, patch)
	s.finish(err, "Producto actualizado.", "No se pudo actualizar el producto.")
}

func (s *Store) updateShoppingItem(ctx context.Context, itemID string, patch ShoppingPatch) error {
	current, ok := s.findShoppingItem(itemID)
	if !ok {
		return core.ErrShoppingItemNotFound
	}

	merged := current
	if patch.Name != nil {
		merged.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.TargetQty != nil {
		merged.TargetQty = *patch.TargetQty
	}
	if patch.PurchasedQty != nil {
		merged.PurchasedQty = *patch.PurchasedQty
	}
	if err := merged.Validate(); err != nil {
		return err
	}
	merged = merged.Clamped()

	return s.writeShoppingItem(ctx, merged)
}

// RecordPurchase adds delta units to a shopping item. The result never
// exceeds the target nor drops below zero, so buying more than what is
// missing just completes the item.
func (s *Store) RecordPurchase(ctx context.Context, itemID string, delta int64) {
	s.begin()
	err := s.recordPurchase(ctx, itemID, delta)
	s.finish(err, "Compra registrada.", "No se pudo registrar la compra.")
}

func (s *Store) recordPurchase(ctx context.Context, itemID string, delta int64) error {
	if delta <= 0 {
		return core.ErrInvalidDelta
	}
	current, ok := s.findShoppingItem(itemID)
	if !ok {
		return core.ErrShoppingItemNotFound
	}

	current.PurchasedQty = core.ClampInt(current.PurchasedQty+delta, 0, current.TargetQty)
	return s.writeShoppingItem(ctx, current)
}

// RemoveShoppingItem deletes remotely then locally.
func (s *Store) RemoveShoppingItem(ctx context.Context, itemID string) {
	s.begin()
	err := s.removeShoppingItem(ctx, itemID)
	s.finish(err, "Producto eliminado.", "No se pudo eliminar el producto.")
}

func (s *Store) removeShoppingItem(ctx context.Context, itemID string) error {
	if _, err := s.records.Delete(ctx, records.CollectionShoppingItems, itemID); err != nil {
		return fmt.Errorf("delete shopping item: %w", err)
	}
	s.setState(func(st *State) {
		kept := st.ShoppingItems[:0]
		for _, it := range st.ShoppingItems {
			if it.ID != itemID {
				kept = append(kept, it)
			}
		}
		st.ShoppingItems = kept
	})
	s.publish(ctx, EventShoppingChanged)
	return nil
}

func (s *Store) findShoppingItem(itemID string) (core.ShoppingItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.state.ShoppingItems {
		if it.ID == itemID {
			return it, true
		}
	}
	return core.ShoppingItem{}, false
}

// writeShoppingItem persists the full merged item and replaces it in the
// local list.
func (s *Store) writeShoppingItem(ctx context.Context, item core.ShoppingItem) error {
	_, err := s.records.Update(ctx, records.CollectionShoppingItems, item.ID, records.Fields{
		"name":         item.Name,
		"targetQty":    item.TargetQty,
		"purchasedQty": item.PurchasedQty,
		"updatedAt":    s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("update shopping item: %w", err)
	}

	s.setState(func(st *State) {
		for i := range st.ShoppingItems {
			if st.ShoppingItems[i].ID == item.ID {
				st.ShoppingItems[i] = item
				break
			}
		}
		sortShoppingByName(st.ShoppingItems)
	})
	s.publish(ctx, EventShoppingChanged)
	return nil
}

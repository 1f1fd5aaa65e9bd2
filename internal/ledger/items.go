package ledger

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/officeledger/internal/models"
)

const DefaultItemImage = "https://cdn.officeledger.local/items/default.jpg"

func (l *Ledger) AddItem(ctx context.Context, in NewItem) (models.Item, error) {
	if err := in.Validate(); err != nil {
		return models.Item{}, err
	}

	var item models.Item
	err := l.mutate(ctx, "item.add", func(tx *txn) error {
		item = models.Item{
			ID:           tx.newID("itm"),
			Name:         in.Name,
			Code:         in.Code,
			Category:     in.Category,
			Location:     in.Location,
			Condition:    in.Condition,
			Quantity:     in.Quantity,
			Available:    in.Available,
			Image:        in.Image,
			PurchaseDate: in.PurchaseDate,
			Notes:        in.Notes,
			CreatedAt:    tx.now,
			UpdatedAt:    tx.now,
		}
		if item.Image == "" {
			item.Image = DefaultItemImage
		}
		tx.Items = append(tx.Items, item)
		tx.audit("item.add", "", item.ID, map[string]any{
			"code": item.Code,
			"name": item.Name,
		})
		return nil
	})
	if err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// UpdateItem merges patch into the item and refreshes UpdatedAt. The
// available/quantity relation is left to the caller.
func (l *Ledger) UpdateItem(ctx context.Context, id string, patch ItemPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	return l.mutate(ctx, "item.update", func(tx *txn) error {
		if i := tx.itemIndex(id); i >= 0 {
			it := &tx.Items[i]
			setIf(&it.Name, patch.Name)
			setIf(&it.Code, patch.Code)
			setIf(&it.Category, patch.Category)
			setIf(&it.Location, patch.Location)
			setIf(&it.Condition, patch.Condition)
			setIf(&it.Quantity, patch.Quantity)
			setIf(&it.Available, patch.Available)
			setIf(&it.Image, patch.Image)
			setIf(&it.PurchaseDate, patch.PurchaseDate)
			setIf(&it.Notes, patch.Notes)
			it.UpdatedAt = tx.now
		}
		tx.audit("item.update", "", id, auditPayload(patch))
		return nil
	})
}

// DeleteItem removes the item together with every loan and request that
// references it.
func (l *Ledger) DeleteItem(ctx context.Context, id string) error {
	return l.mutate(ctx, "item.delete", func(tx *txn) error {
		tx.Items = slices.DeleteFunc(tx.Items, func(i models.Item) bool { return i.ID == id })
		tx.Loans = slices.DeleteFunc(tx.Loans, func(l models.Loan) bool { return l.ItemID == id })
		tx.Requests = slices.DeleteFunc(tx.Requests, func(r models.Request) bool { return r.ItemID == id })
		tx.audit("item.delete", "", id, nil)
		return nil
	})
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/models"
)

// CheckOut lends qty units of an item to a user without a request.
func (l *Ledger) CheckOut(ctx context.Context, itemID, userID string, qty int, due *time.Time) (models.Loan, error) {
	var out models.Loan
	err := l.mutate(ctx, "loan.checkOut", func(tx *txn) error {
		if userID == "" {
			return common.Invalid("userId", "is required")
		}
		loan, err := tx.checkOut(itemID, userID, qty, due)
		if err != nil {
			return err
		}
		tx.audit("loan.checkOut", userID, loan.ID, map[string]any{
			"itemId":  itemID,
			"qty":     qty,
			"dueDate": optionalTime(due),
		})
		out = loan
		return nil
	})
	if err != nil {
		return models.Loan{}, err
	}
	return out, nil
}

// CheckIn marks a borrowed loan as returned and puts its units back on the
// shelf.
func (l *Ledger) CheckIn(ctx context.Context, loanID string) (models.Loan, error) {
	var out models.Loan
	err := l.mutate(ctx, "loan.checkIn", func(tx *txn) error {
		i := tx.loanIndex(loanID)
		if i < 0 {
			return fmt.Errorf("loan %s: %w", loanID, common.ErrNotFound)
		}
		loan := &tx.Loans[i]
		if loan.Status == models.LoanReturned {
			return fmt.Errorf("loan %s is already returned: %w", loanID, common.ErrInvalidTransition)
		}

		now := tx.now
		if j := tx.itemIndex(loan.ItemID); j >= 0 {
			tx.Items[j].Available += loan.Qty
			tx.Items[j].UpdatedAt = now
		}
		loan.Status = models.LoanReturned
		loan.DateIn = &now

		tx.audit("loan.checkIn", "", loan.ID, map[string]any{
			"itemId": loan.ItemID,
			"qty":    loan.Qty,
		})
		out = *loan
		return nil
	})
	if err != nil {
		return models.Loan{}, err
	}
	return out, nil
}

// checkOut decrements availability and prepends a borrowed loan. It is
// shared by CheckOut and ApproveRequest.
func (tx *txn) checkOut(itemID, userID string, qty int, due *time.Time) (models.Loan, error) {
	i := tx.itemIndex(itemID)
	if i < 0 {
		return models.Loan{}, fmt.Errorf("item %s: %w", itemID, common.ErrNotFound)
	}
	if qty < 1 {
		return models.Loan{}, common.Invalid("qty", "must be at least 1")
	}
	item := &tx.Items[i]
	if qty > item.Available {
		return models.Loan{}, fmt.Errorf("requested %d of %s, %d available: %w",
			qty, item.Code, item.Available, common.ErrInsufficientStock)
	}

	item.Available -= qty
	item.UpdatedAt = tx.now

	loan := models.Loan{
		ID:      tx.newID("lon"),
		ItemID:  itemID,
		UserID:  userID,
		Qty:     qty,
		DateOut: tx.now,
		Status:  models.LoanBorrowed,
	}
	if due != nil {
		d := due.UTC()
		loan.DueDate = &d
	}
	tx.Loans = append([]models.Loan{loan}, tx.Loans...)
	return loan, nil
}

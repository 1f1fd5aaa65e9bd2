package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/models"
)

// CreateRequest records a pending borrow request. The item must exist and
// currently have at least in.Qty units available.
func (l *Ledger) CreateRequest(ctx context.Context, in NewRequest) (models.Request, error) {
	if err := in.Validate(); err != nil {
		return models.Request{}, err
	}

	var req models.Request
	err := l.mutate(ctx, "request.create", func(tx *txn) error {
		i := tx.itemIndex(in.ItemID)
		if i < 0 {
			return fmt.Errorf("item %s: %w", in.ItemID, common.ErrNotFound)
		}
		if in.Qty > tx.Items[i].Available {
			return fmt.Errorf("requested %d of %s, %d available: %w",
				in.Qty, tx.Items[i].Code, tx.Items[i].Available, common.ErrInsufficientStock)
		}

		req = models.Request{
			ID:        tx.newID("req"),
			ItemID:    in.ItemID,
			UserID:    in.UserID,
			Qty:       in.Qty,
			Note:      in.Note,
			Status:    models.RequestPending,
			CreatedAt: tx.now,
		}
		tx.Requests = append([]models.Request{req}, tx.Requests...)
		tx.audit("request.create", in.UserID, req.ID, map[string]any{
			"itemId": in.ItemID,
			"qty":    in.Qty,
		})
		return nil
	})
	if err != nil {
		return models.Request{}, err
	}
	return req, nil
}

// ApproveRequest turns a pending request into a borrowed loan. Availability
// is checked again because it may have changed since the request was made.
func (l *Ledger) ApproveRequest(ctx context.Context, id, adminID string, due *time.Time) (Approval, error) {
	var out Approval
	err := l.mutate(ctx, "request.approve", func(tx *txn) error {
		r, err := tx.pendingRequest(id)
		if err != nil {
			return err
		}
		loan, err := tx.checkOut(r.ItemID, r.UserID, r.Qty, due)
		if err != nil {
			return err
		}

		now := tx.now
		r.Status = models.RequestApproved
		r.ProcessedAt = &now
		r.ProcessedBy = adminID

		tx.audit("request.approve", adminID, r.ID, map[string]any{
			"loanId":  loan.ID,
			"dueDate": optionalTime(due),
		})
		tx.audit("loan.checkOut", r.UserID, loan.ID, map[string]any{
			"itemId": loan.ItemID,
			"qty":    loan.Qty,
		})
		out = Approval{Request: *r, Loan: loan}
		return nil
	})
	if err != nil {
		return Approval{}, err
	}
	return out, nil
}

func (l *Ledger) DeclineRequest(ctx context.Context, id, adminID string) (models.Request, error) {
	var out models.Request
	err := l.mutate(ctx, "request.decline", func(tx *txn) error {
		r, err := tx.pendingRequest(id)
		if err != nil {
			return err
		}
		now := tx.now
		r.Status = models.RequestDeclined
		r.ProcessedAt = &now
		r.ProcessedBy = adminID

		tx.audit("request.decline", adminID, r.ID, nil)
		out = *r
		return nil
	})
	if err != nil {
		return models.Request{}, err
	}
	return out, nil
}

func (tx *txn) pendingRequest(id string) (*models.Request, error) {
	i := tx.requestIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("request %s: %w", id, common.ErrNotFound)
	}
	r := &tx.Requests[i]
	if r.Status != models.RequestPending {
		return nil, fmt.Errorf("request %s is already %s: %w", id, r.Status, common.ErrInvalidTransition)
	}
	return r, nil
}

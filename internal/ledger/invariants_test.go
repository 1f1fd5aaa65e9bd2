package ledger

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/models"
	"github.com/stretchr/testify/require"
)

// TestStockBounds drives random request/approve/checkout/checkin sequences
// and checks 0 <= available <= quantity after every step.
func TestStockBounds(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		ctx := context.Background()
		l, _, admin, staff, _ := seeded(t)
		rng := rand.New(rand.NewPCG(seed, seed*7))
		items := l.Snapshot().Items
		initial := map[string]int{}
		for _, it := range items {
			initial[it.ID] = it.Available
		}

		for step := 0; step < 200; step++ {
			snap := l.Snapshot()
			item := items[rng.IntN(len(items))]
			qty := rng.IntN(6) + 1

			var err error
			switch rng.IntN(4) {
			case 0:
				_, err = l.CreateRequest(ctx, NewRequest{ItemID: item.ID, UserID: staff.ID, Qty: qty})
			case 1:
				if pending := pendingIDs(snap); len(pending) > 0 {
					_, err = l.ApproveRequest(ctx, pending[rng.IntN(len(pending))], admin.ID, nil)
				}
			case 2:
				_, err = l.CheckOut(ctx, item.ID, staff.ID, qty, nil)
			case 3:
				if len(snap.Loans) > 0 {
					_, err = l.CheckIn(ctx, snap.Loans[rng.IntN(len(snap.Loans))].ID)
				}
			}
			if err != nil {
				require.True(t,
					errors.Is(err, common.ErrInsufficientStock) || errors.Is(err, common.ErrInvalidTransition),
					"unexpected error: %v", err)
			}

			for _, it := range l.Snapshot().Items {
				require.GreaterOrEqual(t, it.Available, 0, "seed %d step %d", seed, step)
				require.LessOrEqual(t, it.Available, it.Quantity, "seed %d step %d", seed, step)
			}
		}

		for _, ln := range l.Snapshot().Loans {
			if ln.Status == models.LoanBorrowed {
				_, err := l.CheckIn(ctx, ln.ID)
				require.NoError(t, err)
			}
		}
		for _, it := range l.Snapshot().Items {
			require.Equal(t, initial[it.ID], it.Available, "returning every loan restores stock")
		}
	}
}

func pendingIDs(s models.State) []string {
	var ids []string
	for _, r := range s.Requests {
		if r.Status == models.RequestPending {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

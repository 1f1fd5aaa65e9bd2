package ledger

import (
	"bytes"
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/logging"
	"github.com/dmitrijs2005/officeledger/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario_RequestApproveCheckIn(t *testing.T) {
	ctx := context.Background()
	l, _, admin, staff, item := seeded(t)
	require.Equal(t, 10, item.Quantity)
	require.Equal(t, 8, item.Available)

	req, err := l.CreateRequest(ctx, NewRequest{ItemID: item.ID, UserID: staff.ID, Qty: 2})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)

	ap, err := l.ApproveRequest(ctx, req.ID, admin.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, ap.Request.Status)
	assert.Equal(t, admin.ID, ap.Request.ProcessedBy)
	require.NotNil(t, ap.Request.ProcessedAt)
	assert.Equal(t, models.LoanBorrowed, ap.Loan.Status)
	assert.Equal(t, 2, ap.Loan.Qty)
	assert.Nil(t, ap.Loan.DueDate)

	got, _ := l.FindItem(item.ID)
	assert.Equal(t, 6, got.Available)

	loan, err := l.CheckIn(ctx, ap.Loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanReturned, loan.Status)
	require.NotNil(t, loan.DateIn)

	got, _ = l.FindItem(item.ID)
	assert.Equal(t, 8, got.Available)

	stored, ok := l.FindRequest(req.ID)
	require.True(t, ok)
	assert.Equal(t, models.RequestApproved, stored.Status)
	_, ok = l.FindRequest("req_missing")
	assert.False(t, ok)
}

func TestApprove_AuditOrder(t *testing.T) {
	ctx := context.Background()
	l, _, admin, staff, item := seeded(t)

	req, err := l.CreateRequest(ctx, NewRequest{ItemID: item.ID, UserID: staff.ID, Qty: 1})
	require.NoError(t, err)
	due := testNow.AddDate(0, 0, 7)
	ap, err := l.ApproveRequest(ctx, req.ID, admin.ID, &due)
	require.NoError(t, err)
	require.NotNil(t, ap.Loan.DueDate)
	assert.True(t, due.Equal(*ap.Loan.DueDate))

	audits := l.Snapshot().Audits
	require.Len(t, audits, 3)
	assert.Equal(t, "loan.checkOut", audits[0].Action)
	assert.Equal(t, ap.Loan.ID, audits[0].TargetID)
	assert.Equal(t, staff.ID, audits[0].UserID)
	assert.Equal(t, "request.approve", audits[1].Action)
	assert.Equal(t, admin.ID, audits[1].UserID)
	assert.Equal(t, ap.Loan.ID, audits[1].Payload["loanId"])
	assert.Equal(t, "request.create", audits[2].Action)
}

func TestApprove_InsufficientStockLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	l, p, admin, staff, item := seeded(t)

	req, err := l.CreateRequest(ctx, NewRequest{ItemID: item.ID, UserID: staff.ID, Qty: 5})
	require.NoError(t, err)
	_, err = l.CheckOut(ctx, item.ID, admin.ID, 4, nil)
	require.NoError(t, err)

	before := l.Snapshot()
	saves := p.count()

	_, err = l.ApproveRequest(ctx, req.ID, admin.ID, nil)
	require.ErrorIs(t, err, common.ErrInsufficientStock)

	after := l.Snapshot()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("state changed after failed approval (-before +after):\n%s", diff)
	}
	assert.Equal(t, saves, p.count(), "failed operation must not persist")
}

func TestProcessedRequest_InvalidTransition(t *testing.T) {
	ctx := context.Background()
	l, _, admin, staff, item := seeded(t)

	approved, err := l.CreateRequest(ctx, NewRequest{ItemID: item.ID, UserID: staff.ID, Qty: 1})
	require.NoError(t, err)
	_, err = l.ApproveRequest(ctx, approved.ID, admin.ID, nil)
	require.NoError(t, err)

	declined, err := l.CreateRequest(ctx, NewRequest{ItemID: item.ID, UserID: staff.ID, Qty: 1})
	require.NoError(t, err)
	d, err := l.DeclineRequest(ctx, declined.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestDeclined, d.Status)

	for _, id := range []string{approved.ID, declined.ID} {
		_, err = l.ApproveRequest(ctx, id, admin.ID, nil)
		assert.ErrorIs(t, err, common.ErrInvalidTransition)
		_, err = l.DeclineRequest(ctx, id, admin.ID)
		assert.ErrorIs(t, err, common.ErrInvalidTransition)
	}

	got, _ := l.FindItem(item.ID)
	assert.Equal(t, 7, got.Available, "only the approved request took stock")
}

func TestRequest_NotFound(t *testing.T) {
	ctx := context.Background()
	l, _, admin, _, _ := seeded(t)

	_, err := l.ApproveRequest(ctx, "req_missing", admin.ID, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = l.DeclineRequest(ctx, "req_missing", admin.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCheckIn_Errors(t *testing.T) {
	ctx := context.Background()
	l, _, admin, _, item := seeded(t)

	_, err := l.CheckIn(ctx, "lon_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	loan, err := l.CheckOut(ctx, item.ID, admin.ID, 1, nil)
	require.NoError(t, err)
	_, err = l.CheckIn(ctx, loan.ID)
	require.NoError(t, err)

	_, err = l.CheckIn(ctx, loan.ID)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	got, _ := l.FindItem(item.ID)
	assert.Equal(t, 8, got.Available)
}

func TestCreateRequest_Errors(t *testing.T) {
	ctx := context.Background()
	l, _, _, staff, item := seeded(t)

	_, err := l.CreateRequest(ctx, NewRequest{ItemID: "itm_missing", UserID: staff.ID, Qty: 1})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = l.CreateRequest(ctx, NewRequest{ItemID: item.ID, UserID: staff.ID, Qty: 9})
	assert.ErrorIs(t, err, common.ErrInsufficientStock)

	_, err = l.CreateRequest(ctx, NewRequest{ItemID: item.ID, Qty: 0})
	require.ErrorIs(t, err, common.ErrValidation)
	var fe *common.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, err.Error(), "userId: is required")
	assert.Contains(t, err.Error(), "qty: must be at least 1")

	assert.Empty(t, l.Snapshot().Requests)
	assert.Empty(t, l.Snapshot().Audits)
}

func TestCheckOut_Errors(t *testing.T) {
	ctx := context.Background()
	l, _, admin, _, item := seeded(t)

	_, err := l.CheckOut(ctx, item.ID, admin.ID, 0, nil)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = l.CheckOut(ctx, item.ID, "", 1, nil)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = l.CheckOut(ctx, "itm_missing", admin.ID, 1, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = l.CheckOut(ctx, item.ID, admin.ID, 9, nil)
	assert.ErrorIs(t, err, common.ErrInsufficientStock)

	loan, err := l.CheckOut(ctx, item.ID, admin.ID, 8, nil)
	require.NoError(t, err)
	got, _ := l.FindItem(item.ID)
	assert.Equal(t, 0, got.Available)
	assert.Equal(t, testNow, got.UpdatedAt)

	snap := l.Snapshot()
	require.Len(t, snap.Loans, 1)
	assert.Equal(t, loan.ID, snap.Loans[0].ID)
	assert.Equal(t, "loan.checkOut", snap.Audits[0].Action)
	assert.Equal(t, 8, snap.Audits[0].Payload["qty"])
}

func TestDeleteItem_Cascades(t *testing.T) {
	ctx := context.Background()
	l, _, admin, staff, item := seeded(t)
	other, ok := l.FindItemByCode("itm-0002")
	require.True(t, ok)

	_, err := l.CreateRequest(ctx, NewRequest{ItemID: item.ID, UserID: staff.ID, Qty: 1})
	require.NoError(t, err)
	_, err = l.CheckOut(ctx, item.ID, staff.ID, 2, nil)
	require.NoError(t, err)
	keep, err := l.CheckOut(ctx, other.ID, staff.ID, 1, nil)
	require.NoError(t, err)
	_, err = l.CreateRequest(ctx, NewRequest{ItemID: other.ID, UserID: admin.ID, Qty: 3})
	require.NoError(t, err)

	require.NoError(t, l.DeleteItem(ctx, item.ID))

	snap := l.Snapshot()
	_, found := l.FindItem(item.ID)
	assert.False(t, found)
	for _, ln := range snap.Loans {
		assert.NotEqual(t, item.ID, ln.ItemID)
	}
	for _, r := range snap.Requests {
		assert.NotEqual(t, item.ID, r.ItemID)
	}
	require.Len(t, snap.Loans, 1)
	assert.Equal(t, keep.ID, snap.Loans[0].ID)
	assert.Len(t, snap.Requests, 1)
	assert.Equal(t, "item.delete", snap.Audits[0].Action)
	assert.Equal(t, item.ID, snap.Audits[0].TargetID)
}

func TestNextCode(t *testing.T) {
	ctx := context.Background()
	l, p := newTestLedger(t, models.State{})

	assert.Equal(t, "ITM-0001", l.NextCode(ctx, "itm"))
	assert.Equal(t, "ITM-0002", l.NextCode(ctx, "itm"))
	assert.Equal(t, "ITM-0003", l.NextCode(ctx, "itm"))
	assert.Equal(t, "MON-0001", l.NextCode(ctx, "mon"))

	snap := l.Snapshot()
	assert.Equal(t, map[string]int{"itm": 3, "mon": 1}, snap.Sequences)
	assert.Empty(t, snap.Audits)
	assert.Equal(t, 4, p.count())
}

func TestNextCode_ContinuesSeedCounter(t *testing.T) {
	l, _, _, _, _ := seeded(t)
	assert.Equal(t, "ITEM-0003", l.NextCode(context.Background(), "item"))
}

func TestAuditLog_Capped(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, models.State{})

	for i := 0; i <= AuditLimit; i++ {
		require.NoError(t, l.DeleteUser(ctx, "usr_"+strconv.Itoa(i)))
	}

	audits := l.Snapshot().Audits
	require.Len(t, audits, AuditLimit)
	assert.Equal(t, "usr_"+strconv.Itoa(AuditLimit), audits[0].TargetID)
	assert.Equal(t, "usr_1", audits[len(audits)-1].TargetID)
	for _, a := range audits {
		assert.NotEqual(t, "usr_0", a.TargetID)
	}
}

func TestAuditLog_TruncatesOversizedInitialState(t *testing.T) {
	initial := models.State{Audits: make([]models.Audit, AuditLimit+20)}
	l, _ := newTestLedger(t, initial)

	require.NoError(t, l.DeleteUser(context.Background(), "x"))
	audits := l.Snapshot().Audits
	assert.Len(t, audits, AuditLimit)
	assert.Equal(t, "user.delete", audits[0].Action)
}

func TestPersistence_FailureIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New("debug", "text", &buf)
	require.NoError(t, err)

	s, err := Seed(testNow, fastHash)
	require.NoError(t, err)
	l, p := newTestLedger(t, s, WithLogger(log))
	p.err = errDisk

	item, _ := l.FindItemByCode("ITM-0002")
	admin, _ := l.FindUserByUsername("admin")
	_, err = l.CheckOut(context.Background(), item.ID, admin.ID, 1, nil)
	require.NoError(t, err)

	got, _ := l.FindItem(item.ID)
	assert.Equal(t, 14, got.Available, "state is installed even when persistence fails")
	assert.Contains(t, buf.String(), "failed to persist ledger snapshot")
	assert.Contains(t, buf.String(), "disk full")
}

func TestPersistence_ReceivesInstalledSnapshot(t *testing.T) {
	l, p, _, _, _ := seeded(t)
	code := l.NextCode(context.Background(), "mon")
	require.Equal(t, "MON-0001", code)

	require.Equal(t, 1, p.count())
	assert.Equal(t, 1, p.saves[0].Sequences["mon"])

	// the persisted copy is detached from the live state
	p.saves[0].Sequences["mon"] = 99
	assert.Equal(t, 1, l.Snapshot().Sequences["mon"])
}

func TestPersistence_SurvivesCancelledContext(t *testing.T) {
	l, p, _, _, _ := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.AddItem(ctx, NewItem{
		Name: "Dock", Code: "DCK-0001", Category: "Laptop", Location: "Gudang A",
		Condition: models.ConditionGood, Quantity: 1, Available: 1,
	})
	require.NoError(t, err)

	require.Equal(t, 1, p.count())
	assert.NoError(t, p.ctxErrs[0])
	assert.Len(t, p.saves[0].Items, 3)
}

func TestNew_NilPersister(t *testing.T) {
	l := New(models.State{}, nil, WithPasswordHasher(fastHash))
	_, err := l.AddUser(context.Background(), NewUser{Name: "Bob", Username: "bob", Password: "pwd", Role: models.RoleUser})
	require.NoError(t, err)
	assert.Len(t, l.Snapshot().Users, 1)
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	l, _, admin, _, _ := seeded(t)

	next := models.State{
		Items:     []models.Item{{ID: "itm_x", Code: "X-1", Quantity: 1, Available: 1}},
		Sequences: map[string]int{"x": 7},
	}
	require.NoError(t, l.Replace(ctx, next, admin.ID))

	snap := l.Snapshot()
	assert.Empty(t, snap.Users)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 7, snap.Sequences["x"])
	require.Len(t, snap.Audits, 1)
	assert.Equal(t, "ledger.restore", snap.Audits[0].Action)
	assert.Equal(t, admin.ID, snap.Audits[0].UserID)

	next.Items[0].Available = 0
	got, _ := l.FindItem("itm_x")
	assert.Equal(t, 1, got.Available)
}

func TestSnapshot_IsDetached(t *testing.T) {
	l, _, _, _, item := seeded(t)
	snap := l.Snapshot()
	snap.Items[0].Available = 0
	snap.Sequences["item"] = 100

	got, _ := l.FindItem(item.ID)
	assert.Equal(t, 8, got.Available)
	assert.Equal(t, 2, l.Snapshot().Sequences["item"])
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	l, _, admin, staff, item := seeded(t)

	past := testNow.Add(-24 * time.Hour)
	_, err := l.CheckOut(ctx, item.ID, staff.ID, 1, &past)
	require.NoError(t, err)
	_, err = l.CreateRequest(ctx, NewRequest{ItemID: item.ID, UserID: staff.ID, Qty: 1})
	require.NoError(t, err)
	_, err = l.CheckOut(ctx, item.ID, admin.ID, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, Stats{
		Users:           2,
		Items:           2,
		Units:           25,
		AvailableUnits:  21,
		ActiveLoans:     2,
		OverdueLoans:    1,
		PendingRequests: 1,
	}, l.Stats())
}

func TestConcurrentCheckOut_NeverOversells(t *testing.T) {
	ctx := context.Background()
	l, _, _, staff, item := seeded(t)

	var ok atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.CheckOut(ctx, item.ID, staff.ID, 1, nil); err == nil {
				ok.Add(1)
			} else {
				assert.ErrorIs(t, err, common.ErrInsufficientStock)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(8), ok.Load())
	got, _ := l.FindItem(item.ID)
	assert.Equal(t, 0, got.Available)
	assert.Len(t, l.Snapshot().Loans, 8)
}

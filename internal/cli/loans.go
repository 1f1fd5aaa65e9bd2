package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/ledger"
	"github.com/dmitrijs2005/officeledger/internal/models"
)

func (a *App) createRequest(ctx context.Context, args []string) error {
	me, err := a.sessions.RequireUser()
	if err != nil {
		return err
	}
	it, err := a.lookupItem(args[0])
	if err != nil {
		return err
	}
	qty, err := parseQty(args[1])
	if err != nil {
		return err
	}

	r, err := a.ledger.CreateRequest(ctx, ledger.NewRequest{
		ItemID: it.ID,
		UserID: me.ID,
		Qty:    qty,
		Note:   strings.Join(args[2:], " "),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Request %s for %d x %s is pending\n", r.ID, r.Qty, it.Code)
	return nil
}

// listRequests shows every request to admins and only their own to users.
// Admins default to pending requests.
func (a *App) listRequests(_ context.Context, args []string) error {
	me, err := a.sessions.RequireUser()
	if err != nil {
		return err
	}
	filter := "all"
	if me.IsAdmin() {
		filter = string(models.RequestPending)
	}
	if len(args) > 0 {
		filter = strings.ToLower(args[0])
	}
	switch filter {
	case "all", string(models.RequestPending), string(models.RequestApproved), string(models.RequestDeclined):
	default:
		return usageError{usage: "requests [pending|approved|declined|all]"}
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tITEM\tUSER\tQTY\tSTATUS\tCREATED\tNOTE")
	for _, r := range a.ledger.Snapshot().Requests {
		if !me.IsAdmin() && r.UserID != me.ID {
			continue
		}
		if filter != "all" && string(r.Status) != filter {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, a.itemLabel(r.ItemID), a.userLabel(r.UserID), r.Qty, r.Status, fmtTime(r.CreatedAt), orDash(r.Note))
	}
	return tw.Flush()
}

func (a *App) approve(ctx context.Context, args []string) error {
	me, err := a.sessions.RequireAdmin()
	if err != nil {
		return err
	}
	var dueArg string
	if len(args) > 1 {
		dueArg = args[1]
	}
	due, err := parseDue(dueArg)
	if err != nil {
		return err
	}

	res, err := a.ledger.ApproveRequest(ctx, args[0], me.ID, due)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Approved %s: loan %s, %d x %s to %s, due %s\n",
		res.Request.ID, res.Loan.ID, res.Loan.Qty, a.itemLabel(res.Loan.ItemID), a.userLabel(res.Loan.UserID), fmtDate(res.Loan.DueDate))
	return nil
}

func (a *App) decline(ctx context.Context, args []string) error {
	me, err := a.sessions.RequireAdmin()
	if err != nil {
		return err
	}
	r, err := a.ledger.DeclineRequest(ctx, args[0], me.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Declined %s\n", r.ID)
	return nil
}

func (a *App) checkOut(ctx context.Context, args []string) error {
	it, err := a.lookupItem(args[0])
	if err != nil {
		return err
	}
	u, err := a.lookupUser(args[1])
	if err != nil {
		return err
	}
	qty, err := parseQty(args[2])
	if err != nil {
		return err
	}
	var dueArg string
	if len(args) > 3 {
		dueArg = args[3]
	}
	due, err := parseDue(dueArg)
	if err != nil {
		return err
	}

	ln, err := a.ledger.CheckOut(ctx, it.ID, u.ID, qty, due)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Loan %s: %d x %s to %s, due %s\n", ln.ID, ln.Qty, it.Code, u.Username, fmtDate(ln.DueDate))
	return nil
}

func (a *App) checkIn(ctx context.Context, args []string) error {
	ln, err := a.ledger.CheckIn(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Returned %d x %s from %s\n", ln.Qty, a.itemLabel(ln.ItemID), a.userLabel(ln.UserID))
	return nil
}

// listLoans shows every loan to admins and only their own to users.
func (a *App) listLoans(_ context.Context, args []string) error {
	me, err := a.sessions.RequireUser()
	if err != nil {
		return err
	}
	filter := "active"
	if len(args) > 0 {
		filter = strings.ToLower(args[0])
	}
	now := a.now()

	var keep func(models.Loan) bool
	switch filter {
	case "active":
		keep = func(l models.Loan) bool { return l.Status == models.LoanBorrowed }
	case "overdue":
		keep = func(l models.Loan) bool { return l.Overdue(now) }
	case "all":
		keep = func(models.Loan) bool { return true }
	default:
		return usageError{usage: "loans [active|overdue|all]"}
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tITEM\tUSER\tQTY\tOUT\tDUE\tIN\tSTATUS")
	for _, l := range a.ledger.Snapshot().Loans {
		if (!me.IsAdmin() && l.UserID != me.ID) || !keep(l) {
			continue
		}
		status := string(l.Status)
		if l.Overdue(now) {
			status = "overdue"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			l.ID, a.itemLabel(l.ItemID), a.userLabel(l.UserID), l.Qty, fmtTime(l.DateOut), fmtDate(l.DueDate), fmtDate(l.DateIn), status)
	}
	return tw.Flush()
}


// showRequest prints one request. Users can only see their own.
func (a *App) showRequest(_ context.Context, args []string) error {
	me, err := a.sessions.RequireUser()
	if err != nil {
		return err
	}
	r, ok := a.ledger.FindRequest(args[0])
	if !ok || (!me.IsAdmin() && r.UserID != me.ID) {
		return fmt.Errorf("request %s: %w", args[0], common.ErrNotFound)
	}

	tw := newTable(a.out)
	fmt.Fprintf(tw, "Request:\t%s\n", r.ID)
	fmt.Fprintf(tw, "Item:\t%s\n", a.itemLabel(r.ItemID))
	fmt.Fprintf(tw, "User:\t%s\n", a.userLabel(r.UserID))
	fmt.Fprintf(tw, "Qty:\t%d\n", r.Qty)
	fmt.Fprintf(tw, "Status:\t%s\n", r.Status)
	fmt.Fprintf(tw, "Created:\t%s\n", fmtTime(r.CreatedAt))
	if r.ProcessedAt != nil {
		fmt.Fprintf(tw, "Processed:\t%s by %s\n", fmtTime(*r.ProcessedAt), a.userLabel(r.ProcessedBy))
	}
	fmt.Fprintf(tw, "Note:\t%s\n", orDash(r.Note))
	return tw.Flush()
}

// showLoan prints one loan. Users can only see their own.
func (a *App) showLoan(_ context.Context, args []string) error {
	me, err := a.sessions.RequireUser()
	if err != nil {
		return err
	}
	ln, ok := a.ledger.FindLoan(args[0])
	if !ok || (!me.IsAdmin() && ln.UserID != me.ID) {
		return fmt.Errorf("loan %s: %w", args[0], common.ErrNotFound)
	}

	status := string(ln.Status)
	if ln.Overdue(a.now()) {
		status = "overdue"
	}
	tw := newTable(a.out)
	fmt.Fprintf(tw, "Loan:\t%s\n", ln.ID)
	fmt.Fprintf(tw, "Item:\t%s\n", a.itemLabel(ln.ItemID))
	fmt.Fprintf(tw, "User:\t%s\n", a.userLabel(ln.UserID))
	fmt.Fprintf(tw, "Qty:\t%d\n", ln.Qty)
	fmt.Fprintf(tw, "Out:\t%s\n", fmtTime(ln.DateOut))
	fmt.Fprintf(tw, "Due:\t%s\n", fmtDate(ln.DueDate))
	fmt.Fprintf(tw, "In:\t%s\n", fmtDate(ln.DateIn))
	fmt.Fprintf(tw, "Status:\t%s\n", status)
	return tw.Flush()
}

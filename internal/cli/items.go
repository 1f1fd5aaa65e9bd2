package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/ledger"
	"github.com/dmitrijs2005/officeledger/internal/models"
)

// itemCodePrefix is the sequence used when additem is left to pick a code.
const itemCodePrefix = "itm"

func (a *App) listItems(_ context.Context, args []string) error {
	query := strings.ToLower(strings.Join(args, " "))
	st := a.ledger.Snapshot()

	tw := newTable(a.out)
	fmt.Fprintln(tw, "CODE\tNAME\tCATEGORY\tLOCATION\tCONDITION\tAVAILABLE\tID")
	n := 0
	for _, it := range st.Items {
		if query != "" && !matchesItem(it, query) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			it.Code, it.Name, it.Category, it.Location, it.Condition, it.Available, it.Quantity, it.ID)
		n++
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d item(s)\n", n)
	return nil
}

func matchesItem(it models.Item, query string) bool {
	for _, s := range []string{it.Code, it.Name, it.Category, it.Location} {
		if strings.Contains(strings.ToLower(s), query) {
			return true
		}
	}
	return false
}

func (a *App) showItem(_ context.Context, args []string) error {
	it, err := a.lookupItem(args[0])
	if err != nil {
		return err
	}

	tw := newTable(a.out)
	fmt.Fprintf(tw, "Code:\t%s\n", it.Code)
	fmt.Fprintf(tw, "Name:\t%s\n", it.Name)
	fmt.Fprintf(tw, "Category:\t%s\n", it.Category)
	fmt.Fprintf(tw, "Location:\t%s\n", it.Location)
	fmt.Fprintf(tw, "Condition:\t%s\n", it.Condition)
	fmt.Fprintf(tw, "Quantity:\t%d (available %d, borrowed %d)\n", it.Quantity, it.Available, it.Borrowed())
	fmt.Fprintf(tw, "Purchased:\t%s\n", orDash(it.PurchaseDate))
	fmt.Fprintf(tw, "Image:\t%s\n", orDash(it.Image))
	fmt.Fprintf(tw, "Notes:\t%s\n", orDash(it.Notes))
	fmt.Fprintf(tw, "Updated:\t%s\n", fmtTime(it.UpdatedAt))
	fmt.Fprintf(tw, "ID:\t%s\n", it.ID)
	if err := tw.Flush(); err != nil {
		return err
	}

	var holders []string
	for _, ln := range a.ledger.Snapshot().Loans {
		if ln.ItemID == it.ID && ln.Status == models.LoanBorrowed {
			holders = append(holders, fmt.Sprintf("%s x%d (due %s)", a.userLabel(ln.UserID), ln.Qty, fmtDate(ln.DueDate)))
		}
	}
	if len(holders) > 0 {
		fmt.Fprintf(a.out, "On loan to: %s\n", strings.Join(holders, ", "))
	}
	return nil
}

func (a *App) addItem(ctx context.Context, _ []string) error {
	st := a.ledger.Snapshot()
	var (
		in  ledger.NewItem
		err error
	)

	if in.Name, err = GetSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if in.Code, err = GetSimpleText(a.reader, "Code (empty to generate)", a.out); err != nil {
		return err
	}
	if in.Category, err = GetDefault(a.reader, "Category ("+strings.Join(st.Categories, ", ")+")", first(st.Categories), a.out); err != nil {
		return err
	}
	if in.Location, err = GetDefault(a.reader, "Location ("+strings.Join(st.Locations, ", ")+")", first(st.Locations), a.out); err != nil {
		return err
	}
	cond, err := GetDefault(a.reader, "Condition (good, needs_repair, broken)", string(models.ConditionGood), a.out)
	if err != nil {
		return err
	}
	in.Condition = models.Condition(cond)
	if in.Quantity, err = GetInt(a.reader, "Quantity", "quantity", 1, a.out); err != nil {
		return err
	}
	if in.Available, err = GetInt(a.reader, "Available", "available", in.Quantity, a.out); err != nil {
		return err
	}
	if in.PurchaseDate, err = GetSimpleText(a.reader, "Purchase date (YYYY-MM-DD, optional)", a.out); err != nil {
		return err
	}
	if in.Notes, err = GetSimpleText(a.reader, "Notes (optional)", a.out); err != nil {
		return err
	}

	candidate := in
	if candidate.Code == "" {
		candidate.Code = "pending"
	}
	if err := candidate.Validate(); err != nil {
		return err
	}
	if in.Code == "" {
		in.Code = a.freshCode(ctx)
	}

	it, err := a.ledger.AddItem(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s %s (%s)\n", it.Code, it.Name, it.ID)
	return nil
}

func (a *App) editItem(ctx context.Context, args []string) error {
	it, err := a.lookupItem(args[0])
	if err != nil {
		return err
	}

	var patch ledger.ItemPatch
	if patch.Name, err = a.editText("Name", it.Name); err != nil {
		return err
	}
	if patch.Code, err = a.editText("Code", it.Code); err != nil {
		return err
	}
	if patch.Category, err = a.editText("Category", it.Category); err != nil {
		return err
	}
	if patch.Location, err = a.editText("Location", it.Location); err != nil {
		return err
	}
	cond, err := a.editText("Condition", string(it.Condition))
	if err != nil {
		return err
	}
	if cond != nil {
		c := models.Condition(*cond)
		patch.Condition = &c
	}
	if patch.Quantity, err = a.editInt("Quantity", "quantity", it.Quantity); err != nil {
		return err
	}
	if patch.Available, err = a.editInt("Available", "available", it.Available); err != nil {
		return err
	}
	if patch.PurchaseDate, err = a.editText("Purchase date", it.PurchaseDate); err != nil {
		return err
	}
	if patch.Notes, err = a.editText("Notes", it.Notes); err != nil {
		return err
	}

	if err := a.checkStock(it, patch); err != nil {
		return err
	}

	if err := a.ledger.UpdateItem(ctx, it.ID, patch); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s\n", it.Code)
	return nil
}

func (a *App) deleteItem(ctx context.Context, args []string) error {
	it, err := a.lookupItem(args[0])
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %s %s with all its loans and requests?", it.Code, it.Name), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.ledger.DeleteItem(ctx, it.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", it.Code)
	return nil
}

func (a *App) nextCode(ctx context.Context, args []string) error {
	fmt.Fprintln(a.out, a.ledger.NextCode(ctx, args[0]))
	return nil
}

func (a *App) categories(_ context.Context, _ []string) error {
	st := a.ledger.Snapshot()
	fmt.Fprintf(a.out, "Categories: %s\n", strings.Join(st.Categories, ", "))
	fmt.Fprintf(a.out, "Locations:  %s\n", strings.Join(st.Locations, ", "))
	return nil
}

func (a *App) stats(_ context.Context, _ []string) error {
	s := a.ledger.Stats()
	tw := newTable(a.out)
	fmt.Fprintf(tw, "Items:\t%d\n", s.Items)
	fmt.Fprintf(tw, "Units:\t%d (%d available)\n", s.Units, s.AvailableUnits)
	fmt.Fprintf(tw, "Active loans:\t%d (%d overdue)\n", s.ActiveLoans, s.OverdueLoans)
	fmt.Fprintf(tw, "Pending requests:\t%d\n", s.PendingRequests)
	fmt.Fprintf(tw, "Users:\t%d\n", s.Users)
	return tw.Flush()
}

// freshCode draws codes from the item sequence until one is not used by an
// existing item. Seeded and hand-typed codes share the ITM- namespace.
func (a *App) freshCode(ctx context.Context) string {
	for {
		code := a.ledger.NextCode(ctx, itemCodePrefix)
		if _, taken := a.ledger.FindItemByCode(code); !taken {
			return code
		}
	}
}

// checkStock keeps an edited item within 0 <= available <= quantity and
// leaves room for the units still out on loan, so a later checkin cannot
// push available past quantity.
func (a *App) checkStock(it models.Item, patch ledger.ItemPatch) error {
	qty, avail := it.Quantity, it.Available
	if patch.Quantity != nil {
		qty = *patch.Quantity
	}
	if patch.Available != nil {
		avail = *patch.Available
	}

	onLoan := 0
	for _, ln := range a.ledger.Snapshot().Loans {
		if ln.ItemID == it.ID && ln.Status == models.LoanBorrowed {
			onLoan += ln.Qty
		}
	}

	var errs []error
	if qty < onLoan {
		errs = append(errs, common.Invalid("quantity", fmt.Sprintf("must cover the %d unit(s) on loan", onLoan)))
	}
	switch {
	case avail > qty:
		errs = append(errs, common.Invalid("available", "must not exceed quantity"))
	case avail > qty-onLoan:
		errs = append(errs, common.Invalid("available", fmt.Sprintf("must not exceed quantity minus the %d unit(s) on loan", onLoan)))
	}
	return errors.Join(errs...)
}

// editText prompts with the current value; an empty answer keeps it and
// yields nil.
func (a *App) editText(label, current string) (*string, error) {
	prompt := label
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]", label, current)
	}
	s, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil || s == "" || s == current {
		return nil, err
	}
	return &s, nil
}

func (a *App) editInt(label, field string, current int) (*int, error) {
	s, err := a.editText(label, strconv.Itoa(current))
	if err != nil || s == nil {
		return nil, err
	}
	n, err := strconv.Atoi(*s)
	if err != nil {
		return nil, common.Invalid(field, "must be a whole number")
	}
	return &n, nil
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

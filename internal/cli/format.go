package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/models"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func (a *App) lookupItem(ref string) (models.Item, error) {
	if it, ok := a.ledger.FindItem(ref); ok {
		return it, nil
	}
	if it, ok := a.ledger.FindItemByCode(ref); ok {
		return it, nil
	}
	return models.Item{}, fmt.Errorf("item %s: %w", ref, common.ErrNotFound)
}

func (a *App) lookupUser(ref string) (models.User, error) {
	if u, ok := a.ledger.FindUser(ref); ok {
		return u, nil
	}
	if u, ok := a.ledger.FindUserByUsername(ref); ok {
		return u, nil
	}
	return models.User{}, fmt.Errorf("user %s: %w", ref, common.ErrNotFound)
}

// userLabel prints a username for an id, or the id itself for deleted users.
func (a *App) userLabel(id string) string {
	if u, ok := a.ledger.FindUser(id); ok {
		return u.Username
	}
	return id
}

func (a *App) itemLabel(id string) string {
	if it, ok := a.ledger.FindItem(id); ok {
		return it.Code
	}
	return id
}

func parseQty(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, common.Invalid("qty", "must be a whole number")
	}
	return n, nil
}

// parseDue reads a YYYY-MM-DD due date as the end of that day in local time.
// An empty string means no due date.
func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, common.Invalid("dueDate", "must be a date in YYYY-MM-DD form")
	}
	due := d.AddDate(0, 0, 1).Add(-time.Second).UTC()
	return &due, nil
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateTimeLayout)
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

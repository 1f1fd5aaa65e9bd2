package ledger

import (
	"strings"

	"github.com/dmitrijs2005/officeledger/internal/models"
)

// Snapshot returns a deep copy of the installed state.
func (l *Ledger) Snapshot() models.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

func (l *Ledger) FindUser(id string) (models.User, bool) {
	return find(l, func(s *models.State) []models.User { return s.Users }, func(u models.User) bool { return u.ID == id })
}

func (l *Ledger) FindUserByUsername(username string) (models.User, bool) {
	return find(l, func(s *models.State) []models.User { return s.Users }, func(u models.User) bool { return u.Username == username })
}

func (l *Ledger) FindItem(id string) (models.Item, bool) {
	return find(l, func(s *models.State) []models.Item { return s.Items }, func(i models.Item) bool { return i.ID == id })
}

// FindItemByCode matches codes case-insensitively.
func (l *Ledger) FindItemByCode(code string) (models.Item, bool) {
	return find(l, func(s *models.State) []models.Item { return s.Items }, func(i models.Item) bool { return strings.EqualFold(i.Code, code) })
}

func (l *Ledger) FindLoan(id string) (models.Loan, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ln := range l.state.Loans {
		if ln.ID == id {
			return ln.Clone(), true
		}
	}
	return models.Loan{}, false
}

func (l *Ledger) FindRequest(id string) (models.Request, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.state.Requests {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return models.Request{}, false
}

// find is for record types without pointer fields, which copy by value.
func find[T any](l *Ledger, coll func(*models.State) []T, match func(T) bool) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, v := range coll(&l.state) {
		if match(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Stats are the dashboard counters.
type Stats struct {
	Users           int
	Items           int
	Units           int
	AvailableUnits  int
	ActiveLoans     int
	OverdueLoans    int
	PendingRequests int
}

func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	st := Stats{Users: len(l.state.Users), Items: len(l.state.Items)}
	for _, i := range l.state.Items {
		st.Units += i.Quantity
		st.AvailableUnits += i.Available
	}
	for _, ln := range l.state.Loans {
		if ln.Status == models.LoanBorrowed {
			st.ActiveLoans++
		}
		if ln.Overdue(now) {
			st.OverdueLoans++
		}
	}
	for _, r := range l.state.Requests {
		if r.Status == models.RequestPending {
			st.PendingRequests++
		}
	}
	return st
}

package ledger

import (
	"time"

	"github.com/dmitrijs2005/officeledger/internal/models"
)

// txn is the working copy an operation mutates before it is installed.
type txn struct {
	models.State
	now   time.Time
	newID func(prefix string) string
}

// audit prepends an entry and evicts the oldest beyond AuditLimit.
func (tx *txn) audit(action, userID, targetID string, payload map[string]any) {
	a := models.Audit{
		ID:        tx.newID("aud"),
		Action:    action,
		UserID:    userID,
		TargetID:  targetID,
		Payload:   payload,
		CreatedAt: tx.now,
	}
	audits := make([]models.Audit, 0, min(len(tx.Audits)+1, AuditLimit))
	audits = append(audits, a)
	audits = append(audits, tx.Audits[:min(len(tx.Audits), AuditLimit-1)]...)
	tx.Audits = audits
}

func (tx *txn) userIndex(id string) int {
	for i := range tx.Users {
		if tx.Users[i].ID == id {
			return i
		}
	}
	return -1
}

func (tx *txn) itemIndex(id string) int {
	for i := range tx.Items {
		if tx.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (tx *txn) loanIndex(id string) int {
	for i := range tx.Loans {
		if tx.Loans[i].ID == id {
			return i
		}
	}
	return -1
}

func (tx *txn) requestIndex(id string) int {
	for i := range tx.Requests {
		if tx.Requests[i].ID == id {
			return i
		}
	}
	return -1
}

func (tx *txn) usernameTaken(username, exceptID string) bool {
	for _, u := range tx.Users {
		if u.Username == username && u.ID != exceptID {
			return true
		}
	}
	return false
}

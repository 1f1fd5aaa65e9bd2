package ledger

import (
	"context"
	"fmt"
	"strings"
)

// NextCode advances the counter for prefix and returns PREFIX-0001 style
// codes. The counter is keyed by prefix exactly as given.
func (l *Ledger) NextCode(ctx context.Context, prefix string) string {
	var code string
	// the closure cannot fail, so neither can mutate
	_ = l.mutate(ctx, "sequence.next", func(tx *txn) error {
		n := tx.Sequences[prefix] + 1
		tx.Sequences[prefix] = n
		code = fmt.Sprintf("%s-%04d", strings.ToUpper(prefix), n)
		return nil
	})
	return code
}

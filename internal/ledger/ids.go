package ledger

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns prefix_<32 hex chars>, e.g. itm_3f2a....
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Package persist maps the ledger state and the login session onto named
// documents of a storage.Repository. Every document is wrapped in a
// {"version": N, "state": ...} envelope so its schema can evolve.
package persist

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/officeledger/internal/common"
)

const (
	LedgerKey  = "office-inventory-db"
	SessionKey = "office-inventory-auth"

	// CurrentVersion is the schema version written by this build.
	CurrentVersion = 1
)

type envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// Migration rewrites the state of a version N document into version N+1.
type Migration func(state json.RawMessage) (json.RawMessage, error)

func encode(v any) ([]byte, error) {
	state, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return json.Marshal(envelope{Version: CurrentVersion, State: state})
}

// decode unwraps data into v, upgrading older versions through migrations.
// It reports whether a migration ran.
func decode(data []byte, v any, migrations map[int]Migration) (bool, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrCorruptDocument, err)
	}
	if env.Version > CurrentVersion {
		return false, fmt.Errorf("%w: version %d is newer than %d", common.ErrCorruptDocument, env.Version, CurrentVersion)
	}

	migrated := false
	state := env.State
	for ver := env.Version; ver < CurrentVersion; ver++ {
		m, ok := migrations[ver]
		if !ok {
			return false, fmt.Errorf("%w: no migration from version %d", common.ErrCorruptDocument, ver)
		}
		next, err := m(state)
		if err != nil {
			return false, fmt.Errorf("%w: migration from version %d: %v", common.ErrCorruptDocument, ver, err)
		}
		state = next
		migrated = true
	}

	if len(state) == 0 || string(state) == "null" {
		return false, fmt.Errorf("%w: empty state", common.ErrCorruptDocument)
	}
	if err := json.Unmarshal(state, v); err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrCorruptDocument, err)
	}
	return migrated, nil
}

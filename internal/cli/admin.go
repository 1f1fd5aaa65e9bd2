package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/officeledger/internal/backup"
	"github.com/dmitrijs2005/officeledger/internal/common"
)

const defaultAuditCount = 20

func (a *App) listAudits(_ context.Context, args []string) error {
	n := defaultAuditCount
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return common.Invalid("count", "must be a positive number")
		}
		n = v
	}

	audits := a.ledger.Snapshot().Audits
	if len(audits) > n {
		audits = audits[:n]
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "WHEN\tACTION\tBY\tTARGET\tDETAILS")
	for _, au := range audits {
		details := "-"
		if len(au.Payload) > 0 {
			if b, err := json.Marshal(au.Payload); err == nil {
				details = string(b)
			}
		}
		by := "-"
		if au.UserID != "" {
			by = a.userLabel(au.UserID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", fmtTime(au.CreatedAt), au.Action, by, orDash(au.TargetID), details)
	}
	return tw.Flush()
}

func (a *App) backup(ctx context.Context, _ []string) error {
	if a.backups == nil {
		return backup.ErrNotConfigured
	}
	key, err := a.backups.Backup(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Backup stored as %s\n", key)
	return nil
}

// restore without arguments lists the available backups.
func (a *App) restore(ctx context.Context, args []string) error {
	if a.backups == nil {
		return backup.ErrNotConfigured
	}
	if len(args) == 0 {
		keys, err := a.backups.List(ctx)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Fprintln(a.out, "No backups found.")
			return nil
		}
		for _, k := range keys {
			fmt.Fprintln(a.out, k)
		}
		return nil
	}

	me, err := a.sessions.RequireAdmin()
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Replace the whole ledger with %s?", args[0]), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.backups.Restore(ctx, args[0], me.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Restored %s\n", args[0])
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vgs/internal/backup"
)

type migrateOptions struct {
	plan       string
	out        string
	noSnapshot bool
}

func newMigrateCmd(a *app) *cobra.Command {
	opts := &migrateOptions{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Back up every grant and restore it under a plan",
		Long: "Back up both grant tables, keep a snapshot of the rows, then restore\n" +
			"them under the restore plan in one transaction.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMigrate(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.plan, "plan", "", "restore plan YAML file")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "snapshot directory (default: <data-dir>/snapshots)")
	cmd.Flags().BoolVar(&opts.noSnapshot, "no-snapshot", false, "do not keep a snapshot of the migrated rows")
	return cmd
}

func (a *app) runMigrate(cmd *cobra.Command, opts *migrateOptions) error {
	plan, err := a.loadPlan(opts.plan)
	if err != nil {
		return err
	}
	var dir string
	if !opts.noSnapshot {
		if dir, err = a.snapshotDir(opts.out); err != nil {
			return sysError("resolve snapshot dir", err)
		}
	}

	s, err := a.open(cmd.Context(), plan, false)
	if err != nil {
		return err
	}

	snap, err := takeSnapshot(cmd, s, backup.All(), backup.All())
	if err == nil && dir != "" {
		err = writeSnapshot(dir, snap)
	}
	if err == nil {
		if rerr := s.coord.RestoreVgs(cmd.Context(), snap.Bodies, snap.Statuses); rerr != nil {
			err = sysError("restore", rerr)
		}
	}
	if err := s.finish(err); err != nil {
		return err
	}

	res := backupResult{Dir: dir, Bodies: len(snap.Bodies), SpendStatuses: len(snap.Statuses)}
	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d grant bodies and %d spend statuses\n", res.Bodies, res.SpendStatuses)
	return nil
}

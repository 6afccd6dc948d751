package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vgs/internal/snapshot"
)

type restoreOptions struct {
	in   string
	plan string
}

func newRestoreCmd(a *app) *cobra.Command {
	opts := &restoreOptions{}
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Rewrite the grant tables from a snapshot",
		Long: "Read a snapshot written by backup, rebuild both grant tables as the\n" +
			"restore plan says, and reinsert the snapshot rows in one transaction.\n" +
			"On failure the tables are left as they were.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRestore(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.in, "in", "i", "", "snapshot directory (default: <data-dir>/snapshots)")
	cmd.Flags().StringVar(&opts.plan, "plan", "", "restore plan YAML file")
	return cmd
}

func (a *app) runRestore(cmd *cobra.Command, opts *restoreOptions) error {
	dir, err := a.snapshotDir(opts.in)
	if err != nil {
		return sysError("resolve snapshot dir", err)
	}
	snap, err := snapshot.Read(dir)
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, snapshot.ErrMalformed) {
		return userError("read snapshot", err)
	}
	if err != nil {
		return sysError("read snapshot", err)
	}

	plan, err := a.loadPlan(opts.plan)
	if err != nil {
		return err
	}
	s, err := a.open(cmd.Context(), plan, false)
	if err != nil {
		return err
	}
	err = s.coord.RestoreVgs(cmd.Context(), snap.Bodies, snap.Statuses)
	if err != nil {
		err = sysError("restore", err)
	}
	if err := s.finish(err); err != nil {
		return err
	}

	res := backupResult{Dir: dir, Bodies: len(snap.Bodies), SpendStatuses: len(snap.Statuses)}
	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %d grant bodies and %d spend statuses from %s\n",
		res.Bodies, res.SpendStatuses, res.Dir)
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vgs/internal/backup"
	"github.com/mesh-intelligence/vgs/internal/snapshot"
)

type backupOptions struct {
	out      string
	triggers []string
	tokens   []string
}

// backupResult is the JSON output of backup and migrate.
type backupResult struct {
	Dir           string `json:"dir,omitempty"`
	Bodies        int    `json:"bodies"`
	SpendStatuses int    `json:"spend_statuses"`
}

func newBackupCmd(a *app) *cobra.Command {
	opts := &backupOptions{}
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write grant bodies and spend statuses to a snapshot",
		Long: "Read the grant tables and write them as JSONL files to the snapshot\n" +
			"directory. Rows whose columns are all NULL are left out.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBackup(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "snapshot directory (default: <data-dir>/snapshots)")
	cmd.Flags().StringSliceVar(&opts.triggers, "trigger", nil, "only back up bodies with these trigger ids")
	cmd.Flags().StringSliceVar(&opts.tokens, "token", nil, "only back up spend statuses with these token ids")
	return cmd
}

// filterFlag turns a repeatable id flag into a Filter. An unset flag
// selects everything.
func filterFlag(cmd *cobra.Command, name string, ids []string) backup.Filter {
	if !cmd.Flags().Changed(name) {
		return backup.All()
	}
	return backup.Only(ids...)
}

func (a *app) runBackup(cmd *cobra.Command, opts *backupOptions) error {
	dir, err := a.snapshotDir(opts.out)
	if err != nil {
		return sysError("resolve snapshot dir", err)
	}

	s, err := a.open(cmd.Context(), backup.Plan{}, false)
	if err != nil {
		return err
	}

	snap, err := takeSnapshot(cmd, s,
		filterFlag(cmd, "trigger", opts.triggers),
		filterFlag(cmd, "token", opts.tokens))
	if err == nil {
		err = writeSnapshot(dir, snap)
	}
	if err := s.finish(err); err != nil {
		return err
	}

	res := backupResult{Dir: dir, Bodies: len(snap.Bodies), SpendStatuses: len(snap.Statuses)}
	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d grant bodies and %d spend statuses to %s\n",
		res.Bodies, res.SpendStatuses, res.Dir)
	return nil
}

// takeSnapshot backs up both tables through the session's coordinator.
func takeSnapshot(cmd *cobra.Command, s *session, bodies, statuses backup.Filter) (snapshot.Snapshot, error) {
	ctx := cmd.Context()
	b, err := s.coord.BackupBodies(ctx, bodies)
	if err != nil {
		return snapshot.Snapshot{}, sysError("back up grant bodies", err)
	}
	st, err := s.coord.BackupSpendStatuses(ctx, statuses)
	if err != nil {
		return snapshot.Snapshot{}, sysError("back up spend statuses", err)
	}
	return snapshot.Snapshot{Bodies: b, Statuses: st}, nil
}

func writeSnapshot(dir string, snap snapshot.Snapshot) error {
	if err := snapshot.Write(dir, snap); err != nil {
		return sysError("write snapshot", err)
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vgs/internal/backup"
	"github.com/mesh-intelligence/vgs/internal/sqlite"
)

func newSeedCmd(a *app) *cobra.Command {
	opts := sqlite.SeedOptions{}
	cmd := &cobra.Command{
		Use:    "seed",
		Short:  "Insert sample grants for trying out backups and migrations",
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), backup.Plan{}, true)
			if err != nil {
				return err
			}
			res, err := sqlite.Seed(cmd.Context(), s.store, opts)
			if err != nil {
				err = userError("seed", err)
			}
			if err := s.finish(err); err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), backupResult{Bodies: len(res.Bodies), SpendStatuses: len(res.Statuses)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d grant bodies and %d spend statuses\n", len(res.Bodies), len(res.Statuses))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Label, "label", "", "label mixed into the generated ids; reuse gives the same ids")
	cmd.Flags().IntVar(&opts.Triggers, "triggers", 3, "distinct trigger ids")
	cmd.Flags().IntVar(&opts.BodiesPerTrigger, "bodies", 2, "grant bodies per trigger")
	cmd.Flags().IntVar(&opts.TokensPerBody, "tokens", 4, "spend statuses per body")
	cmd.Flags().IntVar(&opts.RedeemEvery, "redeem-every", 3, "mark every Nth token redeemed; 0 disables")
	return cmd
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/vgs/internal/backup"
	"github.com/mesh-intelligence/vgs/pkg/types"
)

// tableReport is what schema prints for one table.
type tableReport struct {
	Table   string              `json:"table"`
	Exists  bool                `json:"exists"`
	SQL     string              `json:"sql,omitempty"`
	Indices []types.IndexSchema `json:"indices"`
}

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the live definitions of the grant tables",
		Args:  cobra.NoArgs,
		RunE:  a.runSchema,
	}
}

func (a *app) runSchema(cmd *cobra.Command, args []string) error {
	s, err := a.open(cmd.Context(), backup.Plan{}, false)
	if err != nil {
		return err
	}
	reports, err := describeTables(cmd, s.coord)
	if err := s.finish(err); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return printJSON(out, reports)
	}
	for _, r := range reports {
		if !r.Exists {
			fmt.Fprintf(out, "-- %s: absent\n\n", r.Table)
			continue
		}
		fmt.Fprintf(out, "%s;\n", r.SQL)
		for _, idx := range r.Indices {
			fmt.Fprintf(out, "%s;\n", idx.SQL)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func describeTables(cmd *cobra.Command, c *backup.Coordinator) ([]tableReport, error) {
	ctx := cmd.Context()
	reports := make([]tableReport, 0, len(types.StandardTableNames))
	for _, name := range types.StandardTableNames {
		r := tableReport{Table: name, Indices: []types.IndexSchema{}}
		schema, err := c.GetTableSchema(ctx, name)
		switch {
		case errors.Is(err, types.ErrSchemaNotFound):
		case err != nil:
			return nil, sysError("read table schema", err)
		default:
			r.Exists = true
			r.SQL = schema.SQL
			indices, err := c.GetIndexSchemas(ctx, name)
			if err != nil {
				return nil, sysError("read index schemas", err)
			}
			r.Indices = indices
		}
		reports = append(reports, r)
	}
	return reports, nil
}

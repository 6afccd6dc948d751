package backup

import (
	"strings"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

// capturedTable is what the fetch stages learned about one table.
type capturedTable struct {
	name    string
	schema  types.TableSchema // zero when !found
	found   bool
	indices []types.IndexSchema
}

// assembleRestore builds the rewrite transaction in its fixed order: drop
// indices, reconcile tables, insert bodies, insert spend statuses, recreate
// indices.
func assembleRestore(tables []capturedTable, plan Plan, bodies []types.GrantBody, statuses []types.GrantSpendStatus) types.Transaction {
	var tx types.Transaction

	for _, t := range tables {
		for _, idx := range t.indices {
			tx.Execute("DROP INDEX IF EXISTS " + quoteIdent(idx.Name))
		}
	}

	for _, t := range tables {
		reconcileTable(&tx, t, plan.For(t.name))
	}

	bodyInsert := types.InsertSQL(types.GrantBodiesTable, types.GrantBodyColumns)
	for _, b := range bodies {
		tx.Execute(bodyInsert, b.Values()...)
	}
	statusInsert := types.InsertSQL(types.GrantSpendStatusesTable, types.GrantSpendStatusColumns)
	for _, s := range statuses {
		tx.Execute(statusInsert, s.Values()...)
	}

	for _, t := range tables {
		if t.found {
			for _, idx := range t.indices {
				tx.Execute(idx.SQL)
			}
			continue
		}
		for _, ddl := range plan.For(t.name).BaselineIndices {
			tx.Execute(ddl)
		}
	}

	return tx
}

// reconcileTable appends the statements that bring one table to its target
// shape with no rows left in it.
func reconcileTable(tx *types.Transaction, t capturedTable, tp TablePlan) {
	drop := "DROP TABLE IF EXISTS " + quoteIdent(t.name)

	switch tp.mode() {
	case ModeRecreate:
		tx.Execute(drop)
		tx.Execute(tp.Statements[0])
	case ModeAlter:
		if !t.found {
			tx.Execute(tp.Baseline)
		}
		for _, stmt := range tp.Statements {
			tx.Execute(stmt)
		}
		if t.found {
			tx.Execute("DELETE FROM " + quoteIdent(t.name))
		}
	default:
		if t.found {
			tx.Execute(drop)
			tx.Execute(t.schema.SQL)
			return
		}
		tx.Execute(tp.Baseline)
	}
}

// quoteIdent quotes a SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

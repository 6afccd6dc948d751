package sqlite

import (
	"strings"
	"testing"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

func TestEnsureDDL(t *testing.T) {
	stmts := ensureDDL()
	if len(stmts) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(stmts))
	}
	for _, s := range stmts {
		if !strings.Contains(s, "IF NOT EXISTS") {
			t.Errorf("statement lacks IF NOT EXISTS: %q", s)
		}
	}
	if !strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS grant_bodies") {
		t.Errorf("first statement should create grant_bodies, got %q", stmts[0])
	}
}

func TestBaselineCoversStandardTables(t *testing.T) {
	tables := BaselineTables()
	indices := BaselineIndices()
	for _, name := range types.StandardTableNames {
		if !strings.Contains(tables[name], "CREATE TABLE "+name) {
			t.Errorf("no baseline table for %s", name)
		}
		for _, idx := range indices[name] {
			if !strings.Contains(idx, " ON "+name+"(") {
				t.Errorf("baseline index %q is not on %s", idx, name)
			}
		}
	}
	for _, col := range types.GrantBodyColumns {
		if !strings.Contains(CreateGrantBodies, col+" ") {
			t.Errorf("grant_bodies baseline lacks column %s", col)
		}
	}
	for _, col := range types.GrantSpendStatusColumns {
		if !strings.Contains(CreateGrantSpendStatuses, col+" ") {
			t.Errorf("grant_spend_statuses baseline lacks column %s", col)
		}
	}
}

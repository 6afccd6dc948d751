// Package sqlite implements the store executor for the grant tables on top
// of database/sql and the modernc.org/sqlite driver.
package sqlite

import (
	"strings"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

// Baseline DDL for the grant tables. Columns are nullable so that rows written
// by older clients, which may leave fields unset, still load.
const (
	CreateGrantBodies = `CREATE TABLE grant_bodies (
    creds_id TEXT PRIMARY KEY,
    trigger_id TEXT,
    trigger_type INTEGER,
    creds TEXT,
    blinded_creds TEXT,
    signed_creds TEXT,
    public_key TEXT,
    batch_proof TEXT,
    status INTEGER
)`

	CreateGrantSpendStatuses = `CREATE TABLE grant_spend_statuses (
    token_id TEXT PRIMARY KEY,
    creds_id TEXT,
    redeemed_at INTEGER,
    redeem_type INTEGER
)`
)

// Baseline index DDL.
const (
	IdxGrantBodiesTriggerID       = `CREATE INDEX idx_grant_bodies_trigger_id ON grant_bodies(trigger_id)`
	IdxGrantSpendStatusesCredsID  = `CREATE INDEX idx_grant_spend_statuses_creds_id ON grant_spend_statuses(creds_id)`
	IdxGrantSpendStatusesRedeemed = `CREATE INDEX idx_grant_spend_statuses_redeemed_at ON grant_spend_statuses(redeemed_at)`
)

// BaselineTables maps each managed table to its baseline CREATE TABLE text.
func BaselineTables() map[string]string {
	return map[string]string{
		types.GrantBodiesTable:        CreateGrantBodies,
		types.GrantSpendStatusesTable: CreateGrantSpendStatuses,
	}
}

// BaselineIndices maps each managed table to its baseline CREATE INDEX texts.
func BaselineIndices() map[string][]string {
	return map[string][]string{
		types.GrantBodiesTable: {IdxGrantBodiesTriggerID},
		types.GrantSpendStatusesTable: {
			IdxGrantSpendStatusesCredsID,
			IdxGrantSpendStatusesRedeemed,
		},
	}
}

// ensureDDL returns the baseline statements in creation order, rewritten to
// be no-ops when the object already exists.
func ensureDDL() []string {
	var stmts []string
	tables := BaselineTables()
	indices := BaselineIndices()
	for _, name := range types.StandardTableNames {
		stmts = append(stmts, ifNotExists(tables[name], "CREATE TABLE "))
		for _, idx := range indices[name] {
			stmts = append(stmts, ifNotExists(idx, "CREATE INDEX "))
		}
	}
	return stmts
}

func ifNotExists(ddl, prefix string) string {
	return strings.Replace(ddl, prefix, prefix+"IF NOT EXISTS ", 1)
}

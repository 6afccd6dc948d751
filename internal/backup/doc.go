// Package backup preserves the grant tables across schema changes.
//
// A Coordinator reads the current grant bodies and spend statuses out of the
// store (BackupBodies, BackupSpendStatuses) and later rewrites both tables
// under a new schema, reinserting the preserved rows (RestoreVgs).
//
// # Restore protocol
//
// RestoreVgs is a state machine with one store call per transition:
//
//	FetchingTableSchemas -> FetchingIndexSchemas -> Rewriting -> Committed
//	        |                        |                  |
//	        +------------------------+------------------+--> Failed
//
// The rewrite is a single transaction assembled in a fixed order: drop the
// captured indices, reconcile each table per the Plan, insert bodies, insert
// spend statuses, recreate the captured indices. Nothing destructive is built
// until both fetch stages have succeeded.
//
// # Tombstones
//
// A row whose every column is NULL is a tombstone. Backups drop tombstones
// silently; see IsAllAbsent.
package backup

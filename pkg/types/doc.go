// Package types defines the store executor interface, grant record types,
// schema descriptors, and standard error types for the grant backup engine.
// Implements: Executor, GrantBody, GrantSpendStatus, TableSchema, IndexSchema,
// Transaction, and the sentinel errors shared by every package.
package types

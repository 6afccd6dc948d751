package types

// Store is an Executor with an attach/detach lifecycle. Callers attach to a
// backend, run backups and restores against it, and detach when done.
type Store interface {
	Executor

	// Attach opens the backend described by config. Creates DataDir if it
	// does not exist. Returns ErrAlreadyAttached if already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrDetached.
	Detach() error
}

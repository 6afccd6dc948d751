package types

import "errors"

// Store errors.
var (
	ErrDatabase       = errors.New("database error")
	ErrSchemaNotFound = errors.New("schema not found")
	ErrDecode         = errors.New("cannot decode row")
)

// Input errors.
var (
	ErrInvalidPlan   = errors.New("invalid restore plan")
	ErrInvalidConfig = errors.New("invalid config")
	ErrInvalidTable  = errors.New("unknown table")
)

// Store lifecycle errors.
var (
	ErrDetached        = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

package record

import "errors"

const (
	CollectionChecks = "checks"
	CollectionUsers  = "users"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

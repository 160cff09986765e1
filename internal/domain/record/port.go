package record

import "context"

// Store keeps JSON documents addressed by collection and identifier.
// Implementations must serialize writes to the same identifier.
type Store interface {
	List(ctx context.Context, collection string) ([]string, error)
	Read(ctx context.Context, collection, id string) ([]byte, error)
	Create(ctx context.Context, collection, id string, data []byte) error
	Update(ctx context.Context, collection, id string, data []byte) error
	// Modify rewrites an existing record with fn(current) while holding the
	// record's write serialization, so concurrent writers cannot interleave.
	Modify(ctx context.Context, collection, id string, fn func(current []byte) ([]byte, error)) error
	Delete(ctx context.Context, collection, id string) error
}

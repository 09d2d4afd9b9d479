package docstore

import "context"

// Store is a read-only document store. Implementations must be safe for
// concurrent use; Count and Find for the same request run in parallel.
type Store interface {
	// Count returns the number of documents in collection matching filter.
	Count(ctx context.Context, collection string, filter []Clause) (int, error)
	// Find returns the documents described by q, in q.Sort order.
	Find(ctx context.Context, collection string, q Query) ([]Document, error)
	// Ping checks connectivity.
	Ping(ctx context.Context) error
	Close() error
}

// Loader is implemented by stores that can be seeded from fixtures. It is
// used by the seed command and tests only; the HTTP surface is read-only.
type Loader interface {
	Store
	// Replace removes every document in collection and inserts docs.
	Replace(ctx context.Context, collection string, docs []Document) error
}

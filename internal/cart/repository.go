package cart

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository defines the cart document operations the service needs.
// Both write primitives are single atomic document updates; the merge-else-
// append sequencing lives in the service.
type Repository interface {
	// EnsureIndexes creates the unique (email, productId) index the append
	// path relies on.
	EnsureIndexes(ctx context.Context) error

	// IncrementLine atomically adds delta to the quantity of the line with
	// the given size. Reports whether a matching document+line existed.
	IncrementLine(ctx context.Context, email, productID, size string, delta int64) (bool, error)

	// AppendLine pushes a new line onto the (email, productID) document,
	// creating the document when absent. The filter excludes documents that
	// already hold the size, so a concurrent append for the same size
	// surfaces as a duplicate-key error rather than a second line.
	AppendLine(ctx context.Context, email, productID string, line Line) error

	// Find returns the documents for email, narrowed to productID when
	// non-empty. No match yields an empty slice.
	Find(ctx context.Context, email, productID string) ([]Document, error)

	// Insert stores a client-supplied document as-is and returns its id.
	Insert(ctx context.Context, doc map[string]any) (primitive.ObjectID, error)

	// DeleteByID removes one document by its own identifier and reports how
	// many documents matched (0 or 1).
	DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error)
}

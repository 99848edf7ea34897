package repository

import (
	"context"

	"github.com/m-mizutani/kioku/pkg/model"
)

// AddInput contains parameters for storing a new memory.
type AddInput struct {
	UserKey  string
	Messages []model.Message
	Metadata map[string]any
}

// SearchInput contains parameters for searching memories. An empty Query
// asks for a sample of the user's most recent memories instead of
// relevance-ranked results; such records carry no score.
type SearchInput struct {
	UserKey string
	Query   string
	Limit   int
}

// Repository is the boundary to the remote memory store. Add, Search and Get
// return decoded JSON as-is: the store does not guarantee a stable response
// shape, and canonicalization is the caller's job (usecase/memory).
//
// Every operation is scoped by the requesting user's key. Implementations
// must never return another user's records.
type Repository interface {
	// Add stores a new memory derived from the given messages.
	Add(ctx context.Context, input AddInput) (any, error)

	// Search performs relevance search over the user's memories.
	Search(ctx context.Context, input SearchInput) ([]any, error)

	// Get retrieves a single memory by ID. Returns model.ErrMemoryNotFound
	// when the ID does not exist for this user.
	Get(ctx context.Context, userKey string, id model.MemoryID) (any, error)

	// Delete removes a single memory by ID. Returns model.ErrMemoryNotFound
	// when the ID does not exist for this user.
	Delete(ctx context.Context, userKey string, id model.MemoryID) error
}

package repository

import (
	"context"

	"github.com/libraria/catalog-service/internal/domain"
)

// GenreRepository handles genre persistence.
type GenreRepository interface {
	// Create inserts a new genre and returns it with its generated id and
	// timestamps populated.
	// Returns domain.ErrAlreadyExists if the name is already taken; the name
	// carries a storage-level unique constraint.
	Create(ctx context.Context, genre *domain.Genre) (*domain.Genre, error)

	// GetByID retrieves a genre by id.
	// Returns domain.ErrNotFound if no matching genre exists.
	GetByID(ctx context.Context, id int64) (*domain.Genre, error)

	// GetByName retrieves a genre by its exact name. Names are stored
	// case-sensitively, so the lookup is case-sensitive too.
	// Returns domain.ErrNotFound if no matching genre exists.
	GetByName(ctx context.Context, name string) (*domain.Genre, error)

	// GetAllByIDs retrieves the genres for every id in ids, preserving input
	// order and skipping duplicate ids. If any id has no matching genre the
	// whole call fails with a domain.MissingReferencesError naming every
	// missing id at once.
	GetAllByIDs(ctx context.Context, ids []int64) ([]*domain.Genre, error)

	// List retrieves genres matching the filter criteria, ordered and paged
	// per the resolved page. Returns the matching genres and the total count
	// of matching records regardless of paging.
	List(ctx context.Context, filter *GenreFilter, page Page) ([]*domain.Genre, int64, error)

	// Update persists the genre's mutable fields and refreshes updated_at.
	// Returns domain.ErrNotFound if no matching genre exists and
	// domain.ErrAlreadyExists if the new name collides with another genre.
	Update(ctx context.Context, genre *domain.Genre) (*domain.Genre, error)

	// Delete removes a genre. Join rows linking books to the genre are
	// removed by the storage-level cascade.
	// Returns domain.ErrNotFound if no matching genre exists.
	Delete(ctx context.Context, id int64) error
}

package repository

import (
	"context"

	"github.com/libraria/catalog-service/internal/domain"
)

// AuthorRepository handles author persistence.
type AuthorRepository interface {
	// Create inserts a new author and returns it with its generated id and
	// timestamps populated.
	Create(ctx context.Context, author *domain.Author) (*domain.Author, error)

	// GetByID retrieves an author by id.
	// Returns domain.ErrNotFound if no matching author exists.
	GetByID(ctx context.Context, id int64) (*domain.Author, error)

	// List retrieves authors matching the filter criteria, ordered and paged
	// per the resolved page. Returns the matching authors and the total count
	// of matching records regardless of paging.
	List(ctx context.Context, filter *AuthorFilter, page Page) ([]*domain.Author, int64, error)

	// Update persists the author's mutable fields and refreshes updated_at.
	// Returns domain.ErrNotFound if no matching author exists.
	Update(ctx context.Context, author *domain.Author) (*domain.Author, error)

	// Delete removes an author. Books owned by the author are removed by the
	// storage-level cascade.
	// Returns domain.ErrNotFound if no matching author exists.
	Delete(ctx context.Context, id int64) error
}

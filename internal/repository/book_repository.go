package repository

import (
	"context"

	"github.com/libraria/catalog-service/internal/domain"
)

// BookRepository handles book persistence together with the author reference
// and the genre links. Methods returning books always return detail rows with
// the author and genres populated in a single round-trip.
type BookRepository interface {
	// Create inserts a new book and its genre links, returning the book with
	// its generated id and timestamps populated. Run it inside a transaction
	// when atomicity between the book row and its links matters.
	// Returns domain.ErrAlreadyExists when the (title, author) pair is taken
	// and domain.ErrNotFound when the author reference does not resolve.
	Create(ctx context.Context, book *domain.Book) (*domain.Book, error)

	// CreateBatch inserts multiple books and their genre links in a single
	// network round-trip per statement kind. Used by the bulk upload flush;
	// callers wrap it in a transaction so a failed batch leaves no partial
	// state.
	CreateBatch(ctx context.Context, books []*domain.Book) ([]*domain.Book, error)

	// GetByID retrieves a book by id with its author and genres.
	// Returns domain.ErrNotFound if no matching book exists.
	GetByID(ctx context.Context, id int64) (*domain.Book, error)

	// GetByTitleAndAuthor retrieves the book with this exact title by this
	// author. Backs the advisory uniqueness check on the (title, author) pair.
	// Returns domain.ErrNotFound if no matching book exists.
	GetByTitleAndAuthor(ctx context.Context, title string, authorID int64) (*domain.Book, error)

	// List retrieves books matching the filter criteria, ordered and paged
	// per the resolved page. Returns the matching books and the total count
	// of matching records regardless of paging; the count is never multiplied
	// by the genre join.
	List(ctx context.Context, filter *BookFilter, page Page) ([]*domain.Book, int64, error)

	// ListAll retrieves every book matching the filter criteria in the given
	// sort order, without paging. Backs report generation.
	ListAll(ctx context.Context, filter *BookFilter, sort SortOrder) ([]*domain.Book, error)

	// Update persists the book's mutable fields, replaces its genre links,
	// and refreshes updated_at. Run it inside a transaction.
	// Returns domain.ErrNotFound if no matching book exists and
	// domain.ErrAlreadyExists when the new (title, author) pair collides.
	Update(ctx context.Context, book *domain.Book) (*domain.Book, error)

	// Delete removes a book; its genre links are removed by the storage-level
	// cascade.
	// Returns domain.ErrNotFound if no matching book exists.
	Delete(ctx context.Context, id int64) error
}

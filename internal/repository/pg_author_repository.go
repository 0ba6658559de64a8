package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/libraria/catalog-service/internal/domain"
)

// Compile-time interface verification.
var _ AuthorRepository = (*PgAuthorRepository)(nil)

// PgAuthorRepository is a PostgreSQL implementation of AuthorRepository.
type PgAuthorRepository struct {
	db DBTX
}

// NewPgAuthorRepository creates a new PostgreSQL author repository.
func NewPgAuthorRepository(db DBTX) *PgAuthorRepository {
	return &PgAuthorRepository{db: db}
}

// Create inserts a new author.
func (r *PgAuthorRepository) Create(ctx context.Context, author *domain.Author) (*domain.Author, error) {
	if author == nil {
		return nil, domain.NewValidationError("author", "author cannot be nil")
	}

	query := `
		INSERT INTO authors (first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id, created_at, updated_at`

	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, author.FirstName, author.LastName, now).
		Scan(&author.ID, &author.CreatedAt, &author.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}

	return author, nil
}

// GetByID retrieves an author by id.
func (r *PgAuthorRepository) GetByID(ctx context.Context, id int64) (*domain.Author, error) {
	query := `
		SELECT id, first_name, last_name, created_at, updated_at
		FROM authors
		WHERE id = $1`

	var author domain.Author
	err := r.db.QueryRow(ctx, query, id).
		Scan(&author.ID, &author.FirstName, &author.LastName, &author.CreatedAt, &author.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("author", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to get author by ID: %w", err)
	}

	return &author, nil
}

// List retrieves authors matching the filter criteria.
func (r *PgAuthorRepository) List(ctx context.Context, filter *AuthorFilter, page Page) ([]*domain.Author, int64, error) {
	spec := AuthorSpecification(filter)
	whereClause := spec.WhereClause()

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM authors %s", whereClause)
	var totalCount int64
	if err := r.db.QueryRow(ctx, countQuery, spec.Args()...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count authors: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT id, first_name, last_name, created_at, updated_at
		FROM authors
		%s
		ORDER BY %s
		%s`,
		whereClause,
		orderByClause(SortableAuthors, page.Sort, ""),
		spec.Paging(page.Size, page.Offset()))

	rows, err := r.db.Query(ctx, selectQuery, spec.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	authors := make([]*domain.Author, 0, page.Size)
	for rows.Next() {
		var author domain.Author
		if err := rows.Scan(&author.ID, &author.FirstName, &author.LastName, &author.CreatedAt, &author.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, &author)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating authors: %w", err)
	}

	return authors, totalCount, nil
}

// Update persists the author's mutable fields.
func (r *PgAuthorRepository) Update(ctx context.Context, author *domain.Author) (*domain.Author, error) {
	if author == nil {
		return nil, domain.NewValidationError("author", "author cannot be nil")
	}

	query := `
		UPDATE authors
		SET first_name = $1, last_name = $2, updated_at = $3
		WHERE id = $4
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query, author.FirstName, author.LastName, time.Now().UTC(), author.ID).
		Scan(&author.CreatedAt, &author.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("author", strconv.FormatInt(author.ID, 10))
		}
		return nil, fmt.Errorf("failed to update author: %w", err)
	}

	return author, nil
}

// Delete removes an author; the books foreign key cascades.
func (r *PgAuthorRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete author: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("author", strconv.FormatInt(id, 10))
	}

	return nil
}

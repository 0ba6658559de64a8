package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/libraria/catalog-service/internal/domain"
)

// Compile-time interface verification.
var _ BookRepository = (*PgBookRepository)(nil)

// PgBookRepository is a PostgreSQL implementation of BookRepository.
type PgBookRepository struct {
	db DBTX
}

// NewPgBookRepository creates a new PostgreSQL book repository.
func NewPgBookRepository(db DBTX) *PgBookRepository {
	return &PgBookRepository{db: db}
}

// bookInsertQuery writes the book row. Genre links go through
// bookLinkGenresQuery afterwards.
const bookInsertQuery = `
	INSERT INTO books (title, description, author_id, year_published, pages, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $6)
	RETURNING id, created_at, updated_at`

// bookLinkGenresQuery attaches a book to a set of genres in one statement.
const bookLinkGenresQuery = `
	INSERT INTO books_genres (book_id, genre_id)
	SELECT $1, unnest($2::bigint[])`

// bookSelectColumns is the detail projection shared by every book read. The
// author row is joined directly and the genres are aggregated as JSON so a
// detail read is a single round-trip.
const bookSelectColumns = `
	b.id, b.title, b.description, b.year_published, b.pages,
	b.created_at, b.updated_at,
	a.id, a.first_name, a.last_name,
	COALESCE(
		json_agg(json_build_object('id', g.id, 'name', g.name) ORDER BY g.id)
			FILTER (WHERE g.id IS NOT NULL),
		'[]'
	)`

// bookSelectJoins joins the author and the genre links for the detail
// projection. Queries using it must group by b.id and a.id.
const bookSelectJoins = `
	FROM books b
	INNER JOIN authors a ON a.id = b.author_id
	LEFT JOIN books_genres bg ON bg.book_id = b.id
	LEFT JOIN genres g ON g.id = bg.genre_id`

// Create inserts a new book and its genre links.
func (r *PgBookRepository) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if book == nil {
		return nil, domain.NewValidationError("book", "book cannot be nil")
	}

	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, bookInsertQuery,
		book.Title,
		nullIfEmpty(book.Description),
		book.AuthorID,
		book.YearPublished,
		book.Pages,
		now,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return nil, translateBookWriteError(err, book)
	}

	if err := r.linkGenres(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// CreateBatch inserts multiple books and their genre links.
// All book rows go out as one pgx.Batch, then all genre links as a second,
// keeping the flush at two network round-trips regardless of batch size.
func (r *PgBookRepository) CreateBatch(ctx context.Context, books []*domain.Book) ([]*domain.Book, error) {
	if len(books) == 0 {
		return []*domain.Book{}, nil
	}

	for i, book := range books {
		if book == nil {
			return nil, domain.NewValidationError("book", fmt.Sprintf("book at index %d is nil", i))
		}
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, book := range books {
		batch.Queue(bookInsertQuery,
			book.Title,
			nullIfEmpty(book.Description),
			book.AuthorID,
			book.YearPublished,
			book.Pages,
			now,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	for i, book := range books {
		if err := br.QueryRow().Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt); err != nil {
			br.Close()
			return nil, fmt.Errorf("failed to insert book at index %d: %w", i, translateBookWriteError(err, book))
		}
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("failed to close book insert batch: %w", err)
	}

	linkBatch := &pgx.Batch{}
	for _, book := range books {
		if ids := book.GenreIDs(); len(ids) > 0 {
			linkBatch.Queue(bookLinkGenresQuery, book.ID, ids)
		}
	}
	if linkBatch.Len() > 0 {
		lbr := r.db.SendBatch(ctx, linkBatch)
		for i := 0; i < linkBatch.Len(); i++ {
			if _, err := lbr.Exec(); err != nil {
				lbr.Close()
				return nil, fmt.Errorf("failed to link genres: %w", err)
			}
		}
		if err := lbr.Close(); err != nil {
			return nil, fmt.Errorf("failed to close genre link batch: %w", err)
		}
	}

	return books, nil
}

// GetByID retrieves a book by id with its author and genres.
func (r *PgBookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	query := fmt.Sprintf(`
		SELECT %s
		%s
		WHERE b.id = $1
		GROUP BY b.id, a.id`, bookSelectColumns, bookSelectJoins)

	book, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("book", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}

	return book, nil
}

// GetByTitleAndAuthor retrieves the book with this exact title by this author.
func (r *PgBookRepository) GetByTitleAndAuthor(ctx context.Context, title string, authorID int64) (*domain.Book, error) {
	if title == "" {
		return nil, domain.NewValidationError("title", "title is required")
	}

	query := fmt.Sprintf(`
		SELECT %s
		%s
		WHERE b.title = $1 AND b.author_id = $2
		GROUP BY b.id, a.id`, bookSelectColumns, bookSelectJoins)

	book, err := scanBook(r.db.QueryRow(ctx, query, title, authorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("book", fmt.Sprintf("%s:%d", title, authorID))
		}
		return nil, fmt.Errorf("failed to get book by title and author: %w", err)
	}

	return book, nil
}

// List retrieves books matching the filter criteria. The count query stays on
// the books table alone; genre membership is probed via EXISTS, so the genre
// join can never multiply the count.
func (r *PgBookRepository) List(ctx context.Context, filter *BookFilter, page Page) ([]*domain.Book, int64, error) {
	spec := BookSpecification(filter)
	whereClause := spec.WhereClause()

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM books b %s", whereClause)
	var totalCount int64
	if err := r.db.QueryRow(ctx, countQuery, spec.Args()...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		%s
		%s
		GROUP BY b.id, a.id
		ORDER BY %s
		%s`,
		bookSelectColumns,
		bookSelectJoins,
		whereClause,
		orderByClause(SortableBooks, page.Sort, "b"),
		spec.Paging(page.Size, page.Offset()))

	books, err := r.queryBooks(ctx, selectQuery, spec.Args(), page.Size)
	if err != nil {
		return nil, 0, err
	}

	return books, totalCount, nil
}

// ListAll retrieves every book matching the filter criteria, without paging.
func (r *PgBookRepository) ListAll(ctx context.Context, filter *BookFilter, sort SortOrder) ([]*domain.Book, error) {
	spec := BookSpecification(filter)

	query := fmt.Sprintf(`
		SELECT %s
		%s
		%s
		GROUP BY b.id, a.id
		ORDER BY %s`,
		bookSelectColumns,
		bookSelectJoins,
		spec.WhereClause(),
		orderByClause(SortableBooks, sort, "b"))

	return r.queryBooks(ctx, query, spec.Args(), 0)
}

// Update persists the book's mutable fields and replaces its genre links.
func (r *PgBookRepository) Update(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if book == nil {
		return nil, domain.NewValidationError("book", "book cannot be nil")
	}

	query := `
		UPDATE books
		SET title = $1, description = $2, author_id = $3, year_published = $4, pages = $5, updated_at = $6
		WHERE id = $7
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		book.Title,
		nullIfEmpty(book.Description),
		book.AuthorID,
		book.YearPublished,
		book.Pages,
		time.Now().UTC(),
		book.ID,
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("book", strconv.FormatInt(book.ID, 10))
		}
		return nil, translateBookWriteError(err, book)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM books_genres WHERE book_id = $1`, book.ID); err != nil {
		return nil, fmt.Errorf("failed to clear genre links: %w", err)
	}
	if err := r.linkGenres(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// Delete removes a book; the join table foreign key cascades.
func (r *PgBookRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("book", strconv.FormatInt(id, 10))
	}

	return nil
}

// linkGenres attaches the book's genres in the join table.
func (r *PgBookRepository) linkGenres(ctx context.Context, book *domain.Book) error {
	ids := book.GenreIDs()
	if len(ids) == 0 {
		return nil
	}

	if _, err := r.db.Exec(ctx, bookLinkGenresQuery, book.ID, ids); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.NewMissingReferencesError("genre", ids)
		}
		return fmt.Errorf("failed to link genres: %w", err)
	}

	return nil
}

// queryBooks runs a detail select and scans the result rows.
func (r *PgBookRepository) queryBooks(ctx context.Context, query string, args []interface{}, sizeHint int) ([]*domain.Book, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]*domain.Book, 0, sizeHint)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// scanBook reads one detail row produced by bookSelectColumns.
func scanBook(row pgx.Row) (*domain.Book, error) {
	var book domain.Book
	var description *string
	var genresJSON []byte

	err := row.Scan(
		&book.ID,
		&book.Title,
		&description,
		&book.YearPublished,
		&book.Pages,
		&book.CreatedAt,
		&book.UpdatedAt,
		&book.Author.ID,
		&book.Author.FirstName,
		&book.Author.LastName,
		&genresJSON,
	)
	if err != nil {
		return nil, err
	}

	if description != nil {
		book.Description = *description
	}
	book.AuthorID = book.Author.ID

	if err := json.Unmarshal(genresJSON, &book.Genres); err != nil {
		return nil, fmt.Errorf("failed to decode genres: %w", err)
	}

	return &book, nil
}

// translateBookWriteError maps constraint violations on book writes to domain
// errors.
func translateBookWriteError(err error, book *domain.Book) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.NewAlreadyExistsError("book", book.Title, "title", "authorId")
		case "23503":
			return domain.NewNotFoundError("author", strconv.FormatInt(book.AuthorID, 10))
		case "23514":
			return domain.NewValidationError("book", pgErr.ConstraintName+" violated")
		}
	}
	return fmt.Errorf("failed to write book: %w", err)
}

// nullIfEmpty maps an empty string to SQL NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

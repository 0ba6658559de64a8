package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libraria/catalog-service/internal/domain"
)

func newTestBook() *domain.Book {
	return &domain.Book{
		Title:         "The Trial",
		Description:   "A man is arrested without being told his crime.",
		YearPublished: 1925,
		Pages:         255,
		AuthorID:      1,
		Genres:        []domain.GenreRef{{ID: 2, Name: "Fiction"}},
	}
}

// bookRowColumns matches the detail projection of bookSelectColumns.
var bookRowColumns = []string{
	"id", "title", "description", "year_published", "pages",
	"created_at", "updated_at",
	"author_id", "first_name", "last_name",
	"genres",
}

func TestPgBookRepository_Create(t *testing.T) {
	t.Run("inserts book row and genre links", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		ctx := context.Background()
		book := newTestBook()

		now := time.Now().UTC()
		mock.ExpectQuery(`INSERT INTO books`).
			WithArgs(book.Title, pgxmock.AnyArg(), book.AuthorID, book.YearPublished, book.Pages, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(10), now, now))
		mock.ExpectExec(`INSERT INTO books_genres`).
			WithArgs(int64(10), int64s(2)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		created, err := repo.Create(ctx, book)
		require.NoError(t, err)
		assert.Equal(t, int64(10), created.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violation to already exists with offending fields", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()

		mock.ExpectQuery(`INSERT INTO books`).
			WithArgs(book.Title, pgxmock.AnyArg(), book.AuthorID, book.YearPublished, book.Pages, pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "books_title_author_id_key"})

		_, err = repo.Create(context.Background(), book)
		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))

		var exists *domain.AlreadyExistsError
		require.True(t, errors.As(err, &exists))
		assert.Equal(t, "book", exists.Entity)
		assert.Equal(t, []string{"title", "authorId"}, exists.Fields)
	})

	t.Run("maps author foreign key violation to not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()
		book.AuthorID = 404

		mock.ExpectQuery(`INSERT INTO books`).
			WithArgs(book.Title, pgxmock.AnyArg(), book.AuthorID, book.YearPublished, book.Pages, pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "books_author_id_fkey"})

		_, err = repo.Create(context.Background(), book)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		var notFound *domain.NotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "author", notFound.Entity)
		assert.Equal(t, "404", notFound.ID)
	})

	t.Run("maps genre foreign key violation to missing references", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()

		now := time.Now().UTC()
		mock.ExpectQuery(`INSERT INTO books`).
			WithArgs(book.Title, pgxmock.AnyArg(), book.AuthorID, book.YearPublished, book.Pages, pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(10), now, now))
		mock.ExpectExec(`INSERT INTO books_genres`).
			WithArgs(int64(10), int64s(2)).
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "books_genres_genre_id_fkey"})

		_, err = repo.Create(context.Background(), book)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		var missing *domain.MissingReferencesError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "genre", missing.Entity)
	})
}

func TestPgBookRepository_CreateBatch(t *testing.T) {
	t.Run("sends book rows and genre links as two batches", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		ctx := context.Background()

		book1 := newTestBook()
		book2 := newTestBook()
		book2.Title = "The Castle"
		book2.Genres = []domain.GenreRef{{ID: 2}, {ID: 5}}
		books := []*domain.Book{book1, book2}

		now := time.Now().UTC()
		insertBatch := mock.ExpectBatch()
		for i, book := range books {
			insertBatch.ExpectQuery(`INSERT INTO books`).
				WithArgs(book.Title, pgxmock.AnyArg(), book.AuthorID, book.YearPublished, book.Pages, pgxmock.AnyArg()).
				WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
					AddRow(int64(10+i), now, now))
		}

		linkBatch := mock.ExpectBatch()
		linkBatch.ExpectExec(`INSERT INTO books_genres`).
			WithArgs(int64(10), int64s(2)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		linkBatch.ExpectExec(`INSERT INTO books_genres`).
			WithArgs(int64(11), int64s(2, 5)).
			WillReturnResult(pgxmock.NewResult("INSERT", 2))

		created, err := repo.CreateBatch(ctx, books)
		require.NoError(t, err)
		require.Len(t, created, 2)
		assert.Equal(t, int64(10), created[0].ID)
		assert.Equal(t, int64(11), created[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty input short-circuits", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		created, err := repo.CreateBatch(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, created)
	})

	t.Run("rejects nil book with its index", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		_, err = repo.CreateBatch(context.Background(), []*domain.Book{newTestBook(), nil})
		assert.Error(t, err)

		var validationErr *domain.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Contains(t, validationErr.Message, "index 1")
	})
}

func TestPgBookRepository_GetByID(t *testing.T) {
	t.Run("returns book with author and genres", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		ctx := context.Background()

		now := time.Now().UTC()
		mock.ExpectQuery(`SELECT .* FROM books b\s+INNER JOIN authors a ON a.id = b.author_id`).
			WithArgs(int64(10)).
			WillReturnRows(pgxmock.NewRows(bookRowColumns).
				AddRow(int64(10), "The Trial", strPtr("A novel."), 1925, 255,
					now, now,
					int64(1), "Franz", "Kafka",
					[]byte(`[{"id":2,"name":"Fiction"},{"id":5,"name":"Classics"}]`)))

		book, err := repo.GetByID(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), book.ID)
		assert.Equal(t, "A novel.", book.Description)
		assert.Equal(t, int64(1), book.AuthorID)
		assert.Equal(t, "Kafka", book.Author.LastName)
		require.Len(t, book.Genres, 2)
		assert.Equal(t, "Classics", book.Genres[1].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("decodes null description and empty genre set", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		ctx := context.Background()

		now := time.Now().UTC()
		mock.ExpectQuery(`SELECT .* FROM books b`).
			WithArgs(int64(11)).
			WillReturnRows(pgxmock.NewRows(bookRowColumns).
				AddRow(int64(11), "The Castle", nil, 1926, 300,
					now, now,
					int64(1), "Franz", "Kafka",
					[]byte(`[]`)))

		book, err := repo.GetByID(ctx, 11)
		require.NoError(t, err)
		assert.Empty(t, book.Description)
		assert.Empty(t, book.Genres)
	})

	t.Run("returns not found error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		mock.ExpectQuery(`SELECT .* FROM books b`).
			WithArgs(int64(404)).
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.GetByID(context.Background(), 404)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestPgBookRepository_GetByTitleAndAuthor(t *testing.T) {
	t.Run("returns the matching book", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		ctx := context.Background()

		now := time.Now().UTC()
		mock.ExpectQuery(`WHERE b.title = \$1 AND b.author_id = \$2`).
			WithArgs("The Trial", int64(1)).
			WillReturnRows(pgxmock.NewRows(bookRowColumns).
				AddRow(int64(10), "The Trial", nil, 1925, 255,
					now, now,
					int64(1), "Franz", "Kafka",
					[]byte(`[]`)))

		book, err := repo.GetByTitleAndAuthor(ctx, "The Trial", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(10), book.ID)
	})

	t.Run("returns not found when the pair is free", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		mock.ExpectQuery(`WHERE b.title = \$1 AND b.author_id = \$2`).
			WithArgs("Unwritten", int64(1)).
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.GetByTitleAndAuthor(context.Background(), "Unwritten", 1)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestPgBookRepository_List(t *testing.T) {
	t.Run("counts on the books table and pages the detail select", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		ctx := context.Background()

		filter := &BookFilter{Title: strPtr("Trial"), GenreIDs: int64s(2)}

		now := time.Now().UTC()
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM books b WHERE LOWER\(b.title\) LIKE \$1 AND EXISTS`).
			WithArgs("%trial%", int64s(2)).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
		mock.ExpectQuery(`GROUP BY b.id, a.id\s+ORDER BY b.id ASC\s+LIMIT \$3 OFFSET \$4`).
			WithArgs("%trial%", int64s(2), 10, 0).
			WillReturnRows(pgxmock.NewRows(bookRowColumns).
				AddRow(int64(10), "The Trial", nil, 1925, 255,
					now, now,
					int64(1), "Franz", "Kafka",
					[]byte(`[{"id":2,"name":"Fiction"}]`)))

		books, total, err := repo.List(ctx, filter, testPage)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, books, 1)
		assert.Equal(t, "The Trial", books[0].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgBookRepository_ListAll(t *testing.T) {
	t.Run("selects without paging in the given sort order", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		ctx := context.Background()

		now := time.Now().UTC()
		mock.ExpectQuery(`GROUP BY b.id, a.id\s+ORDER BY b.year_published DESC$`).
			WillReturnRows(pgxmock.NewRows(bookRowColumns).
				AddRow(int64(11), "The Castle", nil, 1926, 300,
					now, now,
					int64(1), "Franz", "Kafka",
					[]byte(`[]`)).
				AddRow(int64(10), "The Trial", nil, 1925, 255,
					now, now,
					int64(1), "Franz", "Kafka",
					[]byte(`[]`)))

		books, err := repo.ListAll(ctx, nil, SortOrder{Field: "yearPublished", Direction: SortDescending})
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, "The Castle", books[0].Title)
	})
}

func TestPgBookRepository_Update(t *testing.T) {
	t.Run("updates the row and replaces genre links", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		ctx := context.Background()

		book := newTestBook()
		book.ID = 10

		created := time.Now().UTC().Add(-time.Hour)
		updated := time.Now().UTC()
		mock.ExpectQuery(`UPDATE books`).
			WithArgs(book.Title, pgxmock.AnyArg(), book.AuthorID, book.YearPublished, book.Pages, pgxmock.AnyArg(), int64(10)).
			WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, updated))
		mock.ExpectExec(`DELETE FROM books_genres WHERE book_id = \$1`).
			WithArgs(int64(10)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec(`INSERT INTO books_genres`).
			WithArgs(int64(10), int64s(2)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		result, err := repo.Update(ctx, book)
		require.NoError(t, err)
		assert.Equal(t, updated, result.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing book", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)
		book := newTestBook()
		book.ID = 404

		mock.ExpectQuery(`UPDATE books`).
			WithArgs(book.Title, pgxmock.AnyArg(), book.AuthorID, book.YearPublished, book.Pages, pgxmock.AnyArg(), int64(404)).
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.Update(context.Background(), book)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestPgBookRepository_Delete(t *testing.T) {
	t.Run("deletes book", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		mock.ExpectExec(`DELETE FROM books WHERE id = \$1`).
			WithArgs(int64(10)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.Delete(context.Background(), 10))
	})

	t.Run("returns not found when nothing was deleted", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgBookRepository(mock)

		mock.ExpectExec(`DELETE FROM books WHERE id = \$1`).
			WithArgs(int64(404)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err = repo.Delete(context.Background(), 404)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

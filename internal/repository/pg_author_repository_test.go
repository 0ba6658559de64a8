package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libraria/catalog-service/internal/domain"
)

var testPage = Page{Number: 0, Size: 10, Sort: SortOrder{Field: "id", Direction: SortAscending}}

func TestPgAuthorRepository_Create(t *testing.T) {
	t.Run("inserts author and populates generated fields", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAuthorRepository(mock)
		ctx := context.Background()

		now := time.Now().UTC()
		mock.ExpectQuery(`INSERT INTO authors`).
			WithArgs("Franz", "Kafka", pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(1), now, now))

		author, err := repo.Create(ctx, &domain.Author{FirstName: "Franz", LastName: "Kafka"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), author.ID)
		assert.Equal(t, now, author.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects nil author", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAuthorRepository(mock)

		_, err = repo.Create(context.Background(), nil)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestPgAuthorRepository_GetByID(t *testing.T) {
	t.Run("returns author when found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAuthorRepository(mock)
		ctx := context.Background()

		now := time.Now().UTC()
		mock.ExpectQuery(`SELECT id, first_name, last_name, created_at, updated_at FROM authors WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "first_name", "last_name", "created_at", "updated_at"}).
				AddRow(int64(7), "Franz", "Kafka", now, now))

		author, err := repo.GetByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), author.ID)
		assert.Equal(t, "Kafka", author.LastName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAuthorRepository(mock)

		mock.ExpectQuery(`SELECT id, first_name, last_name, created_at, updated_at FROM authors WHERE id = \$1`).
			WithArgs(int64(404)).
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.GetByID(context.Background(), 404)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		var notFound *domain.NotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "author", notFound.Entity)
		assert.Equal(t, "404", notFound.ID)
	})
}

func TestPgAuthorRepository_List(t *testing.T) {
	t.Run("counts and pages with an empty filter", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAuthorRepository(mock)
		ctx := context.Background()

		now := time.Now().UTC()
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM authors`).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
		mock.ExpectQuery(`SELECT id, first_name, last_name, created_at, updated_at\s+FROM authors\s+ORDER BY id ASC\s+LIMIT \$1 OFFSET \$2`).
			WithArgs(10, 0).
			WillReturnRows(pgxmock.NewRows([]string{"id", "first_name", "last_name", "created_at", "updated_at"}).
				AddRow(int64(1), "Franz", "Kafka", now, now).
				AddRow(int64(2), "Jane", "Austen", now, now))

		authors, total, err := repo.List(ctx, nil, testPage)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, authors, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("binds filter conditions before paging", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAuthorRepository(mock)
		ctx := context.Background()

		filter := &AuthorFilter{LastName: strPtr("Kaf")}
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM authors WHERE LOWER\(last_name\) LIKE \$1`).
			WithArgs("%kaf%").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
		mock.ExpectQuery(`WHERE LOWER\(last_name\) LIKE \$1\s+ORDER BY id ASC\s+LIMIT \$2 OFFSET \$3`).
			WithArgs("%kaf%", 10, 0).
			WillReturnRows(pgxmock.NewRows([]string{"id", "first_name", "last_name", "created_at", "updated_at"}).
				AddRow(int64(1), "Franz", "Kafka", time.Now().UTC(), time.Now().UTC()))

		authors, total, err := repo.List(ctx, filter, testPage)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, authors, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgAuthorRepository_Update(t *testing.T) {
	t.Run("persists fields and refreshes updated_at", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAuthorRepository(mock)
		ctx := context.Background()

		created := time.Now().UTC().Add(-time.Hour)
		updated := time.Now().UTC()
		mock.ExpectQuery(`UPDATE authors\s+SET first_name = \$1, last_name = \$2, updated_at = \$3\s+WHERE id = \$4`).
			WithArgs("Franz", "Kafka", pgxmock.AnyArg(), int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, updated))

		author, err := repo.Update(ctx, &domain.Author{ID: 7, FirstName: "Franz", LastName: "Kafka"})
		require.NoError(t, err)
		assert.Equal(t, updated, author.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing author", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAuthorRepository(mock)

		mock.ExpectQuery(`UPDATE authors`).
			WithArgs("Franz", "Kafka", pgxmock.AnyArg(), int64(404)).
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.Update(context.Background(), &domain.Author{ID: 404, FirstName: "Franz", LastName: "Kafka"})
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestPgAuthorRepository_Delete(t *testing.T) {
	t.Run("deletes author", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAuthorRepository(mock)

		mock.ExpectExec(`DELETE FROM authors WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.Delete(context.Background(), 7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when nothing was deleted", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgAuthorRepository(mock)

		mock.ExpectExec(`DELETE FROM authors WHERE id = \$1`).
			WithArgs(int64(404)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err = repo.Delete(context.Background(), 404)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

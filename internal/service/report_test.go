package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/libraria/catalog-service/internal/domain"
	"github.com/libraria/catalog-service/internal/repository"
)

func TestProjectBookRows(t *testing.T) {
	t.Run("flattens author and genre names", func(t *testing.T) {
		books := []*domain.Book{
			{
				ID:            1,
				Title:         "The Trial",
				Description:   "A man is arrested.",
				YearPublished: 1925,
				Pages:         255,
				Author:        domain.AuthorRef{ID: 1, FirstName: "Franz", LastName: "Kafka"},
				Genres:        []domain.GenreRef{{ID: 1, Name: "Fiction"}, {ID: 2, Name: "Absurdist"}},
			},
		}

		rows := ProjectBookRows(books)
		require.Len(t, rows, 1)

		assert.Equal(t, int64(1), rows[0].ID)
		assert.Equal(t, "Franz Kafka", rows[0].Author)
		assert.Equal(t, "Fiction, Absurdist", rows[0].Genres)
	})

	t.Run("blank description and genres stay blank", func(t *testing.T) {
		rows := ProjectBookRows([]*domain.Book{
			{ID: 2, Title: "Untitled", Author: domain.AuthorRef{FirstName: "Anon"}},
		})
		require.Len(t, rows, 1)

		assert.Equal(t, "", rows[0].Description)
		assert.Equal(t, "Anon", rows[0].Author)
		assert.Equal(t, "", rows[0].Genres)
	})

	t.Run("skips nil entries and preserves order", func(t *testing.T) {
		rows := ProjectBookRows([]*domain.Book{
			{ID: 1, Title: "First"},
			nil,
			{ID: 2, Title: "Second"},
		})
		require.Len(t, rows, 2)
		assert.Equal(t, "First", rows[0].Title)
		assert.Equal(t, "Second", rows[1].Title)
	})
}

func TestWriteXLSX(t *testing.T) {
	t.Run("writes the header and data rows in column order", func(t *testing.T) {
		var buf bytes.Buffer
		rows := []ReportRow{
			{ID: 1, Title: "The Trial", Description: "d", Author: "Franz Kafka", YearPublished: 1925, Pages: 255, Genres: "Fiction"},
			{ID: 2, Title: "The Castle", Author: "Franz Kafka", YearPublished: 1926, Pages: 352},
		}

		require.NoError(t, WriteXLSX(&buf, rows))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()

		header, err := f.GetRows(reportSheet)
		require.NoError(t, err)
		require.Len(t, header, 3)
		assert.Equal(t, []string{"id", "title", "description", "author", "yearPublished", "pages", "genres"}, header[0])

		title, err := f.GetCellValue(reportSheet, "B2")
		require.NoError(t, err)
		assert.Equal(t, "The Trial", title)

		year, err := f.GetCellValue(reportSheet, "E3")
		require.NoError(t, err)
		assert.Equal(t, "1926", year)
	})

	t.Run("an empty row set still writes the header", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteXLSX(&buf, nil))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(reportSheet)
		require.NoError(t, err)
		require.Len(t, rows, 1)
	})
}

func TestBookService_ExportReport(t *testing.T) {
	t.Run("exports every matching book with the requested sort", func(t *testing.T) {
		f := newBookServiceFixture()
		f.books.listAllFn = func(_ context.Context, _ *repository.BookFilter, sort repository.SortOrder) ([]*domain.Book, error) {
			assert.Equal(t, repository.SortOrder{Field: "title", Direction: repository.SortDescending}, sort)
			return []*domain.Book{
				{ID: 2, Title: "The Castle", Author: domain.AuthorRef{FirstName: "Franz", LastName: "Kafka"}},
				{ID: 1, Title: "Amerika", Author: domain.AuthorRef{FirstName: "Franz", LastName: "Kafka"}},
			}, nil
		}

		var buf bytes.Buffer
		sort := "title,desc"
		count, err := f.svc.ExportReport(context.Background(), &repository.BookFilter{
			PageFilter: repository.PageFilter{Sort: &sort},
		}, &buf)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		wb, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer wb.Close()

		rows, err := wb.GetRows(reportSheet)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "The Castle", rows[1][1])
		assert.Equal(t, "Amerika", rows[2][1])
	})

	t.Run("a missing sort uses the configured default", func(t *testing.T) {
		f := newBookServiceFixture()
		f.books.listAllFn = func(_ context.Context, _ *repository.BookFilter, sort repository.SortOrder) ([]*domain.Book, error) {
			assert.Equal(t, repository.SortOrder{Field: "id", Direction: repository.SortAscending}, sort)
			return nil, nil
		}

		var buf bytes.Buffer
		count, err := f.svc.ExportReport(context.Background(), nil, &buf)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("rejects an invalid sort expression", func(t *testing.T) {
		f := newBookServiceFixture()

		var buf bytes.Buffer
		sort := "drop table,desc"
		_, err := f.svc.ExportReport(context.Background(), &repository.BookFilter{
			PageFilter: repository.PageFilter{Sort: &sort},
		}, &buf)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, buf.Len())
	})
}

package httpserver

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/libraria/catalog-service/internal/observability"
	"github.com/libraria/catalog-service/internal/repository"
	"github.com/libraria/catalog-service/internal/service"
)

// createBook handles POST /api/books.
func (s *Server) createBook(w http.ResponseWriter, r *http.Request) {
	var input service.BookInput
	if !decodeBody(w, r, &input) {
		return
	}

	book, err := s.books.Create(r.Context(), &input)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	writeCreated(w, "/api/books", book.ID, book)
}

// getBook handles GET /api/books/{id}.
func (s *Server) getBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	book, err := s.books.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

// listBooks handles POST /api/books/_list.
func (s *Server) listBooks(w http.ResponseWriter, r *http.Request) {
	var filter repository.BookFilter
	if !decodeBody(w, r, &filter) {
		return
	}

	page, err := s.books.List(r.Context(), &filter)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// updateBook handles PUT /api/books/{id}.
func (s *Server) updateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var input service.BookInput
	if !decodeBody(w, r, &input) {
		return
	}

	book, err := s.books.UpdateByID(r.Context(), id, &input)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

// deleteBook handles DELETE /api/books/{id}.
func (s *Server) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := s.books.DeleteByID(r.Context(), id); err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// exportBookReport handles POST /api/books/_report. The workbook is rendered
// into memory first so a failed export still gets a proper error response.
func (s *Server) exportBookReport(w http.ResponseWriter, r *http.Request) {
	var filter repository.BookFilter
	if !decodeBody(w, r, &filter) {
		return
	}

	var buf bytes.Buffer
	if _, err := s.books.ExportReport(r.Context(), &filter, &buf); err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="report.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to stream report to client")
	}
}

// uploadBooks handles POST /api/books/upload.
func (s *Server) uploadBooks(w http.ResponseWriter, r *http.Request) {
	file, header, ok := s.uploadFileReader(w, r)
	if !ok {
		return
	}
	defer file.Close()

	logger := observability.WithUploadContext(s.logger, header.Filename, header.Size)

	result, err := s.books.UploadBooks(r.Context(), file)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	logger.Info().
		Int("total", result.TotalCount).
		Int("created", result.CreatedCount).
		Int("failed", result.FailedCount).
		Msg("Upload finished")

	writeJSON(w, http.StatusOK, result)
}

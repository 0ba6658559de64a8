package httpserver

import (
	"net/http"

	"github.com/libraria/catalog-service/internal/repository"
	"github.com/libraria/catalog-service/internal/service"
)

// createAuthor handles POST /api/authors.
func (s *Server) createAuthor(w http.ResponseWriter, r *http.Request) {
	var input service.AuthorInput
	if !decodeBody(w, r, &input) {
		return
	}

	author, err := s.authors.Create(r.Context(), &input)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	writeCreated(w, "/api/authors", author.ID, author)
}

// getAuthor handles GET /api/authors/{id}.
func (s *Server) getAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	author, err := s.authors.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, author)
}

// listAuthors handles POST /api/authors/_list.
func (s *Server) listAuthors(w http.ResponseWriter, r *http.Request) {
	var filter repository.AuthorFilter
	if !decodeBody(w, r, &filter) {
		return
	}

	page, err := s.authors.List(r.Context(), &filter)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// updateAuthor handles PUT /api/authors/{id}.
func (s *Server) updateAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var input service.AuthorInput
	if !decodeBody(w, r, &input) {
		return
	}

	author, err := s.authors.UpdateByID(r.Context(), id, &input)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, author)
}

// deleteAuthor handles DELETE /api/authors/{id}.
func (s *Server) deleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := s.authors.DeleteByID(r.Context(), id); err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

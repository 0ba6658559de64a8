package httpserver

import (
	"net/http"

	"github.com/libraria/catalog-service/internal/repository"
	"github.com/libraria/catalog-service/internal/service"
)

// createGenre handles POST /api/genres.
func (s *Server) createGenre(w http.ResponseWriter, r *http.Request) {
	var input service.GenreInput
	if !decodeBody(w, r, &input) {
		return
	}

	genre, err := s.genres.Create(r.Context(), &input)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	writeCreated(w, "/api/genres", genre.ID, genre)
}

// getGenre handles GET /api/genres/{id}.
func (s *Server) getGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	genre, err := s.genres.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, genre)
}

// listGenres handles POST /api/genres/_list.
func (s *Server) listGenres(w http.ResponseWriter, r *http.Request) {
	var filter repository.GenreFilter
	if !decodeBody(w, r, &filter) {
		return
	}

	page, err := s.genres.List(r.Context(), &filter)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// updateGenre handles PUT /api/genres/{id}.
func (s *Server) updateGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var input service.GenreInput
	if !decodeBody(w, r, &input) {
		return
	}

	genre, err := s.genres.UpdateByID(r.Context(), id, &input)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, genre)
}

// deleteGenre handles DELETE /api/genres/{id}.
func (s *Server) deleteGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := s.genres.DeleteByID(r.Context(), id); err != nil {
		writeDomainError(w, s.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

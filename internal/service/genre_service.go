package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/libraria/catalog-service/internal/cache"
	"github.com/libraria/catalog-service/internal/domain"
	"github.com/libraria/catalog-service/internal/observability"
	"github.com/libraria/catalog-service/internal/repository"
)

// GenreService implements the genre resource operations. Genre names are
// globally unique; the service check is advisory and the unique constraint in
// storage is authoritative. Genres are cached under both an id key and a
// secondary name key.
type GenreService struct {
	genres   repository.GenreRepository
	cache    cache.EntityCache
	metrics  *observability.Metrics
	logger   zerolog.Logger
	defaults repository.PageDefaults
}

// NewGenreService creates a new genre service.
func NewGenreService(
	genres repository.GenreRepository,
	entityCache cache.EntityCache,
	metrics *observability.Metrics,
	logger zerolog.Logger,
	defaults repository.PageDefaults,
) *GenreService {
	return &GenreService{
		genres:   genres,
		cache:    entityCache,
		metrics:  metrics,
		logger:   logger.With().Str("component", "genre_service").Logger(),
		defaults: defaults,
	}
}

// Create validates the input, checks name uniqueness, persists the genre, and
// populates both cache keys.
func (s *GenreService) Create(ctx context.Context, input *GenreInput) (*domain.Genre, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if err := s.checkNameFree(ctx, input.Name); err != nil {
		return nil, err
	}

	genre, err := s.genres.Create(ctx, &domain.Genre{Name: input.Name})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntityCreated("genre")
	s.putCacheEntries(ctx, genre)
	s.logger.Info().Int64("entity_id", genre.ID).Msg("Created genre")

	return genre, nil
}

// GetByID retrieves a genre, reading through the cache.
func (s *GenreService) GetByID(ctx context.Context, id int64) (*domain.Genre, error) {
	var cached domain.Genre
	hit, err := s.cache.Get(ctx, cache.GenreKey(id), &cached)
	if err != nil {
		s.logger.Warn().Err(err).Int64("entity_id", id).Msg("Cache read failed")
	}
	if hit {
		s.metrics.RecordCacheHit("genre")
		return &cached, nil
	}
	s.metrics.RecordCacheMiss("genre")

	genre, err := s.genres.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.putCacheEntries(ctx, genre)
	return genre, nil
}

// GetByName retrieves a genre by exact name, reading through the secondary
// name-keyed cache entry.
func (s *GenreService) GetByName(ctx context.Context, name string) (*domain.Genre, error) {
	var cached domain.Genre
	hit, err := s.cache.Get(ctx, cache.GenreNameKey(name), &cached)
	if err != nil {
		s.logger.Warn().Err(err).Str("name", name).Msg("Cache read failed")
	}
	if hit {
		s.metrics.RecordCacheHit("genre")
		return &cached, nil
	}
	s.metrics.RecordCacheMiss("genre")

	genre, err := s.genres.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	s.putCacheEntries(ctx, genre)
	return genre, nil
}

// List retrieves a page of genres matching the filter.
func (s *GenreService) List(ctx context.Context, filter *repository.GenreFilter) (*Page[*domain.Genre], error) {
	var pageFilter repository.PageFilter
	if filter != nil {
		pageFilter = filter.PageFilter
	}
	if err := validateFilterSort(pageFilter.Sort, repository.SortableGenres); err != nil {
		return nil, err
	}

	page := repository.ResolvePage(pageFilter, s.defaults)

	start := time.Now()
	genres, total, err := s.genres.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordListQuery("genre", time.Since(start).Seconds())

	return NewPage(genres, page, total), nil
}

// UpdateByID applies a field-by-field diff; renaming re-checks uniqueness and
// evicts the old name key. An update that changes nothing returns the current
// genre without a write.
func (s *GenreService) UpdateByID(ctx context.Context, id int64, input *GenreInput) (*domain.Genre, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	current, err := s.genres.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.Name == input.Name {
		return current, nil
	}

	if err := s.checkNameFree(ctx, input.Name); err != nil {
		return nil, err
	}

	oldName := current.Name
	current.Name = input.Name

	updated, err := s.genres.Update(ctx, current)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntityUpdated("genre")
	cacheEvict(ctx, s.cache, s.logger, cache.GenreNameKey(oldName))
	s.putCacheEntries(ctx, updated)
	s.logger.Info().Int64("entity_id", id).Msg("Updated genre")

	return updated, nil
}

// DeleteByID removes a genre and evicts both of its cache keys.
func (s *GenreService) DeleteByID(ctx context.Context, id int64) error {
	current, err := s.genres.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.genres.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.RecordEntityDeleted("genre")
	cacheEvict(ctx, s.cache, s.logger, cache.GenreKey(id), cache.GenreNameKey(current.Name))
	s.logger.Info().Int64("entity_id", id).Msg("Deleted genre")

	return nil
}

// checkNameFree is the advisory uniqueness check on the genre name. It exists
// for the fast path and the richer error payload; the storage constraint is
// what actually guarantees uniqueness under concurrency.
func (s *GenreService) checkNameFree(ctx context.Context, name string) error {
	existing, err := s.genres.GetByName(ctx, name)
	if err == nil {
		return domain.NewAlreadyExistsError("genre", strconv.FormatInt(existing.ID, 10), "name")
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// putCacheEntries populates both the id-keyed and name-keyed entries.
func (s *GenreService) putCacheEntries(ctx context.Context, genre *domain.Genre) {
	cachePut(ctx, s.cache, s.logger, cache.GenreKey(genre.ID), genre)
	cachePut(ctx, s.cache, s.logger, cache.GenreNameKey(genre.Name), genre)
}

package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/libraria/catalog-service/internal/cache"
	"github.com/libraria/catalog-service/internal/domain"
	"github.com/libraria/catalog-service/internal/observability"
	"github.com/libraria/catalog-service/internal/repository"
)

// AuthorService implements the author resource operations.
type AuthorService struct {
	authors  repository.AuthorRepository
	cache    cache.EntityCache
	metrics  *observability.Metrics
	logger   zerolog.Logger
	defaults repository.PageDefaults
}

// NewAuthorService creates a new author service.
func NewAuthorService(
	authors repository.AuthorRepository,
	entityCache cache.EntityCache,
	metrics *observability.Metrics,
	logger zerolog.Logger,
	defaults repository.PageDefaults,
) *AuthorService {
	return &AuthorService{
		authors:  authors,
		cache:    entityCache,
		metrics:  metrics,
		logger:   logger.With().Str("component", "author_service").Logger(),
		defaults: defaults,
	}
}

// Create validates the input, persists a new author, and populates the cache.
func (s *AuthorService) Create(ctx context.Context, input *AuthorInput) (*domain.Author, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	author, err := s.authors.Create(ctx, &domain.Author{
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntityCreated("author")
	cachePut(ctx, s.cache, s.logger, cache.AuthorKey(author.ID), author)
	s.logger.Info().Int64("entity_id", author.ID).Msg("Created author")

	return author, nil
}

// GetByID retrieves an author, reading through the cache.
func (s *AuthorService) GetByID(ctx context.Context, id int64) (*domain.Author, error) {
	var cached domain.Author
	hit, err := s.cache.Get(ctx, cache.AuthorKey(id), &cached)
	if err != nil {
		s.logger.Warn().Err(err).Int64("entity_id", id).Msg("Cache read failed")
	}
	if hit {
		s.metrics.RecordCacheHit("author")
		return &cached, nil
	}
	s.metrics.RecordCacheMiss("author")

	author, err := s.authors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cachePut(ctx, s.cache, s.logger, cache.AuthorKey(id), author)
	return author, nil
}

// List retrieves a page of authors matching the filter.
func (s *AuthorService) List(ctx context.Context, filter *repository.AuthorFilter) (*Page[*domain.Author], error) {
	var pageFilter repository.PageFilter
	if filter != nil {
		pageFilter = filter.PageFilter
	}
	if err := validateFilterSort(pageFilter.Sort, repository.SortableAuthors); err != nil {
		return nil, err
	}

	page := repository.ResolvePage(pageFilter, s.defaults)

	start := time.Now()
	authors, total, err := s.authors.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordListQuery("author", time.Since(start).Seconds())

	return NewPage(authors, page, total), nil
}

// UpdateByID applies a field-by-field diff; an update that changes nothing
// returns the current author without a write.
func (s *AuthorService) UpdateByID(ctx context.Context, id int64, input *AuthorInput) (*domain.Author, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	current, err := s.authors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.FirstName == input.FirstName && current.LastName == input.LastName {
		return current, nil
	}

	current.FirstName = input.FirstName
	current.LastName = input.LastName

	updated, err := s.authors.Update(ctx, current)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntityUpdated("author")
	cachePut(ctx, s.cache, s.logger, cache.AuthorKey(id), updated)
	s.logger.Info().Int64("entity_id", id).Msg("Updated author")

	return updated, nil
}

// DeleteByID removes an author; owned books cascade away in storage.
func (s *AuthorService) DeleteByID(ctx context.Context, id int64) error {
	if err := s.authors.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.RecordEntityDeleted("author")
	cacheEvict(ctx, s.cache, s.logger, cache.AuthorKey(id))
	s.logger.Info().Int64("entity_id", id).Msg("Deleted author")

	return nil
}

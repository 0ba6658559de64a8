package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/libraria/catalog-service/internal/cache"
	"github.com/libraria/catalog-service/internal/domain"
	"github.com/libraria/catalog-service/internal/events"
	"github.com/libraria/catalog-service/internal/observability"
	"github.com/libraria/catalog-service/internal/repository"
)

// BookServiceConfig carries the tunables of the book service.
type BookServiceConfig struct {
	// PageDefaults are the paging defaults for list queries.
	PageDefaults repository.PageDefaults

	// UploadBatchSize is the number of staged upload items flushed per
	// transaction.
	UploadBatchSize int
}

// BookService implements the book resource operations. Multi-step writes run
// inside a single transaction; the (title, author) uniqueness check is
// advisory, with the storage constraint authoritative. A created book is
// announced on the event stream after its transaction commits.
type BookService struct {
	tx        Transactor
	books     repository.BookRepository
	authors   repository.AuthorRepository
	genres    repository.GenreRepository
	cache     cache.EntityCache
	publisher events.Publisher
	metrics   *observability.Metrics
	logger    zerolog.Logger
	config    BookServiceConfig

	// txBooks builds a transaction-scoped book repository. Overridable in
	// tests.
	txBooks func(db repository.DBTX) repository.BookRepository
}

// NewBookService creates a new book service.
func NewBookService(
	tx Transactor,
	books repository.BookRepository,
	authors repository.AuthorRepository,
	genres repository.GenreRepository,
	entityCache cache.EntityCache,
	publisher events.Publisher,
	metrics *observability.Metrics,
	logger zerolog.Logger,
	config BookServiceConfig,
) *BookService {
	return &BookService{
		tx:        tx,
		books:     books,
		authors:   authors,
		genres:    genres,
		cache:     entityCache,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "book_service").Logger(),
		config:    config,
		txBooks: func(db repository.DBTX) repository.BookRepository {
			return repository.NewPgBookRepository(db)
		},
	}
}

// Create validates the input, enforces the uniqueness and reference
// invariants, persists the book and its genre links in one transaction, then
// populates the cache and announces the creation.
func (s *BookService) Create(ctx context.Context, input *BookInput) (*domain.Book, error) {
	book, err := s.assemble(ctx, input)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := s.txBooks(tx).Create(ctx, book)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntityCreated("book")
	cachePut(ctx, s.cache, s.logger, cache.BookKey(book.ID), book)
	s.publishCreated(ctx, book)
	s.logger.Info().Int64("entity_id", book.ID).Msg("Created book")

	return book, nil
}

// GetByID retrieves a book, reading through the cache.
func (s *BookService) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	var cached domain.Book
	hit, err := s.cache.Get(ctx, cache.BookKey(id), &cached)
	if err != nil {
		s.logger.Warn().Err(err).Int64("entity_id", id).Msg("Cache read failed")
	}
	if hit {
		s.metrics.RecordCacheHit("book")
		return &cached, nil
	}
	s.metrics.RecordCacheMiss("book")

	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cachePut(ctx, s.cache, s.logger, cache.BookKey(id), book)
	return book, nil
}

// List retrieves a page of books matching the filter.
func (s *BookService) List(ctx context.Context, filter *repository.BookFilter) (*Page[*domain.Book], error) {
	var pageFilter repository.PageFilter
	if filter != nil {
		pageFilter = filter.PageFilter
	}
	if err := validateFilterSort(pageFilter.Sort, repository.SortableBooks); err != nil {
		return nil, err
	}

	page := repository.ResolvePage(pageFilter, s.config.PageDefaults)

	start := time.Now()
	books, total, err := s.books.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordListQuery("book", time.Since(start).Seconds())

	return NewPage(books, page, total), nil
}

// UpdateByID applies a field-by-field diff. Only a real change triggers the
// uniqueness re-check, reference re-resolution, and the transactional write;
// a no-op update returns the current book untouched.
func (s *BookService) UpdateByID(ctx context.Context, id int64, input *BookInput) (*domain.Book, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	current, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pairChanged := current.Title != input.Title || current.AuthorID != input.AuthorID
	genresChanged := !equalIDSets(current.GenreIDs(), input.GenreIDs)
	changed := pairChanged ||
		genresChanged ||
		current.Description != input.Description ||
		current.YearPublished != input.YearPublished ||
		current.Pages != input.Pages

	if !changed {
		return current, nil
	}

	if pairChanged {
		if err := s.checkPairFree(ctx, input.Title, input.AuthorID); err != nil {
			return nil, err
		}
	}

	author := current.Author
	if current.AuthorID != input.AuthorID {
		resolved, err := s.authors.GetByID(ctx, input.AuthorID)
		if err != nil {
			return nil, err
		}
		author = domain.AuthorRef{ID: resolved.ID, FirstName: resolved.FirstName, LastName: resolved.LastName}
	}

	genreRefs := current.Genres
	if genresChanged {
		genreRefs, err = s.resolveGenres(ctx, input.GenreIDs)
		if err != nil {
			return nil, err
		}
	}

	current.Title = input.Title
	current.Description = input.Description
	current.YearPublished = input.YearPublished
	current.Pages = input.Pages
	current.AuthorID = input.AuthorID
	current.Author = author
	current.Genres = genreRefs

	err = s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := s.txBooks(tx).Update(ctx, current)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEntityUpdated("book")
	cachePut(ctx, s.cache, s.logger, cache.BookKey(id), current)
	s.logger.Info().Int64("entity_id", id).Msg("Updated book")

	return current, nil
}

// DeleteByID removes a book and evicts its cache entry.
func (s *BookService) DeleteByID(ctx context.Context, id int64) error {
	if err := s.books.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.RecordEntityDeleted("book")
	cacheEvict(ctx, s.cache, s.logger, cache.BookKey(id))
	s.logger.Info().Int64("entity_id", id).Msg("Deleted book")

	return nil
}

// assemble validates an input and enforces the write invariants, returning the
// fully resolved book ready to persist.
func (s *BookService) assemble(ctx context.Context, input *BookInput) (*domain.Book, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if err := s.checkPairFree(ctx, input.Title, input.AuthorID); err != nil {
		return nil, err
	}

	author, err := s.authors.GetByID(ctx, input.AuthorID)
	if err != nil {
		return nil, err
	}

	genreRefs, err := s.resolveGenres(ctx, input.GenreIDs)
	if err != nil {
		return nil, err
	}

	return &domain.Book{
		Title:         input.Title,
		Description:   input.Description,
		YearPublished: input.YearPublished,
		Pages:         input.Pages,
		AuthorID:      author.ID,
		Author:        domain.AuthorRef{ID: author.ID, FirstName: author.FirstName, LastName: author.LastName},
		Genres:        genreRefs,
	}, nil
}

// checkPairFree is the advisory uniqueness check on the (title, author) pair.
func (s *BookService) checkPairFree(ctx context.Context, title string, authorID int64) error {
	existing, err := s.books.GetByTitleAndAuthor(ctx, title, authorID)
	if err == nil {
		return domain.NewAlreadyExistsError("book", strconv.FormatInt(existing.ID, 10), "title", "authorId")
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// resolveGenres resolves every genre id, reporting all missing ids together.
func (s *BookService) resolveGenres(ctx context.Context, ids []int64) ([]domain.GenreRef, error) {
	genres, err := s.genres.GetAllByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	refs := make([]domain.GenreRef, 0, len(genres))
	for _, g := range genres {
		refs = append(refs, domain.GenreRef{ID: g.ID, Name: g.Name})
	}
	return refs, nil
}

// publishCreated announces a created book. Publish failures are logged and
// swallowed; the write has already committed.
func (s *BookService) publishCreated(ctx context.Context, book *domain.Book) {
	logger := observability.WithEntityContext(s.logger, "book", book.ID)

	event, err := domain.NewBookCreatedEvent(book)
	if err != nil {
		s.metrics.RecordEventFailed(domain.EventTypeBookCreated)
		logger.Warn().Err(err).Msg("Failed to build book created event")
		return
	}

	if err := s.publisher.PublishBookEvent(ctx, event); err != nil {
		s.metrics.RecordEventFailed(domain.EventTypeBookCreated)
		logger.Warn().Err(err).Msg("Failed to publish book created event")
		return
	}

	s.metrics.RecordEventPublished(domain.EventTypeBookCreated)
}

// equalIDSets compares two id sets ignoring order and duplicates.
func equalIDSets(a, b []int64) bool {
	seen := make(map[int64]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}

	matched := make(map[int64]struct{}, len(b))
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			return false
		}
		matched[id] = struct{}{}
	}

	return len(matched) == len(seen)
}

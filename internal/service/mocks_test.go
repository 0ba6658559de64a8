package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/libraria/catalog-service/internal/domain"
	"github.com/libraria/catalog-service/internal/observability"
	"github.com/libraria/catalog-service/internal/repository"
)

// promauto registers metrics on the global registry, so the whole package
// shares one instance.
var testMetrics = observability.NewMetrics("test_service")

var testLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockAuthorRepo implements repository.AuthorRepository for service tests.
type mockAuthorRepo struct {
	createFn  func(ctx context.Context, author *domain.Author) (*domain.Author, error)
	getByIDFn func(ctx context.Context, id int64) (*domain.Author, error)
	listFn    func(ctx context.Context, filter *repository.AuthorFilter, page repository.Page) ([]*domain.Author, int64, error)
	updateFn  func(ctx context.Context, author *domain.Author) (*domain.Author, error)
	deleteFn  func(ctx context.Context, id int64) error
}

func (m *mockAuthorRepo) Create(ctx context.Context, author *domain.Author) (*domain.Author, error) {
	if m.createFn != nil {
		return m.createFn(ctx, author)
	}
	author.ID = 1
	return author, nil
}

func (m *mockAuthorRepo) GetByID(ctx context.Context, id int64) (*domain.Author, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.NewNotFoundError("author", "")
}

func (m *mockAuthorRepo) List(ctx context.Context, filter *repository.AuthorFilter, page repository.Page) ([]*domain.Author, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter, page)
	}
	return nil, 0, nil
}

func (m *mockAuthorRepo) Update(ctx context.Context, author *domain.Author) (*domain.Author, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, author)
	}
	return author, nil
}

func (m *mockAuthorRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockGenreRepo implements repository.GenreRepository for service tests.
type mockGenreRepo struct {
	createFn      func(ctx context.Context, genre *domain.Genre) (*domain.Genre, error)
	getByIDFn     func(ctx context.Context, id int64) (*domain.Genre, error)
	getByNameFn   func(ctx context.Context, name string) (*domain.Genre, error)
	getAllByIDsFn func(ctx context.Context, ids []int64) ([]*domain.Genre, error)
	listFn        func(ctx context.Context, filter *repository.GenreFilter, page repository.Page) ([]*domain.Genre, int64, error)
	updateFn      func(ctx context.Context, genre *domain.Genre) (*domain.Genre, error)
	deleteFn      func(ctx context.Context, id int64) error
}

func (m *mockGenreRepo) Create(ctx context.Context, genre *domain.Genre) (*domain.Genre, error) {
	if m.createFn != nil {
		return m.createFn(ctx, genre)
	}
	genre.ID = 1
	return genre, nil
}

func (m *mockGenreRepo) GetByID(ctx context.Context, id int64) (*domain.Genre, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.NewNotFoundError("genre", "")
}

func (m *mockGenreRepo) GetByName(ctx context.Context, name string) (*domain.Genre, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, domain.NewNotFoundError("genre", "")
}

func (m *mockGenreRepo) GetAllByIDs(ctx context.Context, ids []int64) ([]*domain.Genre, error) {
	if m.getAllByIDsFn != nil {
		return m.getAllByIDsFn(ctx, ids)
	}
	genres := make([]*domain.Genre, 0, len(ids))
	for _, id := range ids {
		genres = append(genres, &domain.Genre{ID: id, Name: "genre"})
	}
	return genres, nil
}

func (m *mockGenreRepo) List(ctx context.Context, filter *repository.GenreFilter, page repository.Page) ([]*domain.Genre, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter, page)
	}
	return nil, 0, nil
}

func (m *mockGenreRepo) Update(ctx context.Context, genre *domain.Genre) (*domain.Genre, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, genre)
	}
	return genre, nil
}

func (m *mockGenreRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockBookRepo implements repository.BookRepository for service tests.
type mockBookRepo struct {
	createFn              func(ctx context.Context, book *domain.Book) (*domain.Book, error)
	createBatchFn         func(ctx context.Context, books []*domain.Book) ([]*domain.Book, error)
	getByIDFn             func(ctx context.Context, id int64) (*domain.Book, error)
	getByTitleAndAuthorFn func(ctx context.Context, title string, authorID int64) (*domain.Book, error)
	listFn                func(ctx context.Context, filter *repository.BookFilter, page repository.Page) ([]*domain.Book, int64, error)
	listAllFn             func(ctx context.Context, filter *repository.BookFilter, sort repository.SortOrder) ([]*domain.Book, error)
	updateFn              func(ctx context.Context, book *domain.Book) (*domain.Book, error)
	deleteFn              func(ctx context.Context, id int64) error
}

func (m *mockBookRepo) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if m.createFn != nil {
		return m.createFn(ctx, book)
	}
	book.ID = 1
	return book, nil
}

func (m *mockBookRepo) CreateBatch(ctx context.Context, books []*domain.Book) ([]*domain.Book, error) {
	if m.createBatchFn != nil {
		return m.createBatchFn(ctx, books)
	}
	for i, b := range books {
		b.ID = int64(i + 1)
	}
	return books, nil
}

func (m *mockBookRepo) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.NewNotFoundError("book", "")
}

func (m *mockBookRepo) GetByTitleAndAuthor(ctx context.Context, title string, authorID int64) (*domain.Book, error) {
	if m.getByTitleAndAuthorFn != nil {
		return m.getByTitleAndAuthorFn(ctx, title, authorID)
	}
	return nil, domain.NewNotFoundError("book", "")
}

func (m *mockBookRepo) List(ctx context.Context, filter *repository.BookFilter, page repository.Page) ([]*domain.Book, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter, page)
	}
	return nil, 0, nil
}

func (m *mockBookRepo) ListAll(ctx context.Context, filter *repository.BookFilter, sort repository.SortOrder) ([]*domain.Book, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx, filter, sort)
	}
	return nil, nil
}

func (m *mockBookRepo) Update(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, book)
	}
	return book, nil
}

func (m *mockBookRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// fakeTransactor runs the transaction callback with a nil tx. Tests that
// exercise transactional paths override BookService.txBooks so the nil tx is
// never touched.
type fakeTransactor struct {
	calls int
	err   error
}

func (f *fakeTransactor) WithTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

// fakeCache is an in-memory cache.EntityCache with the same JSON round-trip
// semantics as the Redis implementation.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	putErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *fakeCache) Put(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) Evict(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// mockPublisher implements events.Publisher for service tests.
type mockPublisher struct {
	mu        sync.Mutex
	published []*domain.BookEvent
	err       error
}

func (p *mockPublisher) PublishBookEvent(_ context.Context, event *domain.BookEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

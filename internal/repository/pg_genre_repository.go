package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/libraria/catalog-service/internal/domain"
)

// Compile-time interface verification.
var _ GenreRepository = (*PgGenreRepository)(nil)

// PgGenreRepository is a PostgreSQL implementation of GenreRepository.
type PgGenreRepository struct {
	db DBTX
}

// NewPgGenreRepository creates a new PostgreSQL genre repository.
func NewPgGenreRepository(db DBTX) *PgGenreRepository {
	return &PgGenreRepository{db: db}
}

// Create inserts a new genre.
func (r *PgGenreRepository) Create(ctx context.Context, genre *domain.Genre) (*domain.Genre, error) {
	if genre == nil {
		return nil, domain.NewValidationError("genre", "genre cannot be nil")
	}

	query := `
		INSERT INTO genres (name, created_at, updated_at)
		VALUES ($1, $2, $2)
		RETURNING id, created_at, updated_at`

	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, genre.Name, now).
		Scan(&genre.ID, &genre.CreatedAt, &genre.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.NewAlreadyExistsError("genre", genre.Name, "name")
		}
		return nil, fmt.Errorf("failed to create genre: %w", err)
	}

	return genre, nil
}

// GetByID retrieves a genre by id.
func (r *PgGenreRepository) GetByID(ctx context.Context, id int64) (*domain.Genre, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM genres
		WHERE id = $1`

	var genre domain.Genre
	err := r.db.QueryRow(ctx, query, id).
		Scan(&genre.ID, &genre.Name, &genre.CreatedAt, &genre.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("genre", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to get genre by ID: %w", err)
	}

	return &genre, nil
}

// GetByName retrieves a genre by its exact name.
func (r *PgGenreRepository) GetByName(ctx context.Context, name string) (*domain.Genre, error) {
	if name == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}

	query := `
		SELECT id, name, created_at, updated_at
		FROM genres
		WHERE name = $1`

	var genre domain.Genre
	err := r.db.QueryRow(ctx, query, name).
		Scan(&genre.ID, &genre.Name, &genre.CreatedAt, &genre.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("genre", name)
		}
		return nil, fmt.Errorf("failed to get genre by name: %w", err)
	}

	return &genre, nil
}

// GetAllByIDs retrieves the genres for every id, reporting all missing ids
// together.
func (r *PgGenreRepository) GetAllByIDs(ctx context.Context, ids []int64) ([]*domain.Genre, error) {
	if len(ids) == 0 {
		return []*domain.Genre{}, nil
	}

	query := `
		SELECT id, name, created_at, updated_at
		FROM genres
		WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get genres by IDs: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]*domain.Genre, len(ids))
	for rows.Next() {
		var genre domain.Genre
		if err := rows.Scan(&genre.ID, &genre.Name, &genre.CreatedAt, &genre.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		found[genre.ID] = &genre
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating genres: %w", err)
	}

	// Preserve input order, skip duplicate ids, and collect every miss.
	genres := make([]*domain.Genre, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	var missing []int64
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		genre, ok := found[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		genres = append(genres, genre)
	}

	if len(missing) > 0 {
		return nil, domain.NewMissingReferencesError("genre", missing)
	}

	return genres, nil
}

// List retrieves genres matching the filter criteria.
func (r *PgGenreRepository) List(ctx context.Context, filter *GenreFilter, page Page) ([]*domain.Genre, int64, error) {
	spec := GenreSpecification(filter)
	whereClause := spec.WhereClause()

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM genres %s", whereClause)
	var totalCount int64
	if err := r.db.QueryRow(ctx, countQuery, spec.Args()...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count genres: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT id, name, created_at, updated_at
		FROM genres
		%s
		ORDER BY %s
		%s`,
		whereClause,
		orderByClause(SortableGenres, page.Sort, ""),
		spec.Paging(page.Size, page.Offset()))

	rows, err := r.db.Query(ctx, selectQuery, spec.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list genres: %w", err)
	}
	defer rows.Close()

	genres := make([]*domain.Genre, 0, page.Size)
	for rows.Next() {
		var genre domain.Genre
		if err := rows.Scan(&genre.ID, &genre.Name, &genre.CreatedAt, &genre.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, &genre)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating genres: %w", err)
	}

	return genres, totalCount, nil
}

// Update persists the genre's mutable fields.
func (r *PgGenreRepository) Update(ctx context.Context, genre *domain.Genre) (*domain.Genre, error) {
	if genre == nil {
		return nil, domain.NewValidationError("genre", "genre cannot be nil")
	}

	query := `
		UPDATE genres
		SET name = $1, updated_at = $2
		WHERE id = $3
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query, genre.Name, time.Now().UTC(), genre.ID).
		Scan(&genre.CreatedAt, &genre.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("genre", strconv.FormatInt(genre.ID, 10))
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.NewAlreadyExistsError("genre", genre.Name, "name")
		}
		return nil, fmt.Errorf("failed to update genre: %w", err)
	}

	return genre, nil
}

// Delete removes a genre; the join table foreign key cascades.
func (r *PgGenreRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM genres WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete genre: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("genre", strconv.FormatInt(id, 10))
	}

	return nil
}

// Package service implements the catalog business logic on top of the
// repositories: uniqueness and reference enforcement on writes, read-through
// caching, filtered pagination, bulk upload reconciliation, and report
// projection.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/libraria/catalog-service/internal/cache"
	"github.com/libraria/catalog-service/internal/domain"
	"github.com/libraria/catalog-service/internal/repository"
)

// Transactor runs a function inside a database transaction, committing on
// success and rolling back on error. database.DB satisfies it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Page is the standard paged response for list operations.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage assembles a paged response from a result slice and the total count
// of matching records.
func NewPage[T any](content []T, page repository.Page, totalElements int64) *Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if page.Size > 0 {
		totalPages = int((totalElements + int64(page.Size) - 1) / int64(page.Size))
	}

	return &Page[T]{
		Content:       content,
		Page:          page.Number,
		Size:          page.Size,
		TotalElements: totalElements,
		TotalPages:    totalPages,
	}
}

var validate = validator.New()

// validateInput checks the struct tags on a request payload and folds all
// failures into one domain.FieldErrors grouped by field.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := lowerFirst(fe.Field())
		fields[name] = fieldMessage(name, fe)
	}

	return domain.NewFieldErrors(fields)
}

// fieldMessage renders a human-readable message for a single tag failure.
func fieldMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s must contain at least %s element(s)", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// cachePut populates a cache entry, logging failures at warn level. A failed
// populate never fails the request; the entry is re-derivable from storage.
func cachePut(ctx context.Context, c cache.EntityCache, logger zerolog.Logger, key string, value interface{}) {
	if err := c.Put(ctx, key, value); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to populate cache entry")
	}
}

// cacheEvict removes cache entries, logging failures at warn level. A stale
// entry left behind expires with its TTL.
func cacheEvict(ctx context.Context, c cache.EntityCache, logger zerolog.Logger, keys ...string) {
	if err := c.Evict(ctx, keys...); err != nil {
		logger.Warn().Err(err).Strs("keys", keys).Msg("Failed to evict cache entries")
	}
}

// validateFilterSort rejects an invalid sort expression before it reaches the
// pagination resolver. A nil sort is valid and means "use the default".
func validateFilterSort(sort *string, entity repository.SortableEntity) error {
	if sort == nil {
		return nil
	}
	return repository.ValidateSort(*sort, entity)
}

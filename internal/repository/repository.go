// Package repository provides data access interfaces and implementations
// for the catalog service.
//
// # Overview
//
// This package defines repository interfaces and their PostgreSQL implementations
// following the repository pattern to abstract data persistence from business logic.
//
// # Repository Interfaces
//
// The package provides the following repository interfaces:
//
//   - AuthorRepository: Manages author records
//   - GenreRepository: Manages genre records and bulk id resolution
//   - BookRepository: Manages book records together with their author and genre links
//
// # Filtering and Pagination
//
// List operations take an entity-specific filter (AuthorFilter, GenreFilter,
// BookFilter). Each filter carries optional match criteria plus page, size,
// and sort fields; the WHERE clause is assembled by the Specification builder
// in predicate.go and paging is resolved by ResolvePage in page.go.
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use by multiple goroutines.
// The underlying pgxpool handles connection pooling and synchronization.
//
// # Error Handling
//
// All methods return domain-specific errors from the domain package.
// Wrap database errors with context using fmt.Errorf with %w verb.
// Common errors include:
//
//   - domain.ErrNotFound: Resource does not exist
//   - domain.ErrAlreadyExists: Unique constraint violation
//   - domain.ErrInvalidInput: Invalid parameters provided
//
// # Transactions
//
// Use the DBTX interface to support both pool and transaction contexts.
// Pass transaction from database.DB.WithTransaction for atomic operations.
//
// # Usage Pattern
//
// Repositories are typically created at application startup and passed to services:
//
//	db, _ := database.New(ctx, cfg, logger)
//	authorRepo := repository.NewPgAuthorRepository(db)
//	genreRepo := repository.NewPgGenreRepository(db)
//	bookRepo := repository.NewPgBookRepository(db)
package repository

import (
	"github.com/libraria/catalog-service/internal/database"
)

// DBTX is the database interface supporting both pool and transaction contexts.
// This allows repositories to work with both direct pool connections and transactions.
//
// # Constructor Pattern
//
// Repository implementations follow a constructor pattern that accepts DBTX:
//
//	type PgAuthorRepository struct {
//	    db DBTX
//	}
//
//	func NewPgAuthorRepository(db DBTX) *PgAuthorRepository {
//	    return &PgAuthorRepository{db: db}
//	}
//
// This design enables:
//   - Direct usage with a connection pool for standard operations
//   - Transaction support by passing a transaction (pgx.Tx) instead
//   - Easy testing with mock implementations of DBTX
//
// # Transaction Usage Example
//
//	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
//	    // Create a transactional repository instance
//	    txRepo := repository.NewPgBookRepository(tx)
//	    // All operations within this function use the same transaction
//	    _, err := txRepo.Create(ctx, book)
//	    return err
//	})
type DBTX = database.DBTX

// Package observability provides logging and metrics support for the
// catalog service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for HTTP traffic, entities, uploads, cache, and events
//   - Context helpers for propagating request identifiers
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "stdout",
//	    AddSource: true,
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Int64("book_id", id).Msg("book created")
//
// Add entity context to a logger:
//
//	logger = observability.WithEntityContext(logger, "book", bookID)
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("catalog")
//
// Record metrics:
//
//	metrics.RecordEntityCreated("book")
//	metrics.RecordCacheHit("genre")
//	metrics.RecordUpload(48, 2, 1.7)
//
// # Context Helpers
//
// Store and retrieve request context:
//
//	ctx = observability.WithRequestID(ctx, requestID)
//	reqID := observability.RequestIDFromContext(ctx)
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: HTTP request identifier
//   - entity: Entity type (author, genre, book)
//   - entity_id: Entity identifier
//   - filename: Bulk upload file name
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability

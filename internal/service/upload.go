package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/libraria/catalog-service/internal/domain"
)

// duplicateInUploadReason is the failure reason recorded for an item whose
// (title, authorId) key already appeared earlier in the same upload.
const duplicateInUploadReason = "the title and authorId combination already exists within the upload"

// UploadBooks reconciles a JSON array of book creation requests against the
// catalog. Items are stream-decoded one at a time and never materialized as a
// whole. Each item runs the same invariant checks as Create; a failed item is
// recorded with its root-cause reason and processing continues. Accepted items
// flush in batches, one transaction per batch, so a failure partway through
// the file never rolls back previously committed batches.
//
// A stream-level failure (unreadable input, a top-level token that is not an
// array, or a decoder that has lost sync) aborts the call with a request-level
// error; batches committed before the abort stay committed.
func (s *BookService) UploadBooks(ctx context.Context, r io.Reader) (*domain.UploadResult, error) {
	start := time.Now()

	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, domain.NewMalformedInputError("upload payload is not valid JSON", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, domain.NewMalformedInputError(fmt.Sprintf("upload payload must be a JSON array, got %v", tok), nil)
	}

	result := &domain.UploadResult{Failures: []domain.UploadFailure{}}
	seen := make(map[string]struct{})
	staged := make([]*domain.Book, 0, s.config.UploadBatchSize)

	flush := func() error {
		if len(staged) == 0 {
			return nil
		}
		batch := staged
		staged = staged[:0]

		err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
			_, err := s.txBooks(tx).CreateBatch(ctx, batch)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to flush upload batch: %w", err)
		}

		result.CreatedCount += len(batch)
		return nil
	}

	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			// The decoder cannot recover its position past a syntax error, so
			// the remainder of the stream is undecodable.
			return nil, domain.NewMalformedInputError("upload stream is not decodable past this point", err)
		}

		var input BookInput
		if err := json.Unmarshal(raw, &input); err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, domain.UploadFailure{Item: raw, Reason: failureReason(err)})
			continue
		}

		key := fmt.Sprintf("%s:%d", input.Title, input.AuthorID)
		if _, dup := seen[key]; dup {
			result.FailedCount++
			result.Failures = append(result.Failures, domain.UploadFailure{Item: raw, Reason: duplicateInUploadReason})
			continue
		}
		seen[key] = struct{}{}

		book, err := s.assemble(ctx, &input)
		if err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, domain.UploadFailure{Item: raw, Reason: failureReason(err)})
			continue
		}

		staged = append(staged, book)
		if len(staged) >= s.config.UploadBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, domain.NewMalformedInputError("upload payload has an unterminated array", err)
	}

	if err := flush(); err != nil {
		return nil, err
	}

	result.TotalCount = result.CreatedCount + result.FailedCount

	s.metrics.RecordUpload(result.CreatedCount, result.FailedCount, time.Since(start).Seconds())
	s.logger.Info().
		Int("total", result.TotalCount).
		Int("created", result.CreatedCount).
		Int("failed", result.FailedCount).
		Msg("Processed book upload")

	return result, nil
}

// failureReason extracts the root-cause message from an error chain, stopping
// short of the domain sentinels so typed domain errors keep their detail.
// Field validation failures are flattened into their per-field messages.
func failureReason(err error) string {
	var ferrs *domain.FieldErrors
	if errors.As(err, &ferrs) {
		messages := make([]string, 0, len(ferrs.Fields))
		for _, field := range slices.Sorted(maps.Keys(ferrs.Fields)) {
			messages = append(messages, ferrs.Fields[field])
		}
		return strings.Join(messages, "; ")
	}

	root := err
	for {
		next := errors.Unwrap(root)
		if next == nil || isSentinel(next) {
			return root.Error()
		}
		root = next
	}
}

func isSentinel(err error) bool {
	switch err {
	case domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrInvalidInput,
		domain.ErrMalformedInput,
		domain.ErrServiceUnavailable,
		domain.ErrInternalError,
		domain.ErrCancelled:
		return true
	}
	return false
}

//go:build tools
// +build tools

// Package tools imports dependencies that are used by this project but not directly
// imported in the main codebase. This ensures they are tracked in go.mod.
package tools

import (
	// Configuration
	_ "github.com/spf13/viper"

	// Logging
	_ "github.com/rs/zerolog"

	// Database
	_ "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/pgxpool"

	// Cache
	_ "github.com/redis/go-redis/v9"

	// Utilities
	_ "github.com/go-playground/validator/v10"
	_ "github.com/google/uuid"

	// Kafka
	_ "github.com/segmentio/kafka-go"

	// Reports
	_ "github.com/xuri/excelize/v2"

	// Metrics
	_ "github.com/prometheus/client_golang/prometheus"

	// Testing
	_ "github.com/pashagolub/pgxmock/v4"
	_ "github.com/stretchr/testify/assert"
	_ "github.com/stretchr/testify/require"
)

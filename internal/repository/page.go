package repository

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/libraria/catalog-service/internal/domain"
)

// SortDirection is the direction applied to a sort field.
type SortDirection string

// Sort directions as rendered into ORDER BY clauses.
const (
	SortAscending  SortDirection = "ASC"
	SortDescending SortDirection = "DESC"
)

// SortOrder is a parsed sort expression: a field name and a direction.
type SortOrder struct {
	Field     string
	Direction SortDirection
}

// PageFilter carries the paging fields shared by every list filter.
// All fields are optional; nil means "use the configured default".
type PageFilter struct {
	// Page is the zero-based page number (optional).
	Page *int `json:"page,omitempty"`

	// Size is the number of records per page (optional).
	Size *int `json:"size,omitempty"`

	// Sort is a "field,direction" expression, e.g. "title,desc" (optional).
	Sort *string `json:"sort,omitempty"`
}

// PageDefaults are the process-wide paging defaults applied when a request
// omits page, size, or sort. They are sourced from configuration.
type PageDefaults struct {
	Page int
	Size int
	Sort string
}

// Page is the resolved paging triple applied to a list query.
type Page struct {
	// Number is the zero-based page number.
	Number int

	// Size is the number of records per page.
	Size int

	// Sort is the parsed sort order.
	Sort SortOrder
}

// Offset returns the row offset corresponding to the page.
func (p Page) Offset() int {
	return p.Number * p.Size
}

// ResolvePage merges a request filter's page, size, and sort fields with the
// configured defaults. Missing fields fall back to the defaults. No bounds are
// enforced on page or size magnitude here; the values flow through to the
// storage layer as resolved.
func ResolvePage(filter PageFilter, defaults PageDefaults) Page {
	page := defaults.Page
	if filter.Page != nil {
		page = *filter.Page
	}

	size := defaults.Size
	if filter.Size != nil {
		size = *filter.Size
	}

	expr := ""
	if filter.Sort != nil {
		expr = *filter.Sort
	}

	return Page{
		Number: page,
		Size:   size,
		Sort:   ParseSort(expr, defaults.Sort),
	}
}

// ParseSort parses a "field,direction" sort expression. A blank expression is
// parsed from fallback instead. The direction is matched case-insensitively
// against "desc"; anything else, including a missing direction, sorts
// ascending. ParseSort never fails; strict checking happens separately in
// ValidateSort at the API boundary.
func ParseSort(expr, fallback string) SortOrder {
	if strings.TrimSpace(expr) == "" {
		expr = fallback
	}

	parts := strings.Split(expr, ",")
	order := SortOrder{
		Field:     strings.TrimSpace(parts[0]),
		Direction: SortAscending,
	}
	if len(parts) > 1 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc") {
		order.Direction = SortDescending
	}

	return order
}

// SortableEntity names an entity whose list endpoints accept sort expressions.
type SortableEntity string

// Entities with sortable list endpoints.
const (
	SortableAuthors SortableEntity = "authors"
	SortableGenres  SortableEntity = "genres"
	SortableBooks   SortableEntity = "books"
)

// sortableColumns maps each entity's sortable field names (lowercased) to the
// backing column. Static tables stand in for reflective field lookup.
var sortableColumns = map[SortableEntity]map[string]string{
	SortableAuthors: {
		"id":        "id",
		"firstname": "first_name",
		"lastname":  "last_name",
		"createdat": "created_at",
		"updatedat": "updated_at",
	},
	SortableGenres: {
		"id":        "id",
		"name":      "name",
		"createdat": "created_at",
		"updatedat": "updated_at",
	},
	SortableBooks: {
		"id":            "id",
		"title":         "title",
		"description":   "description",
		"yearpublished": "year_published",
		"pages":         "pages",
		"createdat":     "created_at",
		"updatedat":     "updated_at",
	},
}

// Column resolves a sort field name to its backing column. Field names are
// matched case-insensitively. The boolean is false for fields that are not
// sortable on the entity.
func (e SortableEntity) Column(field string) (string, bool) {
	col, ok := sortableColumns[e][strings.ToLower(field)]
	return col, ok
}

// sortExprPattern accepts "field,asc" or "field,desc" with optional
// surrounding whitespace. The direction is mandatory here even though
// ParseSort tolerates a bare field name; a request carrying only a field
// name is rejected at the boundary.
var sortExprPattern = regexp.MustCompile(`(?i)^\s*(\w+)\s*,\s*(asc|desc)\s*$`)

// ValidateSort checks a raw sort expression against the entity's sortable
// fields. An absent sort is represented upstream by a nil pointer and never
// reaches this function; every string given here must match the pattern, so
// an empty string is rejected like any other malformed expression.
func ValidateSort(expr string, entity SortableEntity) error {
	m := sortExprPattern.FindStringSubmatch(expr)
	if m == nil {
		return domain.NewValidationError("sort", fmt.Sprintf("sort must have the form %q or %q, got %q", "field,asc", "field,desc", expr))
	}

	if _, ok := entity.Column(m[1]); !ok {
		return domain.NewValidationError("sort", fmt.Sprintf("%q is not a sortable field of %s", m[1], entity))
	}

	return nil
}

// orderByClause renders the ORDER BY term for a resolved sort, qualifying the
// column with alias when non-empty. Unknown fields fall back to the primary
// key so a value that slipped past validation never reaches the SQL text.
func orderByClause(entity SortableEntity, sort SortOrder, alias string) string {
	col, ok := entity.Column(sort.Field)
	if !ok {
		col = "id"
	}
	if alias != "" {
		col = alias + "." + col
	}

	direction := sort.Direction
	if direction != SortDescending {
		direction = SortAscending
	}

	return col + " " + string(direction)
}

package repository

import (
	"fmt"
	"strings"
	"time"
)

// Specification accumulates parameterized WHERE conditions for a list query.
// Conditions are AND-combined; a specification with no conditions renders an
// empty WHERE clause and matches everything. Values are always bound as query
// parameters, never interpolated into the SQL text.
type Specification struct {
	conds []string
	args  []interface{}
}

// NewSpecification returns an empty (unconstrained) specification.
func NewSpecification() *Specification {
	return &Specification{}
}

// arg binds a value and returns its positional placeholder.
func (s *Specification) arg(v interface{}) string {
	s.args = append(s.args, v)
	return fmt.Sprintf("$%d", len(s.args))
}

// Equal appends an equality condition on col.
func (s *Specification) Equal(col string, v interface{}) *Specification {
	s.conds = append(s.conds, fmt.Sprintf("%s = %s", col, s.arg(v)))
	return s
}

// ILike appends a case-insensitive substring match on col. Both the stored
// value and the bound pattern are lowercased, and the pattern is wrapped in
// wildcards.
func (s *Specification) ILike(col, v string) *Specification {
	s.conds = append(s.conds, fmt.Sprintf("LOWER(%s) LIKE %s", col, s.arg("%"+strings.ToLower(v)+"%")))
	return s
}

// GTE appends an inclusive lower bound on col.
func (s *Specification) GTE(col string, v interface{}) *Specification {
	s.conds = append(s.conds, fmt.Sprintf("%s >= %s", col, s.arg(v)))
	return s
}

// LTE appends an inclusive upper bound on col.
func (s *Specification) LTE(col string, v interface{}) *Specification {
	s.conds = append(s.conds, fmt.Sprintf("%s <= %s", col, s.arg(v)))
	return s
}

// AnyOf appends a set membership condition on col.
func (s *Specification) AnyOf(col string, ids []int64) *Specification {
	s.conds = append(s.conds, fmt.Sprintf("%s = ANY(%s)", col, s.arg(ids)))
	return s
}

// Append formats a raw condition. Each value in vals is bound as a parameter
// and its placeholder substitutes the matching %s verb in format.
func (s *Specification) Append(format string, vals ...interface{}) *Specification {
	placeholders := make([]interface{}, len(vals))
	for i, v := range vals {
		placeholders[i] = s.arg(v)
	}
	s.conds = append(s.conds, fmt.Sprintf(format, placeholders...))
	return s
}

// WhereClause renders the accumulated conditions, or "" when unconstrained.
func (s *Specification) WhereClause() string {
	if len(s.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(s.conds, " AND ")
}

// Args returns the bound parameter values in placeholder order.
func (s *Specification) Args() []interface{} {
	return s.args
}

// Paging binds limit and offset and returns the LIMIT/OFFSET clause. Call it
// after every condition has been appended; it consumes the next two
// placeholders.
func (s *Specification) Paging(limit, offset int) string {
	return fmt.Sprintf("LIMIT %s OFFSET %s", s.arg(limit), s.arg(offset))
}

// AuthorSpecification builds the WHERE conditions for an author list query.
// A nil filter yields the unconstrained specification.
func AuthorSpecification(f *AuthorFilter) *Specification {
	s := NewSpecification()
	if f == nil {
		return s
	}

	if f.Query != nil {
		pattern := "%" + strings.ToLower(*f.Query) + "%"
		s.Append("(LOWER(first_name) LIKE %s OR LOWER(last_name) LIKE %s)", pattern, pattern)
	}
	if f.FirstName != nil {
		s.ILike("first_name", *f.FirstName)
	}
	if f.LastName != nil {
		s.ILike("last_name", *f.LastName)
	}
	appendTimeRange(s, "created_at", f.StartCreatedAt, f.EndCreatedAt)
	appendTimeRange(s, "updated_at", f.StartUpdatedAt, f.EndUpdatedAt)

	return s
}

// GenreSpecification builds the WHERE conditions for a genre list query.
// A nil filter yields the unconstrained specification.
func GenreSpecification(f *GenreFilter) *Specification {
	s := NewSpecification()
	if f == nil {
		return s
	}

	if f.Name != nil {
		s.ILike("name", *f.Name)
	}
	appendTimeRange(s, "created_at", f.StartCreatedAt, f.EndCreatedAt)
	appendTimeRange(s, "updated_at", f.StartUpdatedAt, f.EndUpdatedAt)

	return s
}

// BookSpecification builds the WHERE conditions for a book list query.
// Columns are qualified with the "b" alias used by the book queries. Genre
// membership is expressed as an EXISTS probe on the join table so that count
// queries stay on the books table alone and are never multiplied by the
// many-to-many join. A nil filter yields the unconstrained specification.
func BookSpecification(f *BookFilter) *Specification {
	s := NewSpecification()
	if f == nil {
		return s
	}

	if f.Title != nil {
		s.ILike("b.title", *f.Title)
	}
	if f.MinYearPublished != nil {
		s.GTE("b.year_published", *f.MinYearPublished)
	}
	if f.MaxYearPublished != nil {
		s.LTE("b.year_published", *f.MaxYearPublished)
	}
	if f.MinPages != nil {
		s.GTE("b.pages", *f.MinPages)
	}
	if f.MaxPages != nil {
		s.LTE("b.pages", *f.MaxPages)
	}
	if len(f.AuthorIDs) > 0 {
		s.AnyOf("b.author_id", f.AuthorIDs)
	}
	if len(f.GenreIDs) > 0 {
		s.Append("EXISTS (SELECT 1 FROM books_genres bg WHERE bg.book_id = b.id AND bg.genre_id = ANY(%s))", f.GenreIDs)
	}
	appendTimeRange(s, "b.created_at", f.StartCreatedAt, f.EndCreatedAt)
	appendTimeRange(s, "b.updated_at", f.StartUpdatedAt, f.EndUpdatedAt)

	return s
}

// appendTimeRange appends inclusive bounds on a timestamp column for whichever
// ends of the range are present.
func appendTimeRange(s *Specification, col string, start, end *time.Time) {
	if start != nil {
		s.GTE(col, *start)
	}
	if end != nil {
		s.LTE(col, *end)
	}
}

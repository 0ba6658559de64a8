package repository

import "time"

// AuthorFilter specifies criteria for listing authors via AuthorRepository.List.
// All fields are optional; a nil field adds no constraint, and a filter with
// every field nil matches all authors.
type AuthorFilter struct {
	// Query matches authors whose first or last name contains this substring,
	// case-insensitively (optional).
	Query *string `json:"query,omitempty"`

	// FirstName filters by case-insensitive substring on the first name (optional).
	FirstName *string `json:"firstName,omitempty"`

	// LastName filters by case-insensitive substring on the last name (optional).
	LastName *string `json:"lastName,omitempty"`

	// StartCreatedAt / EndCreatedAt bound the creation time, inclusive (optional).
	StartCreatedAt *time.Time `json:"startCreatedAt,omitempty"`
	EndCreatedAt   *time.Time `json:"endCreatedAt,omitempty"`

	// StartUpdatedAt / EndUpdatedAt bound the last update time, inclusive (optional).
	StartUpdatedAt *time.Time `json:"startUpdatedAt,omitempty"`
	EndUpdatedAt   *time.Time `json:"endUpdatedAt,omitempty"`

	PageFilter
}

// GenreFilter specifies criteria for listing genres via GenreRepository.List.
type GenreFilter struct {
	// Name filters by case-insensitive substring on the genre name (optional).
	Name *string `json:"name,omitempty"`

	// StartCreatedAt / EndCreatedAt bound the creation time, inclusive (optional).
	StartCreatedAt *time.Time `json:"startCreatedAt,omitempty"`
	EndCreatedAt   *time.Time `json:"endCreatedAt,omitempty"`

	// StartUpdatedAt / EndUpdatedAt bound the last update time, inclusive (optional).
	StartUpdatedAt *time.Time `json:"startUpdatedAt,omitempty"`
	EndUpdatedAt   *time.Time `json:"endUpdatedAt,omitempty"`

	PageFilter
}

// BookFilter specifies criteria for listing books via BookRepository.List and
// for selecting report rows via BookRepository.ListAll.
type BookFilter struct {
	// Title filters by case-insensitive substring on the title (optional).
	Title *string `json:"title,omitempty"`

	// MinYearPublished / MaxYearPublished bound the publication year, inclusive (optional).
	MinYearPublished *int `json:"minYearPublished,omitempty"`
	MaxYearPublished *int `json:"maxYearPublished,omitempty"`

	// MinPages / MaxPages bound the page count, inclusive (optional).
	MinPages *int `json:"minPages,omitempty"`
	MaxPages *int `json:"maxPages,omitempty"`

	// AuthorIDs filters to books written by any of these authors (optional).
	// An empty set adds no constraint.
	AuthorIDs []int64 `json:"authorIds,omitempty"`

	// GenreIDs filters to books linked to any of these genres (optional).
	// An empty set adds no constraint.
	GenreIDs []int64 `json:"genreIds,omitempty"`

	// StartCreatedAt / EndCreatedAt bound the creation time, inclusive (optional).
	StartCreatedAt *time.Time `json:"startCreatedAt,omitempty"`
	EndCreatedAt   *time.Time `json:"endCreatedAt,omitempty"`

	// StartUpdatedAt / EndUpdatedAt bound the last update time, inclusive (optional).
	StartUpdatedAt *time.Time `json:"startUpdatedAt,omitempty"`
	EndUpdatedAt   *time.Time `json:"endUpdatedAt,omitempty"`

	PageFilter
}

package domain

import (
	"strings"
	"time"
)

// Author represents a book author in the catalog.
type Author struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName returns the author's display name as "First Last".
func (a *Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

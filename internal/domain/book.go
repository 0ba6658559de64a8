package domain

import "time"

// MinPublicationYear is the earliest publication year the catalog accepts.
// Movable type printing in Europe dates to around 1450.
const MinPublicationYear = 1450

// AuthorRef is the author summary embedded in book views.
type AuthorRef struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// GenreRef is the genre summary embedded in book views.
type GenreRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Book represents a catalog book. The (Title, AuthorID) pair is unique.
type Book struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	YearPublished int        `json:"yearPublished"`
	Pages         int        `json:"pages"`
	AuthorID      int64      `json:"-"`
	Author        AuthorRef  `json:"author"`
	Genres        []GenreRef `json:"genres"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// GenreIDs returns the ids of the book's genres in their stored order.
func (b *Book) GenreIDs() []int64 {
	ids := make([]int64, 0, len(b.Genres))
	for _, g := range b.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

package service

// AuthorInput is the payload for creating or updating an author.
type AuthorInput struct {
	FirstName string `json:"firstName" validate:"required,max=255"`
	LastName  string `json:"lastName" validate:"required,max=255"`
}

// GenreInput is the payload for creating or updating a genre.
type GenreInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

// BookInput is the payload for creating or updating a book. The same shape is
// used by the bulk upload items. The publication year floor matches
// domain.MinPublicationYear.
type BookInput struct {
	Title         string  `json:"title" validate:"required,max=255"`
	Description   string  `json:"description,omitempty" validate:"max=4000"`
	YearPublished int     `json:"yearPublished" validate:"required,gte=1450"`
	Pages         int     `json:"pages" validate:"required,gt=0"`
	AuthorID      int64   `json:"authorId" validate:"required,gt=0"`
	GenreIDs      []int64 `json:"genreIds" validate:"required,min=1,dive,gt=0"`
}

package book

import "time"

// GenreNoChange is the placeholder interactive API tooling sends for the
// genre field to mean "leave unchanged". A patch whose genre list is exactly
// [GenreNoChange] is treated as if the field were absent.
const GenreNoChange = "string"

// Book is the central aggregate of the catalog domain.
//
// Archived books stay in the table (soft delete) so that price history and
// title uniqueness remain intact; they are excluded from default listings.
type Book struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	PublicationYear int        `json:"publication_year"`
	Genre           []string   `json:"genre"`
	Author          *string    `json:"author"`
	Description     *string    `json:"description"`
	CoverImage      *string    `json:"cover_image"`
	Price           *int       `json:"price"`
	Archived        bool       `json:"archived"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Input carries the caller-supplied fields for creating a book.
type Input struct {
	Title           string   `json:"title"`
	PublicationYear int      `json:"publication_year"`
	Genre           []string `json:"genre"`
	Author          *string  `json:"author"`
	Description     *string  `json:"description"`
	CoverImage      *string  `json:"cover_image"`
	Price           *int     `json:"price"`
}

// Patch carries a partial update. A nil field means "leave untouched" —
// presence, not null-ness, decides whether a column is written. This matches
// the wire behavior of JSON PATCH bodies where omitted keys decode to nil.
type Patch struct {
	Title           *string  `json:"title"`
	PublicationYear *int     `json:"publication_year"`
	Genre           []string `json:"genre"`
	Author          *string  `json:"author"`
	Description     *string  `json:"description"`
	CoverImage      *string  `json:"cover_image"`
	Price           *int     `json:"price"`
}

// IsEmpty reports whether the patch would touch no columns.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.PublicationYear == nil && p.Genre == nil &&
		p.Author == nil && p.Description == nil && p.CoverImage == nil && p.Price == nil
}

// Filter holds the optional, conjunctive parameters of a catalog list query.
type Filter struct {
	Title       string   // exact match
	Author      string   // exact match
	Price       *int     // exact match
	Description string   // case-insensitive substring
	Genres      []string // book must contain every tag
	GenresNot   []string // book must contain none of the tags
}

// Field names for validation details.
const (
	FieldTitle           = "title"
	FieldPublicationYear = "publication_year"
	FieldGenre           = "genre"
	FieldPrice           = "price"
	FieldCoverImage      = "cover_image"
)

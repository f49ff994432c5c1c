package history

import "time"

// Entry is one immutable price snapshot for a book. Entries are written when
// a book is created, when an update changes its price, and in bulk after an
// import; they are never mutated afterwards.
type Entry struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	Price     int       `json:"price"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Point is a (book, price) pair for bulk appends.
type Point struct {
	BookID string
	Price  int
}

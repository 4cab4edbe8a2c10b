package domain

// Book represents a catalog book. The genre core treats books as a foreign,
// read-only relation: it only ever asks which books reference a genre.
// GenreIDs is populated by the store from the book-genre association.
type Book struct {
	Record
	Title    string   `json:"title"`
	Author   string   `json:"author,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	GenreIDs []string `json:"genre_ids,omitempty"`
}

// URL returns the canonical catalog path for this book.
func (b *Book) URL() string {
	return "/catalog/books/" + b.ID
}

package domain

// Genre represents a category for classifying books in the catalog.
// The name is unique among live genres (case-sensitive, exact match).
type Genre struct {
	Record
	Name string `json:"name"`
}

// URL returns the canonical catalog path for this genre.
// It is derived from the identifier only, so it stays stable across renames
// and is safe to use as a redirect target after mutations.
func (g *Genre) URL() string {
	return "/catalog/genres/" + g.ID
}

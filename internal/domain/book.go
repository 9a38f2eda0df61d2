package domain

// Book is a catalog entry. The reading list only reads books; the catalog
// owns them.
type Book struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	CoverImageURL string `json:"coverImageUrl"`
	PageCount     int    `json:"pageCount"`
	Publisher     string `json:"publisher"`
	Synopsis      string `json:"synopsis"`
}

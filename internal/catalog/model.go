package catalog

type Author struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

type Publisher struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Book is the stored row. Optional columns are nil when unset.
type Book struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	AuthorID    int64   `json:"authorID"`
	PublisherID int64   `json:"publisherID"`
	Image       *string `json:"image"`
	Published   *string `json:"published"`
	ISBN13      *string `json:"isbn13"`
	ISBN10      *string `json:"isbn10"`
	Status      string  `json:"status"`
}

// BookDetails is a book joined with its author and publisher names.
type BookDetails struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Image     *string `json:"image"`
	Publisher string  `json:"publisher"`
	Published *string `json:"published"`
	ISBN13    *string `json:"isbn13"`
	ISBN10    *string `json:"isbn10"`
}

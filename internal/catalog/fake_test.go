package catalog

import (
	"context"
	"sort"
)

// memRepo is an in-memory Repository for service and handler tests.
type memRepo struct {
	authors    map[int64]Author
	publishers map[int64]Publisher
	books      []Book
	nextID     int64
	err        error
}

func newMemRepo() *memRepo {
	return &memRepo{authors: map[int64]Author{}, publishers: map[int64]Publisher{}}
}

func (m *memRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memRepo) CreateAuthor(_ context.Context, a *Author) (*Author, error) {
	if m.err != nil {
		return nil, m.err
	}
	a.ID = m.id()
	m.authors[a.ID] = *a
	return a, nil
}

func (m *memRepo) CountAuthors(context.Context) (int, error) {
	return len(m.authors), m.err
}

func (m *memRepo) ListAuthors(_ context.Context, limit, offset int) ([]Author, error) {
	if m.err != nil {
		return nil, m.err
	}
	all := make([]Author, 0, len(m.authors))
	for _, a := range m.authors {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return window(all, limit, offset), nil
}

func (m *memRepo) GetAuthor(_ context.Context, id int64) (*Author, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.authors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *memRepo) UpdateAuthor(_ context.Context, a *Author) (*Author, error) {
	if _, ok := m.authors[a.ID]; !ok {
		return nil, ErrNotFound
	}
	m.authors[a.ID] = *a
	return a, nil
}

func (m *memRepo) DeleteAuthor(_ context.Context, id int64) error {
	for _, b := range m.books {
		if b.AuthorID == id {
			return ErrAuthorHasBooks
		}
	}
	delete(m.authors, id)
	return nil
}

func (m *memRepo) CreatePublisher(_ context.Context, p *Publisher) (*Publisher, error) {
	p.ID = m.id()
	m.publishers[p.ID] = *p
	return p, nil
}

func (m *memRepo) GetPublisher(_ context.Context, id int64) (*Publisher, error) {
	p, ok := m.publishers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *memRepo) CreateBook(_ context.Context, b *Book) (*Book, error) {
	b.ID = m.id()
	m.books = append(m.books, *b)
	return b, nil
}

func (m *memRepo) CountBooks(context.Context) (int, error) {
	return len(m.books), m.err
}

func (m *memRepo) ListBooks(_ context.Context, limit, offset int) ([]BookDetails, error) {
	all := make([]BookDetails, 0, len(m.books))
	for _, b := range m.books {
		all = append(all, m.details(b))
	}
	return window(all, limit, offset), nil
}

func (m *memRepo) GetBookByISBN10(_ context.Context, isbn string) (*BookDetails, error) {
	return m.findBook(func(b Book) *string { return b.ISBN10 }, isbn)
}

func (m *memRepo) GetBookByISBN13(_ context.Context, isbn string) (*BookDetails, error) {
	return m.findBook(func(b Book) *string { return b.ISBN13 }, isbn)
}

func (m *memRepo) findBook(field func(Book) *string, isbn string) (*BookDetails, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, b := range m.books {
		if v := field(b); v != nil && *v == isbn {
			d := m.details(b)
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) details(b Book) BookDetails {
	return BookDetails{
		ID:        b.ID,
		Title:     b.Title,
		Author:    m.authors[b.AuthorID].Name,
		Image:     b.Image,
		Publisher: m.publishers[b.PublisherID].Name,
		Published: b.Published,
		ISBN13:    b.ISBN13,
		ISBN10:    b.ISBN10,
	}
}

func window[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func strPtr(s string) *string { return &s }

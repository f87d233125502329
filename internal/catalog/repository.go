package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound       = errors.New("catalog: not found")
	ErrISBN10Taken    = errors.New("catalog: isbn10 already exists")
	ErrISBN13Taken    = errors.New("catalog: isbn13 already exists")
	ErrAuthorHasBooks = errors.New("catalog: author still has books")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Repository interface {
	CreateAuthor(ctx context.Context, a *Author) (*Author, error)
	CountAuthors(ctx context.Context) (int, error)
	ListAuthors(ctx context.Context, limit, offset int) ([]Author, error)
	GetAuthor(ctx context.Context, id int64) (*Author, error)
	UpdateAuthor(ctx context.Context, a *Author) (*Author, error)
	DeleteAuthor(ctx context.Context, id int64) error

	CreatePublisher(ctx context.Context, p *Publisher) (*Publisher, error)
	GetPublisher(ctx context.Context, id int64) (*Publisher, error)

	CreateBook(ctx context.Context, b *Book) (*Book, error)
	CountBooks(ctx context.Context) (int, error)
	ListBooks(ctx context.Context, limit, offset int) ([]BookDetails, error)
	GetBookByISBN10(ctx context.Context, isbn string) (*BookDetails, error)
	GetBookByISBN13(ctx context.Context, isbn string) (*BookDetails, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateAuthor(ctx context.Context, a *Author) (*Author, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO authors (name, country) VALUES ($1, $2) RETURNING id`,
		a.Name, a.Country,
	).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("catalog: insert author: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) CountAuthors(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM authors`)
}

func (r *PostgresRepository) ListAuthors(ctx context.Context, limit, offset int) ([]Author, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, country FROM authors ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: list authors: %w", err)
	}
	defer rows.Close()

	var authors []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Country); err != nil {
			return nil, fmt.Errorf("catalog: scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (r *PostgresRepository) GetAuthor(ctx context.Context, id int64) (*Author, error) {
	var a Author
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, country FROM authors WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.Country)
	if err != nil {
		return nil, notFound("select author", err)
	}
	return &a, nil
}

func (r *PostgresRepository) UpdateAuthor(ctx context.Context, a *Author) (*Author, error) {
	err := r.db.QueryRowContext(ctx,
		`UPDATE authors SET name = $1, country = $2 WHERE id = $3 RETURNING id, name, country`,
		a.Name, a.Country, a.ID,
	).Scan(&a.ID, &a.Name, &a.Country)
	if err != nil {
		return nil, notFound("update author", err)
	}
	return a, nil
}

func (r *PostgresRepository) DeleteAuthor(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return ErrAuthorHasBooks
		}
		return fmt.Errorf("catalog: delete author: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("catalog: delete author: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CreatePublisher(ctx context.Context, p *Publisher) (*Publisher, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO publishers (name, country) VALUES ($1, $2) RETURNING id`,
		p.Name, p.Country,
	).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("catalog: insert publisher: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetPublisher(ctx context.Context, id int64) (*Publisher, error) {
	var p Publisher
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, country FROM publishers WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Country)
	if err != nil {
		return nil, notFound("select publisher", err)
	}
	return &p, nil
}

func (r *PostgresRepository) CreateBook(ctx context.Context, b *Book) (*Book, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO books (title, author_id, publisher_id, image, published, isbn13, isbn10, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		b.Title, b.AuthorID, b.PublisherID, b.Image, b.Published, b.ISBN13, b.ISBN10, b.Status,
	).Scan(&b.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch {
			case pqErr.Code == uniqueViolation && pqErr.Constraint == "books_isbn10_key":
				return nil, ErrISBN10Taken
			case pqErr.Code == uniqueViolation && pqErr.Constraint == "books_isbn13_key":
				return nil, ErrISBN13Taken
			case pqErr.Code == foreignKeyViolation:
				return nil, ErrNotFound
			}
		}
		return nil, fmt.Errorf("catalog: insert book: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) CountBooks(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM books`)
}

const bookDetailsQuery = `
	SELECT b.id, b.title, a.name, b.image, p.name, b.published, b.isbn13, b.isbn10
	FROM books b
	JOIN authors a ON a.id = b.author_id
	JOIN publishers p ON p.id = b.publisher_id`

func (r *PostgresRepository) ListBooks(ctx context.Context, limit, offset int) ([]BookDetails, error) {
	rows, err := r.db.QueryContext(ctx,
		bookDetailsQuery+` ORDER BY b.id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: list books: %w", err)
	}
	defer rows.Close()

	var books []BookDetails
	for rows.Next() {
		var b BookDetails
		if err := scanBookDetails(rows, &b); err != nil {
			return nil, fmt.Errorf("catalog: scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *PostgresRepository) GetBookByISBN10(ctx context.Context, isbn string) (*BookDetails, error) {
	return r.getBook(ctx, bookDetailsQuery+` WHERE b.isbn10 = $1`, isbn)
}

func (r *PostgresRepository) GetBookByISBN13(ctx context.Context, isbn string) (*BookDetails, error) {
	return r.getBook(ctx, bookDetailsQuery+` WHERE b.isbn13 = $1`, isbn)
}

func (r *PostgresRepository) getBook(ctx context.Context, query, isbn string) (*BookDetails, error) {
	var b BookDetails
	if err := scanBookDetails(r.db.QueryRowContext(ctx, query, isbn), &b); err != nil {
		return nil, notFound("select book", err)
	}
	return &b, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBookDetails(s scanner, b *BookDetails) error {
	return s.Scan(&b.ID, &b.Title, &b.Author, &b.Image, &b.Publisher, &b.Published, &b.ISBN13, &b.ISBN10)
}

func (r *PostgresRepository) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count: %w", err)
	}
	return n, nil
}

func notFound(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("catalog: %s: %w", op, err)
}

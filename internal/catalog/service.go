package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/AntonTsoy/book-catalog/internal/apperror"
	"go.uber.org/zap"
)

const (
	msgAuthorNotFound    = "Author does not exist, please check the author ID."
	msgPublisherNotFound = "Publisher does not exist."
	msgBookNotFound      = "Book not found."
	msgInvalidISBN       = "Invalid ISBN."
	msgISBN10Exists      = "ISBN10 already exists."
	msgISBN13Exists      = "ISBN13 already exists."
	msgAuthorHasBooks    = "Author still has books and cannot be deleted."
	msgCatalogFailure    = "Unable to process the catalog request."
)

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) CreateAuthor(ctx context.Context, a *Author) (*Author, error) {
	created, err := s.repo.CreateAuthor(ctx, a)
	if err != nil {
		return nil, s.internal("create author", err)
	}
	return created, nil
}

func (s *Service) ListAuthors(ctx context.Context, req PageRequest) (*Page[Author], error) {
	req = req.withDefaults()

	total, err := s.repo.CountAuthors(ctx)
	if err != nil {
		return nil, s.internal("count authors", err)
	}
	authors, err := s.repo.ListAuthors(ctx, req.PerPage, req.offset())
	if err != nil {
		return nil, s.internal("list authors", err)
	}
	return newPage("authors", req, total, authors), nil
}

func (s *Service) GetAuthor(ctx context.Context, rawID string) (*Author, error) {
	id, ok := parseID(rawID)
	if !ok {
		return nil, apperror.NotFound(msgAuthorNotFound)
	}
	a, err := s.repo.GetAuthor(ctx, id)
	if err != nil {
		return nil, s.lookupError("get author", msgAuthorNotFound, err)
	}
	return a, nil
}

func (s *Service) UpdateAuthor(ctx context.Context, rawID string, a *Author) (*Author, error) {
	existing, err := s.GetAuthor(ctx, rawID)
	if err != nil {
		return nil, err
	}
	a.ID = existing.ID

	updated, err := s.repo.UpdateAuthor(ctx, a)
	if err != nil {
		return nil, s.lookupError("update author", msgAuthorNotFound, err)
	}
	return updated, nil
}

func (s *Service) DeleteAuthor(ctx context.Context, rawID string) error {
	existing, err := s.GetAuthor(ctx, rawID)
	if err != nil {
		return err
	}

	err = s.repo.DeleteAuthor(ctx, existing.ID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAuthorHasBooks):
		return apperror.New(http.StatusConflict, msgAuthorHasBooks, err)
	default:
		return s.lookupError("delete author", msgAuthorNotFound, err)
	}
}

func (s *Service) CreatePublisher(ctx context.Context, p *Publisher) (*Publisher, error) {
	created, err := s.repo.CreatePublisher(ctx, p)
	if err != nil {
		return nil, s.internal("create publisher", err)
	}
	return created, nil
}

func (s *Service) GetPublisher(ctx context.Context, rawID string) (*Publisher, error) {
	id, ok := parseID(rawID)
	if !ok {
		return nil, apperror.NotFound(msgPublisherNotFound)
	}
	p, err := s.repo.GetPublisher(ctx, id)
	if err != nil {
		return nil, s.lookupError("get publisher", msgPublisherNotFound, err)
	}
	return p, nil
}

// CreateBook rejects duplicate ISBNs before checking that the author and
// publisher exist.
func (s *Service) CreateBook(ctx context.Context, b *Book) (*Book, error) {
	if b.ISBN10 != nil && *b.ISBN10 != "" {
		if err := s.ensureISBNFree(ctx, s.repo.GetBookByISBN10, *b.ISBN10, msgISBN10Exists); err != nil {
			return nil, err
		}
	}
	if b.ISBN13 != nil && *b.ISBN13 != "" {
		if err := s.ensureISBNFree(ctx, s.repo.GetBookByISBN13, *b.ISBN13, msgISBN13Exists); err != nil {
			return nil, err
		}
	}

	if _, err := s.repo.GetAuthor(ctx, b.AuthorID); err != nil {
		return nil, s.lookupError("get author", msgAuthorNotFound, err)
	}
	if _, err := s.repo.GetPublisher(ctx, b.PublisherID); err != nil {
		return nil, s.lookupError("get publisher", msgPublisherNotFound, err)
	}

	created, err := s.repo.CreateBook(ctx, b)
	switch {
	case err == nil:
		return created, nil
	case errors.Is(err, ErrISBN10Taken):
		return nil, apperror.Conflict(msgISBN10Exists)
	case errors.Is(err, ErrISBN13Taken):
		return nil, apperror.Conflict(msgISBN13Exists)
	case errors.Is(err, ErrNotFound):
		return nil, apperror.NotFound(msgAuthorNotFound)
	default:
		return nil, s.internal("create book", err)
	}
}

func (s *Service) ensureISBNFree(
	ctx context.Context,
	find func(context.Context, string) (*BookDetails, error),
	isbn, conflictMsg string,
) error {
	_, err := find(ctx, isbn)
	switch {
	case err == nil:
		return apperror.Conflict(conflictMsg)
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return s.internal("check isbn", err)
	}
}

func (s *Service) ListBooks(ctx context.Context, req PageRequest) (*Page[BookDetails], error) {
	req = req.withDefaults()

	total, err := s.repo.CountBooks(ctx)
	if err != nil {
		return nil, s.internal("count books", err)
	}
	books, err := s.repo.ListBooks(ctx, req.PerPage, req.offset())
	if err != nil {
		return nil, s.internal("list books", err)
	}
	return newPage("books", req, total, books), nil
}

// GetBookByISBN looks the book up by ISBN-10 or ISBN-13 depending on length.
func (s *Service) GetBookByISBN(ctx context.Context, isbn string) (*BookDetails, error) {
	var (
		b   *BookDetails
		err error
	)
	switch len(isbn) {
	case 10:
		b, err = s.repo.GetBookByISBN10(ctx, isbn)
	case 13:
		b, err = s.repo.GetBookByISBN13(ctx, isbn)
	default:
		return nil, apperror.BadRequest(msgInvalidISBN)
	}
	if err != nil {
		return nil, s.lookupError("get book", msgBookNotFound, err)
	}
	return b, nil
}

func (s *Service) lookupError(op, notFoundMsg string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperror.NotFound(notFoundMsg)
	}
	return s.internal(op, err)
}

func (s *Service) internal(op string, err error) error {
	s.log.Error("catalog "+op, zap.Error(err))
	return apperror.Internal(msgCatalogFailure, err)
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

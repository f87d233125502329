package catalog

import (
	"net/http"
	"strings"

	"github.com/AntonTsoy/book-catalog/internal/apperror"
	"github.com/gin-gonic/gin"
)

type authorRequest struct {
	Name    string `json:"name" binding:"required,notblank"`
	Country string `json:"country" binding:"required,notblank"`
}

func (r authorRequest) author() *Author {
	return &Author{Name: strings.TrimSpace(r.Name), Country: strings.TrimSpace(r.Country)}
}

type publisherRequest struct {
	Name    string `json:"name" binding:"required,notblank"`
	Country string `json:"country" binding:"required,notblank"`
}

type bookRequest struct {
	Title       string  `json:"title" binding:"required,notblank"`
	AuthorID    int64   `json:"authorID" binding:"required"`
	PublisherID int64   `json:"publisherID" binding:"required"`
	Image       *string `json:"image" binding:"omitempty,url"`
	Published   *string `json:"published" binding:"omitempty,iso8601"`
	ISBN13      *string `json:"isbn13" binding:"omitempty,isbn13"`
	ISBN10      *string `json:"isbn10" binding:"omitempty,isbn10"`
	Status      string  `json:"status" binding:"required,notblank"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the catalog under api. Reads of books and publishers
// are public; writes need an access token, and author edits, author deletes
// and book creation also need the admin role.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, authCheck, adminCheck gin.HandlerFunc) {
	authors := api.Group("/authors")
	authors.POST("", authCheck, h.CreateAuthor)
	authors.GET("", authCheck, h.ListAuthors)
	authors.GET("/:authorID", authCheck, h.GetAuthor)
	authors.PUT("/:authorID", authCheck, adminCheck, h.UpdateAuthor)
	authors.DELETE("/:authorID", authCheck, adminCheck, h.DeleteAuthor)

	publishers := api.Group("/publishers")
	publishers.POST("", authCheck, h.CreatePublisher)
	publishers.GET("/:publisherID", h.GetPublisher)

	books := api.Group("/books")
	books.POST("", authCheck, adminCheck, h.CreateBook)
	books.GET("", h.ListBooks)
	books.GET("/:isbn", h.GetBook)
}

func (h *Handler) CreateAuthor(c *gin.Context) {
	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	author, err := h.svc.CreateAuthor(c.Request.Context(), req.author())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

func (h *Handler) ListAuthors(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	page, err := h.svc.ListAuthors(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetAuthor(c *gin.Context) {
	author, err := h.svc.GetAuthor(c.Request.Context(), c.Param("authorID"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (h *Handler) UpdateAuthor(c *gin.Context) {
	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	author, err := h.svc.UpdateAuthor(c.Request.Context(), c.Param("authorID"), req.author())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (h *Handler) DeleteAuthor(c *gin.Context) {
	if err := h.svc.DeleteAuthor(c.Request.Context(), c.Param("authorID")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreatePublisher(c *gin.Context) {
	var req publisherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	publisher, err := h.svc.CreatePublisher(c.Request.Context(), &Publisher{
		Name:    strings.TrimSpace(req.Name),
		Country: strings.TrimSpace(req.Country),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, publisher)
}

func (h *Handler) GetPublisher(c *gin.Context) {
	publisher, err := h.svc.GetPublisher(c.Request.Context(), c.Param("publisherID"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, publisher)
}

func (h *Handler) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	book, err := h.svc.CreateBook(c.Request.Context(), &Book{
		Title:       strings.TrimSpace(req.Title),
		AuthorID:    req.AuthorID,
		PublisherID: req.PublisherID,
		Image:       req.Image,
		Published:   req.Published,
		ISBN13:      req.ISBN13,
		ISBN10:      req.ISBN10,
		Status:      strings.TrimSpace(req.Status),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *Handler) ListBooks(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	page, err := h.svc.ListBooks(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetBook(c *gin.Context) {
	book, err := h.svc.GetBookByISBN(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, book)
}

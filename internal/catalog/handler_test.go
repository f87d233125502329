package catalog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AntonTsoy/book-catalog/internal/middleware"
	"github.com/AntonTsoy/book-catalog/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.Setup(); err != nil {
		panic(err)
	}
}

type gate struct {
	calls int
}

func (g *gate) handle(c *gin.Context) {
	g.calls++
	c.Next()
}

func newTestRouter(t *testing.T) (*gin.Engine, *gate, *gate) {
	t.Helper()
	svc, _ := seeded(t)

	auth, admin := &gate{}, &gate{}
	r := gin.New()
	r.Use(middleware.ErrorHandler(zap.NewNop()))
	NewHandler(svc).RegisterRoutes(r.Group("/api"), auth.handle, admin.handle)
	return r, auth, admin
}

func call(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateAuthor(t *testing.T) {
	r, auth, admin := newTestRouter(t)

	rec := call(r, http.MethodPost, "/api/authors", `{"name":"  Frank Herbert ","country":"United States"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":3,"name":"Frank Herbert","country":"United States"}`, rec.Body.String())
	assert.Equal(t, 1, auth.calls)
	assert.Zero(t, admin.calls)
}

func TestHandler_CreateAuthorValidation(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := call(r, http.MethodPost, "/api/authors", `{"name":"Frank Herbert"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{
		"result": {
			"message": "Validation failed.",
			"errors": [{"field": "country", "message": "country is required."}]
		}
	}`, rec.Body.String())

	rec = call(r, http.MethodPost, "/api/authors", `{"name":"   ","country":"\t"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{
		"result": {
			"message": "Validation failed.",
			"errors": [
				{"field": "name", "message": "name is required."},
				{"field": "country", "message": "country is required."}
			]
		}
	}`, rec.Body.String())

	rec = call(r, http.MethodPost, "/api/authors", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"result":{"message":"Invalid request body."}}`, rec.Body.String())
}

func TestHandler_AuthorRoutesUseAdminGate(t *testing.T) {
	r, auth, admin := newTestRouter(t)

	rec := call(r, http.MethodPut, "/api/authors/1", `{"name":"U. K. Le Guin","country":"US"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"U. K. Le Guin","country":"US"}`, rec.Body.String())

	rec = call(r, http.MethodDelete, "/api/authors/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = call(r, http.MethodGet, "/api/authors/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"result":{"message":"Author does not exist, please check the author ID."}}`, rec.Body.String())

	assert.Equal(t, 3, auth.calls)
	assert.Equal(t, 2, admin.calls)
}

func TestHandler_ListAuthors(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := call(r, http.MethodGet, "/api/authors?currentPage=1&perPage=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"totalAuthors": 1,
		"currentPage": 1,
		"perPage": 5,
		"totalPages": 1,
		"authors": [{"id": 1, "name": "Ursula K. Le Guin", "country": "United States"}]
	}`, rec.Body.String())

	rec = call(r, http.MethodGet, "/api/authors?perPage=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(r, http.MethodGet, "/api/authors?perPage=101", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{
		"result": {
			"message": "Validation failed.",
			"errors": [{"field": "perPage", "message": "perPage must be at most 100."}]
		}
	}`, rec.Body.String())

	rec = call(r, http.MethodGet, "/api/authors?currentPage=9223372036854775807&perPage=100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authors":[]`)
}

func TestHandler_Publishers(t *testing.T) {
	r, auth, _ := newTestRouter(t)

	rec := call(r, http.MethodGet, "/api/publishers/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, auth.calls)

	rec = call(r, http.MethodGet, "/api/publishers/9", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"result":{"message":"Publisher does not exist."}}`, rec.Body.String())

	rec = call(r, http.MethodPost, "/api/publishers", `{"name":"Gollancz","country":"United Kingdom"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, auth.calls)
}

func TestHandler_Books(t *testing.T) {
	r, auth, admin := newTestRouter(t)

	rec := call(r, http.MethodPost, "/api/books", `{
		"title": "The Left Hand of Darkness",
		"authorID": 1,
		"publisherID": 2,
		"image": "https://example.com/cover.jpg",
		"published": "1969",
		"isbn10": "0441478123",
		"isbn13": "9780441478125",
		"status": "active"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, auth.calls)
	assert.Equal(t, 1, admin.calls)

	rec = call(r, http.MethodPost, "/api/books", `{"title":"x","authorID":1,"publisherID":2,"isbn10":"0441478123","status":"active"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"result":{"message":"ISBN10 already exists."}}`, rec.Body.String())

	rec = call(r, http.MethodGet, "/api/books/9780441478125", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"id": 3,
		"title": "The Left Hand of Darkness",
		"author": "Ursula K. Le Guin",
		"image": "https://example.com/cover.jpg",
		"publisher": "Ace Books",
		"published": "1969",
		"isbn13": "9780441478125",
		"isbn10": "0441478123"
	}`, rec.Body.String())

	rec = call(r, http.MethodGet, "/api/books/12345", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"result":{"message":"Invalid ISBN."}}`, rec.Body.String())

	rec = call(r, http.MethodGet, "/api/books?perPage=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalBooks":1`)
}

func TestHandler_CreateBookValidation(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := call(r, http.MethodPost, "/api/books", `{
		"title": "Bad",
		"authorID": 1,
		"publisherID": 2,
		"image": "not a url",
		"published": "someday",
		"isbn10": "0441478124",
		"status": "active"
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{
		"result": {
			"message": "Validation failed.",
			"errors": [
				{"field": "image", "message": "image must be a valid URL."},
				{"field": "published", "message": "published must be a valid date."},
				{"field": "isbn10", "message": "isbn10 must be a valid ISBN-10 number."}
			]
		}
	}`, rec.Body.String())
}

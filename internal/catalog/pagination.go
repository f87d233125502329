package catalog

import (
	"encoding/json"
	"math"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
	maxPerPage     = 100
)

type PageRequest struct {
	CurrentPage int `form:"currentPage" binding:"omitempty,min=1"`
	PerPage     int `form:"perPage" binding:"omitempty,min=1,max=100"`
}

// withDefaults fills in missing values and keeps the offset within int range.
func (p PageRequest) withDefaults() PageRequest {
	if p.CurrentPage < 1 {
		p.CurrentPage = defaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	if lastPage := math.MaxInt/p.PerPage + 1; p.CurrentPage > lastPage {
		p.CurrentPage = lastPage
	}
	return p
}

func (p PageRequest) offset() int {
	return (p.CurrentPage - 1) * p.PerPage
}

// Page is one slice of a listing. It renders as
// {total<Kind>, currentPage, perPage, totalPages, <kind>}.
type Page[T any] struct {
	Kind        string
	Total       int
	CurrentPage int
	PerPage     int
	TotalPages  int
	Items       []T
}

func newPage[T any](kind string, req PageRequest, total int, items []T) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Kind:        kind,
		Total:       total,
		CurrentPage: req.CurrentPage,
		PerPage:     req.PerPage,
		TotalPages:  totalPages(total, req.PerPage),
		Items:       items,
	}
}

func totalPages(total, perPage int) int {
	if perPage < 1 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func (p *Page[T]) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		"currentPage": p.CurrentPage,
		"perPage":     p.PerPage,
		"totalPages":  p.TotalPages,
	}
	body["total"+capitalize(p.Kind)] = p.Total
	body[p.Kind] = p.Items
	return json.Marshal(body)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

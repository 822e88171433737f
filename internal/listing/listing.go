// Package listing searches and paginates lists already fetched from the backend.
package listing

import (
	"strconv"
	"strings"

	"storefront/internal/models"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Query is the search and paging input of a list screen.
type Query struct {
	Search  string `query:"search"`
	Page    int    `query:"page"`
	PerPage int    `query:"perPage"`
}

// Normalize clamps page to at least 1 and perPage to 1..MaxPerPage, defaulting to DefaultPerPage.
func (q Query) Normalize() Query {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	return q
}

// Page is one page of a filtered list.
type Page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Pages   int `json:"pages"`
}

// Paginate keeps the items whose text contains the search term (case-insensitive)
// and cuts out the requested page.
func Paginate[T any](items []T, q Query, text func(T) string) Page[T] {
	q = q.Normalize()

	filtered := items
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		filtered = make([]T, 0, len(items))
		for _, it := range items {
			if strings.Contains(strings.ToLower(text(it)), needle) {
				filtered = append(filtered, it)
			}
		}
	}

	total := len(filtered)
	pages := (total + q.PerPage - 1) / q.PerPage
	if q.Page > pages {
		return Page[T]{Items: []T{}, Total: total, Page: q.Page, PerPage: q.PerPage, Pages: pages}
	}
	start := (q.Page - 1) * q.PerPage
	end := start + q.PerPage
	if end > total {
		end = total
	}

	out := make([]T, end-start)
	copy(out, filtered[start:end])
	return Page[T]{Items: out, Total: total, Page: q.Page, PerPage: q.PerPage, Pages: pages}
}

// Text projections used by the admin list screens.

func ProductText(p models.Product) string {
	text := p.Name + " " + p.Description
	if p.Category != nil {
		text += " " + p.Category.Name
	}
	return text
}

func CategoryText(c models.Category) string { return c.Name + " " + c.Description }

func RoleText(r models.Role) string { return r.Name }

func UserText(u models.User) string {
	text := u.Name + " " + u.Email + " " + u.Phone
	if u.Role != nil {
		text += " " + u.Role.Name
	}
	return text
}

func OrderText(o models.Order) string {
	return strings.Join([]string{strconv.Itoa(o.ID), o.CustomerName(), string(o.Status), o.Address}, " ")
}

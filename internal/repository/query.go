package repository

import (
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortField is one ordering clause.
type SortField struct {
	Field     string
	Direction Direction
}

// Sort is an ordered list of "field:direction" pairs separated by commas,
// e.g. "createdAt:asc,title:desc". The first pair is the primary key.
// A pair without a direction sorts ascending.
type Sort string

// SortBy starts a Sort with a single clause.
func SortBy(field string, dir Direction) Sort {
	return Sort(field + ":" + string(dir))
}

// Then appends a lower-priority clause.
func (s Sort) Then(field string, dir Direction) Sort {
	if s == "" {
		return SortBy(field, dir)
	}
	return s + "," + SortBy(field, dir)
}

// Fields parses the sort into clauses, preserving order.
func (s Sort) Fields() ([]SortField, error) {
	raw := strings.TrimSpace(string(s))
	if raw == "" {
		return nil, nil
	}
	var out []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, dir, _ := strings.Cut(part, ":")
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, &InvalidFieldError{Field: part, Reason: "empty sort field"}
		}
		d := Asc
		if dir = strings.ToLower(strings.TrimSpace(dir)); dir != "" {
			switch Direction(dir) {
			case Asc, Desc:
				d = Direction(dir)
			default:
				return nil, &InvalidFieldError{Field: field, Reason: "sort direction must be asc or desc"}
			}
		}
		out = append(out, SortField{Field: field, Direction: d})
	}
	return out, nil
}

// Query holds the parts of a filter shared by every entity. Entity filters
// embed it and add their exact-match fields.
type Query struct {
	Search string `form:"search" json:"search,omitempty"`
	Page   int    `form:"page" json:"page,omitempty" validate:"omitempty,min=1"`
	Limit  int    `form:"limit" json:"limit,omitempty" validate:"omitempty,min=1"`
	Sort   Sort   `form:"sort" json:"sort,omitempty"`
}

// Params returns the shared query. Embedding Query makes every entity filter
// satisfy Filter.
func (q Query) Params() Query { return q }

// Filter is implemented by every entity filter through the embedded Query.
type Filter interface {
	Params() Query
}

// Window normalizes page and limit and returns them with the row offset.
func (q Query) Window() (page, limit, offset int) {
	page, limit = q.Page, q.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit, (page - 1) * limit
}

// Page is one page of a FindMany result.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
}

// NewPage builds the page metadata. TotalPages is 0 when total is 0.
func NewPage[T any](items []T, total int64, page, limit int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if total > 0 && limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Page[T]{
		Items:       items,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
		PerPage:     limit,
	}
}

// Package paging provides offset pagination for list endpoints.
//
// Lists accept ?page and ?limit query parameters; responses carry a Meta
// block with the total count (ignoring pagination) and the derived page
// count.
package paging

import (
	"net/http"

	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"github.com/fieldworks/turfhub/internal/app/system/inputval"
)

const (
	// DefaultLimit is the page size used when ?limit is absent.
	DefaultLimit = 20

	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
)

// Params holds parsed pagination inputs.
type Params struct {
	Page  int
	Limit int
}

// Skip returns the number of documents to skip for this page.
func (p Params) Skip() int64 { return int64((p.Page - 1) * p.Limit) }

// Limit64 returns the limit as int64 for Mongo find options.
func (p Params) Limit64() int64 { return int64(p.Limit) }

// Parse extracts ?page and ?limit from the request. Absent values fall back
// to page 1 and DefaultLimit; values that are not positive integers fail
// with a validation error naming the field. Limits above MaxLimit are
// clamped.
func Parse(r *http.Request) (Params, error) {
	p := Params{Page: 1, Limit: DefaultLimit}
	page, err := inputval.Int("page", r.URL.Query().Get("page"))
	if err != nil {
		return p, err
	}
	if page != nil {
		if *page < 1 {
			return p, apperr.Validation("field %q must be a positive integer", "page")
		}
		p.Page = *page
	}
	limit, err := inputval.Int("limit", r.URL.Query().Get("limit"))
	if err != nil {
		return p, err
	}
	if limit != nil {
		if *limit < 1 {
			return p, apperr.Validation("field %q must be a positive integer", "limit")
		}
		p.Limit = *limit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p, nil
}

// Meta is the pagination metadata returned alongside a page of results.
type Meta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

// NewMeta computes page-count metadata from the total and the params.
func NewMeta(total int64, p Params) Meta {
	pages := int64(0)
	if total > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return Meta{Total: total, Page: p.Page, Limit: p.Limit, Pages: pages}
}

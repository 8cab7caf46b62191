// Package pagination splits ordered sequences into fixed-size pages.
package pagination

import (
	"context"
	"strconv"
	"strings"
)

// Source is an ordered sequence that can be counted and sliced without being materialized.
type Source[T any] interface {
	Count(ctx context.Context) (int64, error)
	Slice(ctx context.Context, limit, offset int) ([]T, error)
}

// Page is one window of a Source plus navigation metadata.
type Page[T any] struct {
	ObjectList []T
	Number     int
	NumPages   int
	Count      int64
	PageSize   int
}

// HasPrevious reports whether a page precedes this one.
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page follows this one.
func (p *Page[T]) HasNext() bool { return p.Number < p.NumPages }

// HasOtherPages reports whether the sequence spans more than one page.
func (p *Page[T]) HasOtherPages() bool { return p.HasPrevious() || p.HasNext() }

// PreviousPageNumber returns the number of the preceding page.
func (p *Page[T]) PreviousPageNumber() int { return p.Number - 1 }

// NextPageNumber returns the number of the following page.
func (p *Page[T]) NextPageNumber() int { return p.Number + 1 }

// Len returns the number of items on this page.
func (p *Page[T]) Len() int { return len(p.ObjectList) }

// PageRange returns 1..NumPages.
func (p *Page[T]) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

// ParsePageNumber maps a raw query value to a page number; anything that is
// not a positive integer becomes 1.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NumPages returns how many pages count items fill. An empty sequence still has one page.
func NumPages(count int64, pageSize int) int {
	if count <= 0 {
		return 1
	}
	return int((count + int64(pageSize) - 1) / int64(pageSize))
}

// Paginate returns the requested page of src. Pages past the end clamp to the last page.
func Paginate[T any](ctx context.Context, src Source[T], pageSize int, rawPage string) (*Page[T], error) {
	if pageSize < 1 {
		pageSize = 1
	}

	count, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}

	numPages := NumPages(count, pageSize)
	number := ParsePageNumber(rawPage)
	if number > numPages {
		number = numPages
	}

	page := &Page[T]{
		Number:   number,
		NumPages: numPages,
		Count:    count,
		PageSize: pageSize,
	}
	if count == 0 {
		page.ObjectList = []T{}
		return page, nil
	}

	items, err := src.Slice(ctx, pageSize, (number-1)*pageSize)
	if err != nil {
		return nil, err
	}
	page.ObjectList = items
	return page, nil
}

// SliceSource adapts an in-memory slice to Source.
type SliceSource[T any] []T

// Count implements Source.
func (s SliceSource[T]) Count(_ context.Context) (int64, error) {
	return int64(len(s)), nil
}

// Slice implements Source.
func (s SliceSource[T]) Slice(_ context.Context, limit, offset int) ([]T, error) {
	if offset >= len(s) {
		return []T{}, nil
	}
	end := offset + limit
	if end > len(s) {
		end = len(s)
	}
	return s[offset:end], nil
}

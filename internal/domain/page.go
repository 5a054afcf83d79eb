package domain

import (
	"fmt"
	"net/url"
	"strconv"
)

// PaginationParams describes one page request against a list endpoint.
// Page is 0-based. Nil Page/Size and empty Sort/Name are left to the server.
type PaginationParams struct {
	Page *int
	Size *int
	Sort string // "field,direction", e.g. "name,asc"
	Name string // optional name filter
}

// NewPaginationParams returns params with page, size and sort set.
func NewPaginationParams(page, size int, sort string) PaginationParams {
	return PaginationParams{Page: &page, Size: &size, Sort: sort}
}

// Query encodes the present fields as query parameters, omitting absent ones.
func (p PaginationParams) Query() url.Values {
	q := url.Values{}
	if p.Page != nil {
		q.Set("page", strconv.Itoa(*p.Page))
	}
	if p.Size != nil {
		q.Set("size", strconv.Itoa(*p.Size))
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Name != "" {
		q.Set("name", p.Name)
	}
	return q
}

// SortInfo is the sort block of the page envelope.
type SortInfo struct {
	Sorted   bool `json:"sorted"`
	Unsorted bool `json:"unsorted"`
	Empty    bool `json:"empty"`
}

// Pageable echoes the page request inside the page envelope.
type Pageable struct {
	PageNumber int      `json:"pageNumber"`
	PageSize   int      `json:"pageSize"`
	Sort       SortInfo `json:"sort"`
	Offset     int64    `json:"offset"`
	Paged      bool     `json:"paged"`
	Unpaged    bool     `json:"unpaged"`
}

// PageResponse is the page envelope returned by paginated endpoints.
type PageResponse[T any] struct {
	Content          []T      `json:"content"`
	Pageable         Pageable `json:"pageable"`
	Last             bool     `json:"last"`
	TotalPages       int      `json:"totalPages"`
	TotalElements    int64    `json:"totalElements"`
	Size             int      `json:"size"`
	Number           int      `json:"number"`
	First            bool     `json:"first"`
	NumberOfElements int      `json:"numberOfElements"`
	Empty            bool     `json:"empty"`
}

// NewPageResponse builds a consistent envelope for content taken from page
// number (0-based) of the given size out of total elements.
func NewPageResponse[T any](content []T, number, size int, total int64, sorted bool) *PageResponse[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	n := len(content)
	return &PageResponse[T]{
		Content:          content,
		Pageable:         PageableFor(number, size, sorted),
		Last:             totalPages == 0 || number >= totalPages-1,
		TotalPages:       totalPages,
		TotalElements:    total,
		Size:             size,
		Number:           number,
		First:            number == 0,
		NumberOfElements: n,
		Empty:            n == 0,
	}
}

// PageableFor returns the pageable block for a page request.
func PageableFor(number, size int, sorted bool) Pageable {
	return Pageable{
		PageNumber: number,
		PageSize:   size,
		Sort:       SortInfo{Sorted: sorted, Unsorted: !sorted, Empty: !sorted},
		Offset:     int64(number) * int64(size),
		Paged:      true,
		Unpaged:    false,
	}
}

// EmptyPage returns an empty first page, used when a list load fails.
func EmptyPage[T any](size int) *PageResponse[T] {
	return NewPageResponse[T](nil, 0, size, 0, false)
}

// Validate checks the envelope invariants.
func (p *PageResponse[T]) Validate() error {
	if p == nil {
		return fmt.Errorf("page response is nil")
	}
	if len(p.Content) != p.NumberOfElements {
		return fmt.Errorf("page content has %d elements, numberOfElements is %d", len(p.Content), p.NumberOfElements)
	}
	if p.Size > 0 && p.NumberOfElements > p.Size {
		return fmt.Errorf("numberOfElements %d exceeds page size %d", p.NumberOfElements, p.Size)
	}
	if p.Number < 0 || p.TotalPages < 0 || p.TotalElements < 0 {
		return fmt.Errorf("negative page metadata")
	}
	if p.Empty != (p.NumberOfElements == 0) {
		return fmt.Errorf("empty flag is %t with %d elements", p.Empty, p.NumberOfElements)
	}
	if p.First != (p.Number == 0) {
		return fmt.Errorf("first flag is %t on page %d", p.First, p.Number)
	}
	// Pages past the end are empty and reported as last; only in-range pages
	// are held to the exact last-page rule.
	if p.TotalPages > 0 && p.Number < p.TotalPages && p.Last != (p.Number == p.TotalPages-1) {
		return fmt.Errorf("last flag is %t on page %d of %d", p.Last, p.Number, p.TotalPages)
	}
	return nil
}

// CurrentPage returns the 1-based page number shown in the UI.
func (p *PageResponse[T]) CurrentPage() int {
	return p.Number + 1
}

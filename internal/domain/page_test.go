package domain

import (
	"encoding/json"
	"testing"
)

func TestPaginationParams_Query(t *testing.T) {
	page, size := 2, 10
	tests := []struct {
		name   string
		params PaginationParams
		want   string
	}{
		{"empty", PaginationParams{}, ""},
		{"all fields", PaginationParams{Page: &page, Size: &size, Sort: "name,asc", Name: "pad"}, "name=pad&page=2&size=10&sort=name%2Casc"},
		{"page only", PaginationParams{Page: &page}, "page=2"},
		{"zero page is present", NewPaginationParams(0, 10, ""), "page=0&size=10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.Query().Encode(); got != tt.want {
				t.Errorf("Query() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	tests := []struct {
		name       string
		content    []string
		number     int
		size       int
		total      int64
		wantPages  int
		wantFirst  bool
		wantLast   bool
		wantEmpty  bool
		wantOffset int64
	}{
		{"single page", []string{"a"}, 0, 10, 1, 1, true, true, false, 0},
		{"middle page", []string{"a", "b"}, 1, 2, 6, 3, false, false, false, 2},
		{"last page", []string{"a"}, 2, 2, 5, 3, false, true, false, 4},
		{"empty", nil, 0, 10, 0, 0, true, true, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPageResponse(tt.content, tt.number, tt.size, tt.total, true)
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d; want %d", p.TotalPages, tt.wantPages)
			}
			if p.First != tt.wantFirst || p.Last != tt.wantLast || p.Empty != tt.wantEmpty {
				t.Errorf("flags first=%t last=%t empty=%t; want %t %t %t", p.First, p.Last, p.Empty, tt.wantFirst, tt.wantLast, tt.wantEmpty)
			}
			if p.Pageable.Offset != tt.wantOffset {
				t.Errorf("Offset = %d; want %d", p.Pageable.Offset, tt.wantOffset)
			}
			if p.Content == nil {
				t.Error("Content should never be nil")
			}
			if err := p.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestPageResponse_Validate(t *testing.T) {
	valid := func() *PageResponse[int] { return NewPageResponse([]int{1, 2}, 0, 2, 4, false) }

	tests := []struct {
		name   string
		mutate func(p *PageResponse[int])
	}{
		{"count mismatch", func(p *PageResponse[int]) { p.NumberOfElements = 3 }},
		{"exceeds size", func(p *PageResponse[int]) { p.Size = 1 }},
		{"empty flag", func(p *PageResponse[int]) { p.Empty = true }},
		{"first flag", func(p *PageResponse[int]) { p.First = false }},
		{"last flag", func(p *PageResponse[int]) { p.Last = true }},
		{"negative number", func(p *PageResponse[int]) { p.Number = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			if err := p.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}

	var nilPage *PageResponse[int]
	if err := nilPage.Validate(); err == nil {
		t.Error("Validate() should fail on nil")
	}
}

func TestPageResponse_ValidateOutOfRangePage(t *testing.T) {
	p := NewPageResponse[int](nil, 5, 10, 12, true)
	if !p.Last {
		t.Error("page past the end should be last")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestPageResponse_DecodeEnvelope(t *testing.T) {
	raw := `{"content":[{"id":"p1","name":"Brake Pad","partNumber":"BP-1","category":{"id":"c1","name":"Brakes"}}],
		"number":0,"size":10,"totalPages":1,"totalElements":1,"first":true,"last":true,"empty":false,"numberOfElements":1,
		"pageable":{"pageNumber":0,"pageSize":10,"offset":0,"paged":true,"unpaged":false,"sort":{"sorted":true,"unsorted":false,"empty":false}}}`

	var p PageResponse[Part]
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if len(p.Content) != 1 || p.Content[0].Name != "Brake Pad" || p.Content[0].Category.ID != "c1" {
		t.Errorf("unexpected content: %+v", p.Content)
	}
	if p.CurrentPage() != 1 {
		t.Errorf("CurrentPage() = %d; want 1", p.CurrentPage())
	}
}

func TestEmptyPage(t *testing.T) {
	p := EmptyPage[Category](10)
	if !p.Empty || len(p.Content) != 0 || p.TotalPages != 0 {
		t.Errorf("unexpected empty page: %+v", p)
	}
}

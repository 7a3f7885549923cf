package query

// Pagination is the metadata returned next to every list page.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
	NextPage     *int  `json:"nextPage"`
	PrevPage     *int  `json:"prevPage"`
}

// NewPagination computes page metadata; totalPages is ceil(total/limit).
func NewPagination(page, limit int, total int64) Pagination {
	p := Pagination{
		CurrentPage:  page,
		TotalItems:   total,
		ItemsPerPage: limit,
	}
	if limit > 0 {
		p.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	p.HasNextPage = page < p.TotalPages
	p.HasPrevPage = page > 1
	if p.HasNextPage {
		next := page + 1
		p.NextPage = &next
	}
	if p.HasPrevPage {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p
}

// Page is one window of a list query.
type Page struct {
	Data       []*Record
	Pagination Pagination
}
